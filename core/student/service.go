package student

import (
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/curriculum"
)

// Repository persists student records. Implementations are swappable;
// the pipeline only needs load-all and save-one primitives.
type Repository interface {
	LoadAll() ([]*Record, error)
	Save(*Record) error
}

// ImportStats summarises one ingestion run.
type ImportStats struct {
	Sheets         int
	Rows           int
	RowsSkipped    int
	NewStudents    int
	Added          int
	Updated        int
	SkippedColumns int
}

// Service is the ingestion orchestrator: it wires the sheet source, name
// resolution, row aggregation, curriculum propagation and the record
// store into one batch pass.
type Service struct {
	conf       *core.Config
	repo       Repository
	source     core.SheetSource
	resolver   *Resolver
	aggregator *Aggregator
	engine     *curriculum.Engine
	log        core.Logger

	validate   *validator.Validate
	translator ut.Translator
}

func NewService(conf *core.Config, repo Repository, source core.SheetSource, engine *curriculum.Engine, log core.Logger) *Service {
	validate, translator := core.NewValidator()
	return &Service{
		conf:       conf,
		repo:       repo,
		source:     source,
		resolver:   NewResolver(nil, conf.MatchThreshold, conf.MatchAmbiguityGap, log),
		aggregator: NewAggregator(nil, log),
		engine:     engine,
		log:        log,
		validate:   validate,
		translator: translator,
	}
}

// SetAliases installs the hand-curated name alias table.
func (s *Service) SetAliases(aliases AliasTable) {
	s.resolver.aliases = aliases
}

// Ingest runs the whole pipeline over the sheet source. Bad rows and
// columns are warned and skipped; only a failure to read the source or
// write the store aborts the batch.
func (s *Service) Ingest(allowList []string) (*ImportStats, error) {
	records, err := s.repo.LoadAll()
	if err != nil {
		return nil, errors.Wrap(err, "loading student records")
	}
	sheets, err := s.source.ReadSheets()
	if err != nil {
		return nil, errors.Wrap(err, "reading workbook")
	}

	var allow map[string]bool
	if len(allowList) > 0 {
		allow = make(map[string]bool, len(allowList))
		for _, col := range allowList {
			allow[col] = true
		}
	}

	s.warnMissingSheets(sheets)

	stats := &ImportStats{}
	touched := make(map[*Record]bool)
	for _, sheet := range sheets {
		stats.Sheets++
		for _, row := range sheet.Rows {
			rec, ok := s.processRow(sheet, row, &records, allow, stats)
			if ok {
				touched[rec] = true
			}
		}
	}

	today := core.Today()
	for rec := range touched {
		rec.RecomputeEngagement()
		s.engine.RecalculateSummary(rec.Progress())
		rec.Metadata.UpdatedAt = today
	}

	for _, rec := range records {
		if err := s.repo.Save(rec); err != nil {
			return stats, errors.Wrapf(err, "saving record %s", rec.ID)
		}
	}

	s.log.Info("import finished", map[string]interface{}{
		"sheets": stats.Sheets, "rows": stats.Rows, "rows_skipped": stats.RowsSkipped,
		"new_students": stats.NewStudents, "added": stats.Added, "updated": stats.Updated,
	})
	return stats, nil
}

func (s *Service) processRow(sheet core.Sheet, row core.Row, records *[]*Record, allow map[string]bool, stats *ImportStats) (*Record, bool) {
	first := core.CleanString(core.CellString(row[core.ColumnFirstName]))
	last := core.CleanString(core.CellString(row[core.ColumnLastName]))
	if first == "" || last == "" {
		s.log.Warn("row without student name skipped", map[string]interface{}{
			"sheet": sheet.SheetName, "class": sheet.ClassName,
		})
		stats.RowsSkipped++
		return nil, false
	}

	rec := s.resolver.Resolve(*records, first, last, sheet.ClassName)
	if rec == nil {
		rec = s.newRecord(first, last, sheet.ClassName)
		*records = append(*records, rec)
		stats.NewStudents++
		s.log.Info("new student record created", map[string]interface{}{
			"student": rec.FullName(), "class": rec.ClassName,
		})
	}

	result := s.aggregator.Aggregate(sheet, row, allow)
	for _, a := range result.Assessments {
		if rec.Upsert(a) {
			stats.Added++
		} else {
			stats.Updated++
		}
	}
	for attr, level := range result.Attributes {
		rec.SetAttribute(attr, level)
	}
	for _, ev := range result.Evidence {
		s.engine.Apply(rec.Progress(), rec.Missions, ev)
	}

	stats.Rows++
	stats.SkippedColumns += result.SkippedColumns
	return rec, true
}

func (s *Service) newRecord(first, last, class string) *Record {
	now := core.Today()
	return &Record{
		ID:        uuid.New().String(),
		FirstName: first,
		LastName:  last,
		ClassName: class,
		Profile: Profile{
			Grade:        s.conf.DefaultGrade,
			AcademicYear: s.conf.AcademicYear,
		},
		Metadata: Metadata{
			SchemaVersion: s.conf.SchemaVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// warnMissingSheets reports configured classes whose sheet is absent from
// the workbook. The batch continues with whatever sheets are present.
func (s *Service) warnMissingSheets(sheets []core.Sheet) {
	for sheetName, class := range s.conf.SheetClasses {
		found := false
		for _, sh := range sheets {
			if strings.EqualFold(sh.SheetName, sheetName) {
				found = true
				break
			}
		}
		if !found {
			s.log.Warn("sheet not found for class", map[string]interface{}{
				"sheet": sheetName, "class": class,
			})
		}
	}
}

// MissionInput is the user-supplied description of a new mission.
type MissionInput struct {
	StudentID  string   `json:"student_id" validate:"required"`
	Title      string   `json:"title" validate:"required"`
	Type       string   `json:"type" validate:"required"`
	Objectives []string `json:"objectives" validate:"required,min=1,dive,objective_code"`
	Deadline   string   `json:"deadline" validate:"omitempty,iso_date"`
}

// CreateMission validates the input and attaches a new mission to the
// student's record.
func (s *Service) CreateMission(input MissionInput) (*curriculum.Mission, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, s.validationError(err)
	}

	rec, err := s.findByID(input.StudentID)
	if err != nil {
		return nil, err
	}

	m, err := curriculum.NewMission(rec.Progress(), s.engine.Mapping(), input.Title, input.Type, input.Objectives, input.Deadline)
	if err != nil {
		return nil, err
	}
	if rec.Missions == nil {
		rec.Missions = make(map[string]*curriculum.Mission)
	}
	rec.Missions[m.ID] = m
	rec.Metadata.UpdatedAt = core.Today()

	if err := s.repo.Save(rec); err != nil {
		return nil, errors.Wrapf(err, "saving record %s", rec.ID)
	}
	s.log.Info("mission created", map[string]interface{}{
		"student": rec.FullName(), "mission": m.ID, "title": m.Title,
	})
	return m, nil
}

// MasterExport is the aggregated all-students document.
type MasterExport struct {
	ExportedAt    string    `json:"exported_at"`
	SchemaVersion string    `json:"schema_version"`
	StudentCount  int       `json:"student_count"`
	Students      []*Record `json:"students"`
}

// ExportMaster collects every record into one export, sorted by class
// then student name for stable diffs between exports.
func (s *Service) ExportMaster() (*MasterExport, error) {
	records, err := s.repo.LoadAll()
	if err != nil {
		return nil, errors.Wrap(err, "loading student records")
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	for _, rec := range records {
		rec.SortAssessments()
	}
	return &MasterExport{
		ExportedAt:    core.Today(),
		SchemaVersion: s.conf.SchemaVersion,
		StudentCount:  len(records),
		Students:      records,
	}, nil
}

func (s *Service) findByID(id string) (*Record, error) {
	records, err := s.repo.LoadAll()
	if err != nil {
		return nil, errors.Wrap(err, "loading student records")
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.Errorf("student %s not found", id)
}

func (s *Service) validationError(err error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]core.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, core.FieldError{
			Field: fe.Field(),
			Error: fe.Translate(s.translator),
		})
	}
	return core.NewValidationError(errors.New("invalid mission"), fields...)
}
