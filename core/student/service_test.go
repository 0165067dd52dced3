package student

import (
	"testing"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/curriculum"
	testutil "github.com/mkuprys/gradefold/tests"
)

func fptr(v float64) *float64 { return &v }

type fakeRepo struct {
	records []*Record
	saves   int
}

func (r *fakeRepo) LoadAll() ([]*Record, error) { return r.records, nil }

func (r *fakeRepo) Save(rec *Record) error {
	r.saves++
	for i, existing := range r.records {
		if existing.ID == rec.ID {
			r.records[i] = rec
			return nil
		}
	}
	r.records = append(r.records, rec)
	return nil
}

type fakeSource struct {
	sheets []core.Sheet
}

func (s *fakeSource) ReadSheets() ([]core.Sheet, error) { return s.sheets, nil }

func testConfig() *core.Config {
	return &core.Config{
		SchemaVersion:     "5.0",
		AcademicYear:      "2025-2026",
		DefaultGrade:      9,
		MatchThreshold:    0.9,
		MatchAmbiguityGap: 0.02,
	}
}

func newTestService(repo *fakeRepo, source *fakeSource, log core.Logger) *Service {
	engine := curriculum.NewEngine(curriculum.DefaultMapping(), log, false)
	return NewService(testConfig(), repo, source, engine, log)
}

func importSheet() core.Sheet {
	return core.Sheet{
		ClassName: "9A",
		SheetName: "9A",
		ColumnDates: map[string]string{
			"EXT1": "2025-09-10",
			"ND3":  "2025-09-15",
			"SD2":  "2025-10-08",
		},
		Rows: []core.Row{
			{
				"First Name": "Jonas",
				"Last Name":  "Petraitis",
				"EXT1":       float64(7),
				"ND3":        float64(1),
				"ND3 T":      float64(8),
				"SD2 P":      float64(80),
				"SD2 MYP":    float64(6),
				"SD2 C":      float64(1),
			},
			{
				"First Name": "",
				"Last Name":  "Kazlauskas",
				"EXT1":       float64(3),
			},
		},
	}
}

func TestIngest(t *testing.T) {
	repo := &fakeRepo{}
	log := &testutil.CaptureLogger{}
	svc := newTestService(repo, &fakeSource{sheets: []core.Sheet{importSheet()}}, log)

	stats, err := svc.Ingest(nil)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if stats.NewStudents != 1 || stats.Rows != 1 || stats.RowsSkipped != 1 {
		t.Errorf("stats = %+v; want 1 new student, 1 row, 1 skipped", stats)
	}
	// EXT1, ND3, ND3 T and the SD2 composite.
	if stats.Added != 4 {
		t.Errorf("added = %d; want 4", stats.Added)
	}
	if !log.Has("WARN", "row without student name") {
		t.Error("nameless row was not warned about")
	}

	if len(repo.records) != 1 {
		t.Fatalf("stored records = %d; want 1", len(repo.records))
	}
	rec := repo.records[0]
	if rec.ID == "" || rec.Profile.Grade != 9 || rec.Metadata.SchemaVersion != "5.0" {
		t.Errorf("new record defaults = %+v", rec)
	}
	if len(rec.Assessments) != 4 {
		t.Errorf("assessment count = %d; want 4", len(rec.Assessments))
	}

	// The SD2 bare C score reaches the curriculum model.
	op := rec.Curriculum.Objectives["9Ni.03"]
	if op == nil || op.CurrentScore == nil || *op.CurrentScore != 1 {
		t.Errorf("objective 9Ni.03 = %+v; want current score 1", op)
	}
	if rec.Curriculum.Summary == nil || rec.Curriculum.Summary.Mastered != 1 {
		t.Errorf("summary = %+v; want 1 mastered", rec.Curriculum.Summary)
	}
	if rec.Engagement.HomeworkOnTimeRate == nil || *rec.Engagement.HomeworkOnTimeRate != 1 {
		t.Errorf("homework rate = %v; want 1", rec.Engagement.HomeworkOnTimeRate)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	source := &fakeSource{sheets: []core.Sheet{importSheet()}}
	svc := newTestService(repo, source, core.NewNopLogger())

	if _, err := svc.Ingest(nil); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	rec := repo.records[0]
	countAfterFirst := len(rec.Assessments)
	historyAfterFirst := len(rec.Curriculum.Objectives["9Ni.03"].History)

	stats, err := svc.Ingest(nil)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	if stats.Added != 0 || stats.NewStudents != 0 {
		t.Errorf("second run added %d assessments, %d students; want 0, 0", stats.Added, stats.NewStudents)
	}
	rec = repo.records[0]
	if len(rec.Assessments) != countAfterFirst {
		t.Errorf("assessment count grew: %d -> %d", countAfterFirst, len(rec.Assessments))
	}
	if got := len(rec.Curriculum.Objectives["9Ni.03"].History); got != historyAfterFirst {
		t.Errorf("objective history grew: %d -> %d", historyAfterFirst, got)
	}
	for _, a := range rec.Assessments {
		if a.Updated != "" {
			t.Errorf("assessment %s/%s carries an updated stamp after identical re-import", a.Date, a.Column)
		}
	}
}

func TestIngestAllowListScoping(t *testing.T) {
	repo := &fakeRepo{}
	source := &fakeSource{sheets: []core.Sheet{importSheet()}}
	svc := newTestService(repo, source, core.NewNopLogger())

	if _, err := svc.Ingest(nil); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}

	// Second run restricted to EXT1 with changed values everywhere.
	changed := importSheet()
	changed.Rows[0]["EXT1"] = float64(9)
	changed.Rows[0]["SD2 P"] = float64(40)
	source.sheets = []core.Sheet{changed}

	if _, err := svc.Ingest([]string{"EXT1"}); err != nil {
		t.Fatalf("scoped Ingest() error = %v", err)
	}

	rec := repo.records[0]
	if got := rec.Find("2025-09-10", "EXT1"); got == nil || got.Score != "9" {
		t.Errorf("EXT1 = %+v; want score updated to 9", got)
	}
	sd2 := rec.Find("2025-10-08", "SD2")
	if sd2 == nil || sd2.Score != "80" {
		t.Errorf("SD2 = %+v; want untouched score 80", sd2)
	}
}

func TestIngestResolvesTypos(t *testing.T) {
	repo := &fakeRepo{}
	source := &fakeSource{sheets: []core.Sheet{importSheet()}}
	log := &testutil.CaptureLogger{}
	svc := newTestService(repo, source, log)

	if _, err := svc.Ingest(nil); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}

	// Same student, one-letter typo in the export.
	typo := importSheet()
	typo.Rows[0]["Last Name"] = "Petraitus"
	source.sheets = []core.Sheet{typo}

	stats, err := svc.Ingest(nil)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if stats.NewStudents != 0 {
		t.Errorf("typo created %d new students; want 0", stats.NewStudents)
	}
	if !log.Has("WARN", "fuzzy name match") {
		t.Error("fuzzy resolution was not warned about")
	}
	if len(repo.records) != 1 {
		t.Errorf("record count = %d; want 1", len(repo.records))
	}
}

func TestIngestWarnsMissingSheet(t *testing.T) {
	repo := &fakeRepo{}
	log := &testutil.CaptureLogger{}
	conf := testConfig()
	conf.SheetClasses = map[string]string{"9A": "9A", "9B": "9B"}
	engine := curriculum.NewEngine(curriculum.DefaultMapping(), log, false)
	svc := NewService(conf, repo, &fakeSource{sheets: []core.Sheet{importSheet()}}, engine, log)

	if _, err := svc.Ingest(nil); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !log.Has("WARN", "sheet not found") {
		t.Error("missing sheet was not warned about")
	}
}

func TestCreateMission(t *testing.T) {
	repo := &fakeRepo{}
	source := &fakeSource{sheets: []core.Sheet{importSheet()}}
	svc := newTestService(repo, source, core.NewNopLogger())
	if _, err := svc.Ingest(nil); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	rec := repo.records[0]

	m, err := svc.CreateMission(MissionInput{
		StudentID:  rec.ID,
		Title:      "Integers catch-up",
		Type:       "remediation",
		Objectives: []string{"9Ni.01", "9Ni.02"},
		Deadline:   "2026-01-15",
	})
	if err != nil {
		t.Fatalf("CreateMission() error = %v", err)
	}
	if rec.Missions[m.ID] == nil {
		t.Error("mission not attached to the record")
	}

	t.Run("validates input", func(t *testing.T) {
		_, err := svc.CreateMission(MissionInput{
			StudentID:  rec.ID,
			Title:      "bad",
			Type:       "remediation",
			Objectives: []string{"not-a-code"},
			Deadline:   "15.01.2026",
		})
		if err == nil {
			t.Fatal("expected validation error")
		}
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("error type = %T; want *core.ValidationError", err)
		}
		if len(vErr.Fields) != 2 {
			t.Errorf("field errors = %+v; want objectives and deadline", vErr.Fields)
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		if _, err := svc.CreateMission(MissionInput{
			StudentID:  "missing",
			Title:      "x",
			Type:       "remediation",
			Objectives: []string{"9Ni.01"},
		}); err == nil {
			t.Error("expected error for unknown student")
		}
	})
}

func TestExportMaster(t *testing.T) {
	repo := &fakeRepo{records: []*Record{
		{ID: "1", FirstName: "Jonas", LastName: "Petraitis", ClassName: "9B"},
		{ID: "2", FirstName: "Ona", LastName: "Kazlauskaite", ClassName: "9A"},
		{ID: "3", FirstName: "Tomas", LastName: "Adomaitis", ClassName: "9A"},
	}}
	svc := newTestService(repo, &fakeSource{}, core.NewNopLogger())

	export, err := svc.ExportMaster()
	if err != nil {
		t.Fatalf("ExportMaster() error = %v", err)
	}
	if export.StudentCount != 3 || export.SchemaVersion != "5.0" || export.ExportedAt == "" {
		t.Errorf("export metadata = %+v", export)
	}
	wantOrder := []string{"3", "2", "1"} // class, then last name
	for i, id := range wantOrder {
		if export.Students[i].ID != id {
			t.Errorf("students[%d] = %s; want %s", i, export.Students[i].ID, id)
		}
	}
}
