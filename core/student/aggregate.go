package student

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/column"
	"github.com/mkuprys/gradefold/core/curriculum"
)

// RowResult is everything one student row produced: assessments to
// upsert, curriculum evidence to propagate and profile attribute updates.
type RowResult struct {
	Assessments    []*Assessment
	Evidence       []curriculum.Evidence
	Attributes     map[string]string
	SkippedColumns int
}

// Aggregator folds one raw spreadsheet row into composite assessments.
// It holds no per-row state; the same instance serves a whole run.
type Aggregator struct {
	legacy column.LegacyMapping
	log    core.Logger
}

func NewAggregator(legacy column.LegacyMapping, log core.Logger) *Aggregator {
	if legacy == nil {
		legacy = column.DefaultLegacyMapping()
	}
	return &Aggregator{legacy: legacy, log: log}
}

// scratch accumulates same-instance sub-scores before synthesis.
type scratch struct {
	base   column.Base
	number int
	date   string

	raw        *float64 // the bare column's own value
	tScore     *float64 // ND "T" component
	percentage *float64
	myp        *float64
	cambridge  map[int]float64
}

// Aggregate runs the three merge passes over one row: comment collection,
// sub-score collection, then synthesis. Columns outside the allow-list
// (when one is given) are ignored entirely so partial re-imports cannot
// disturb other columns' data.
func (ag *Aggregator) Aggregate(sheet core.Sheet, row core.Row, allow map[string]bool) *RowResult {
	today := core.Today()
	res := &RowResult{Attributes: make(map[string]string)}

	columns := make([]string, 0, len(row))
	for col := range row {
		if core.IsStandardColumn(col) {
			continue
		}
		if allow != nil && !allow[col] {
			continue
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	// Pass 1: free-text comments, keyed to their parent base column.
	comments := make(map[string]string)
	isComment := make(map[string]bool)
	for _, col := range columns {
		parent := ""
		if desc := column.Classify(col); desc != nil {
			if desc.Subtype != column.SubComment {
				continue
			}
			parent = desc.BaseColumn()
		} else if lc, ok := ag.legacy[col]; ok && lc.Kind == column.LegacyComment {
			parent = lc.ParentColumn
		} else {
			continue
		}
		isComment[col] = true
		if text := core.CellString(row[col]); !core.IsSentinel(text) {
			comments[parent] = text
		}
	}

	// Pass 2: collect numeric components per base column.
	entries := make(map[string]*scratch)
	var legacyCols []string
	for _, col := range columns {
		if isComment[col] {
			continue
		}
		desc := column.Classify(col)
		if desc == nil {
			if _, ok := ag.legacy[col]; ok {
				legacyCols = append(legacyCols, col)
			} else {
				ag.log.Warn("unclassified column skipped", map[string]interface{}{"column": col})
				res.SkippedColumns++
			}
			continue
		}

		baseCol := desc.BaseColumn()
		e, ok := entries[baseCol]
		if !ok {
			e = &scratch{base: desc.Base, number: desc.Number}
			entries[baseCol] = e
		}
		if desc.Base == column.BasePD {
			e.date = desc.Date
		} else if e.date == "" {
			e.date = sheet.Date(baseCol, sheet.Date(col, today))
		}

		v, ok := core.CellScore(row[col])
		if !ok {
			if text := core.CellString(row[col]); !core.IsSentinel(text) {
				ag.log.Warn("non-numeric score skipped", map[string]interface{}{
					"column": col, "value": text,
				})
			}
			continue
		}
		switch desc.Subtype {
		case column.SubNone:
			e.raw = &v
		case column.SubScore:
			e.tScore = &v
		case column.SubPercentage:
			e.percentage = &v
		case column.SubMYP:
			e.myp = &v
		case column.SubCambridge:
			if e.cambridge == nil {
				e.cambridge = make(map[int]float64)
			}
			e.cambridge[desc.CambridgeIndex] = v
		}
	}

	// Pass 3: synthesis.
	bases := make([]string, 0, len(entries))
	for baseCol := range entries {
		bases = append(bases, baseCol)
	}
	sort.Strings(bases)
	for _, baseCol := range bases {
		e := entries[baseCol]
		switch e.base {
		case column.BaseEXT:
			ag.emitDirect(res, sheet, comments, baseCol, e, TypeClasswork,
				fmt.Sprintf("EXT%d: Classwork", e.number))
		case column.BaseLNT:
			ag.emitDirect(res, sheet, comments, baseCol, e, TypeBoardSolving,
				fmt.Sprintf("LNT%d: Board Solving", e.number))
		case column.BaseD:
			ag.emitDirect(res, sheet, comments, baseCol, e, TypeDiagnostic,
				fmt.Sprintf("D%d: Diagnostic", e.number))
		case column.BaseND:
			ag.emitHomework(res, sheet, comments, baseCol, e)
		case column.BaseSD, column.BaseKD:
			ag.emitComposite(res, sheet, comments, baseCol, e)
		case column.BasePD:
			ag.emitPractice(res, sheet, baseCol, e)
		case column.BaseTVARK, column.BaseTAIS:
			ag.emitTracking(res, sheet, baseCol, e)
		}
	}

	for _, col := range legacyCols {
		ag.emitLegacy(res, sheet, comments, col, row[col], today)
	}

	return res
}

func (ag *Aggregator) emitDirect(res *RowResult, sheet core.Sheet, comments map[string]string, baseCol string, e *scratch, typ, task string) {
	if e.raw == nil {
		return
	}
	res.Assessments = append(res.Assessments, &Assessment{
		Date:     e.date,
		Column:   baseCol,
		Type:     typ,
		TaskName: task,
		Score:    fmtScore(*e.raw),
		Comment:  comments[baseCol],
		Context:  sheet.Context(baseCol),
	})
}

// emitHomework emits the on-time flag and, when present, the separately
// scored T component whose type depends on the homework instance.
func (ag *Aggregator) emitHomework(res *RowResult, sheet core.Sheet, comments map[string]string, baseCol string, e *scratch) {
	if e.raw != nil {
		res.Assessments = append(res.Assessments, &Assessment{
			Date:     e.date,
			Column:   baseCol,
			Type:     TypeHomework,
			TaskName: fmt.Sprintf("ND%d: Homework", e.number),
			Score:    fmtScore(*e.raw),
			Comment:  comments[baseCol],
			Context:  sheet.Context(baseCol),
		})
	}
	if e.tScore != nil {
		typ, task := TypeHomework, fmt.Sprintf("ND%d: Homework", e.number)
		switch e.number {
		case 3:
			typ, task = TypeHomeworkGraded, fmt.Sprintf("ND%d: Graded Homework", e.number)
		case 4, 5:
			typ, task = TypeHomeworkReflection, fmt.Sprintf("ND%d: Homework Reflection", e.number)
		}
		res.Assessments = append(res.Assessments, &Assessment{
			Date:     e.date,
			Column:   baseCol + " T",
			Type:     typ,
			TaskName: task,
			Score:    fmtScore(*e.tScore),
			Comment:  comments[baseCol],
			Context:  sheet.Context(baseCol),
		})
	}
}

func (ag *Aggregator) emitComposite(res *RowResult, sheet core.Sheet, comments map[string]string, baseCol string, e *scratch) {
	typ, task := TypeTest, fmt.Sprintf("SD%d: Test", e.number)
	if e.base == column.BaseKD {
		typ, task = TypeSummative, fmt.Sprintf("KD%d: Unit Summative", e.number)
	}

	score := primaryScore(e)
	if score == nil {
		return
	}
	a := &Assessment{
		Date:     e.date,
		Column:   baseCol,
		Type:     typ,
		TaskName: task,
		Score:    fmtScore(*score),
		Comment:  comments[baseCol],
		Context:  sheet.Context(baseCol),
	}
	if e.percentage != nil || e.myp != nil || len(e.cambridge) > 0 {
		a.Details = &EvaluationDetails{
			Percentage: e.percentage,
			MYP:        e.myp,
			Cambridge:  e.cambridge,
		}
	}
	res.Assessments = append(res.Assessments, a)

	if len(e.cambridge) > 0 {
		res.Evidence = append(res.Evidence, curriculum.Evidence{
			Base:       baseCol,
			Column:     baseCol,
			Family:     string(e.base),
			Date:       e.date,
			Percentage: e.percentage,
			MYP:        e.myp,
			Cambridge:  e.cambridge,
		})
	}
}

// emitPractice synthesizes the composite key "PD<n>_<date>" so repeats of
// the same practice assessment on different dates stay distinct.
func (ag *Aggregator) emitPractice(res *RowResult, sheet core.Sheet, baseCol string, e *scratch) {
	score := primaryScore(e)
	if score == nil {
		return
	}
	key := fmt.Sprintf("PD%d_%s", e.number, e.date)
	a := &Assessment{
		Date:     e.date,
		Column:   key,
		Type:     TypePractice,
		TaskName: fmt.Sprintf("PD%d: Practice Assessment", e.number),
		Score:    fmtScore(*score),
		Context:  sheet.Context(baseCol),
		Details: &EvaluationDetails{
			Percentage: e.percentage,
			MYP:        e.myp,
			Cambridge:  e.cambridge,
		},
	}
	res.Assessments = append(res.Assessments, a)

	res.Evidence = append(res.Evidence, curriculum.Evidence{
		Base:       baseCol,
		Column:     key,
		Family:     string(column.BasePD),
		Date:       e.date,
		Percentage: e.percentage,
		MYP:        e.myp,
		Cambridge:  e.cambridge,
	})
}

// emitTracking sets the profile attribute driven by the 0/1 tracking cell
// and records a low-weight tracking assessment for audit history.
func (ag *Aggregator) emitTracking(res *RowResult, sheet core.Sheet, baseCol string, e *scratch) {
	if e.raw == nil {
		return
	}
	attr, task := AttrNotebookOrganization, "Notebook Organization"
	if e.base == column.BaseTAIS {
		attr, task = AttrReflectivePractice, "Reflective Practice"
	}
	level := LevelNeedsSupport
	if *e.raw >= 1 {
		level = LevelProficient
	}
	res.Attributes[attr] = level
	res.Assessments = append(res.Assessments, &Assessment{
		Date:     e.date,
		Column:   baseCol,
		Type:     TypeTracking,
		TaskName: task,
		Score:    fmtScore(*e.raw),
		Context:  sheet.Context(baseCol),
	})
}

func (ag *Aggregator) emitLegacy(res *RowResult, sheet core.Sheet, comments map[string]string, col string, cell interface{}, today string) {
	lc := ag.legacy[col]
	v, ok := core.CellScore(cell)
	if !ok {
		if text := core.CellString(cell); !core.IsSentinel(text) {
			ag.log.Warn("non-numeric score skipped", map[string]interface{}{
				"column": col, "value": text,
			})
		}
		return
	}

	typ, task := lc.Type, lc.TaskName
	if lc.Kind == column.LegacySocialHours {
		typ = TypeSocialHours
	}
	res.Assessments = append(res.Assessments, &Assessment{
		Date:     sheet.Date(col, today),
		Column:   col,
		Type:     typ,
		TaskName: task,
		Score:    fmtScore(v),
		Comment:  comments[col],
		Context:  sheet.Context(col),
	})
}

// primaryScore picks the composite's main value: percentage wins, then
// MYP, then the lowest-indexed Cambridge sub-score, then the bare column.
func primaryScore(e *scratch) *float64 {
	if e.percentage != nil {
		return e.percentage
	}
	if e.myp != nil {
		return e.myp
	}
	if len(e.cambridge) > 0 {
		indices := make([]int, 0, len(e.cambridge))
		for idx := range e.cambridge {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		v := e.cambridge[indices[0]]
		return &v
	}
	return e.raw
}

func fmtScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
