package curriculum

import (
	"sort"

	"github.com/mkuprys/gradefold/core"
)

// Evidence is one assessment's worth of curriculum-relevant scores,
// already aggregated from the raw sheet columns.
type Evidence struct {
	Base    string // base assessment column (SD2, KD1, PD3)
	Column  string // full column name as seen on the sheet
	Family  string // column family (SD, KD, PD)
	Date    string // ISO date of the assessment

	Percentage *float64
	MYP        *float64
	// Cambridge sub-scores keyed by index. Index 0 is the bare C column,
	// index k is the Ck column.
	Cambridge map[int]float64
}

// Engine applies assessment evidence to a student's objective progress
// and mission state.
type Engine struct {
	mapping     *Mapping
	log         core.Logger
	allowReopen bool
}

func NewEngine(mapping *Mapping, log core.Logger, allowReopen bool) *Engine {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Engine{mapping: mapping, log: log, allowReopen: allowReopen}
}

// Mapping exposes the engine's objective mapping for mission setup.
func (e *Engine) Mapping() *Mapping { return e.mapping }

// Apply folds one piece of evidence into the student's progress and
// missions. Unknown assessments are skipped with a warning. Practice
// assessments (PD) feed mission attempts; tests and unit summatives
// (SD, KD) feed objective history.
func (e *Engine) Apply(p *Progress, missions map[string]*Mission, ev Evidence) {
	codes := e.mapping.ObjectivesFor(ev.Base)
	if len(codes) == 0 {
		e.log.Warn("no objectives mapped for assessment", map[string]interface{}{
			"assessment": ev.Base, "column": ev.Column,
		})
		return
	}

	if ev.Family == "PD" {
		e.applyPractice(missions, ev, codes)
		e.SyncMissions(p, missions, ev.Date)
		return
	}

	if len(ev.Cambridge) == 0 {
		e.log.Debug("assessment carries no objective-level scores", map[string]interface{}{
			"assessment": ev.Base, "column": ev.Column,
		})
		return
	}

	detailed := e.mapping.DetailedFor(ev.Base)

	indices := make([]int, 0, len(ev.Cambridge))
	for idx := range ev.Cambridge {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		score := ev.Cambridge[idx]
		code, ok := e.resolveObjective(codes, detailed, idx, ev)
		if !ok {
			continue
		}
		e.UpdateObjective(p, code, &score, ev.Date, ev.Column)
	}

	e.SyncMissions(p, missions, ev.Date)
}

// resolveObjective turns a Cambridge sub-score index into an objective
// code. A detailed pinning wins; otherwise the bare C column maps to the
// first objective and Ck maps to the k-th. Indices beyond the objective
// list are dropped with a warning.
func (e *Engine) resolveObjective(codes []string, detailed map[int]string, idx int, ev Evidence) (string, bool) {
	if code, ok := detailed[idx]; ok {
		return code, true
	}
	pos := 0
	if idx > 0 {
		pos = idx - 1
	}
	if pos >= len(codes) {
		e.log.Warn("objective index out of range, dropped", map[string]interface{}{
			"assessment": ev.Base, "column": ev.Column, "index": idx, "objectives": len(codes),
		})
		return "", false
	}
	return codes[pos], true
}

// UpdateObjective appends a history entry for the objective and refreshes
// its current score. An entry identical to one already recorded (same
// score, date and column) is dropped so re-running an import does not
// duplicate history.
func (e *Engine) UpdateObjective(p *Progress, code string, score *float64, date, column string) {
	op := p.Objective(code)

	entry := HistoryEntry{Score: score, Date: date, Assessment: column}
	for _, h := range op.History {
		if sameScore(h.Score, entry.Score) && h.Date == entry.Date && h.Assessment == entry.Assessment {
			return
		}
	}
	op.History = append(op.History, entry)

	// Current score and last-updated follow the chronologically latest
	// evidence, not the insertion order, so out-of-order imports converge
	// on the same state.
	latest := op.History[0]
	for _, h := range op.History[1:] {
		if h.Date >= latest.Date {
			latest = h
		}
	}
	op.CurrentScore = latest.Score
	op.LastUpdated = latest.Date
}

func (e *Engine) applyPractice(missions map[string]*Mission, ev Evidence, codes []string) {
	score := compositeScore(ev)
	attempt := Attempt{
		Date:             ev.Date,
		Score:            score,
		AssessmentColumn: ev.Column,
		Points:           ev.Percentage,
		MYPLevel:         ev.MYP,
	}

	touched := false
	for _, m := range missions {
		for code, mo := range m.Objectives {
			if mo.PracticeAssessment != ev.Base && !containsCode(codes, code) {
				continue
			}
			if m.Status == MissionCancelled {
				e.log.Warn("attempt on cancelled mission skipped", map[string]interface{}{
					"mission": m.ID, "objective": code, "column": ev.Column,
				})
				continue
			}
			if m.Status == MissionCompleted && !e.allowReopen {
				e.log.Debug("attempt on completed mission ignored", map[string]interface{}{
					"mission": m.ID, "objective": code, "column": ev.Column,
				})
				continue
			}
			if e.recordAttempt(m, mo, attempt) {
				touched = true
			}
		}
	}
	if !touched {
		e.log.Debug("practice attempt matched no mission", map[string]interface{}{
			"assessment": ev.Base, "column": ev.Column,
		})
	}
}

// recordAttempt appends the attempt unless an identical one is already
// recorded, and moves the mission forward as needed.
func (e *Engine) recordAttempt(m *Mission, mo *MissionObjective, attempt Attempt) bool {
	for _, a := range mo.Attempts {
		if a.Date == attempt.Date && a.AssessmentColumn == attempt.AssessmentColumn {
			return false
		}
	}
	mo.Attempts = append(mo.Attempts, attempt)
	if attempt.Score != nil {
		mo.CurrentScore = *attempt.Score
	}
	mo.LastUpdated = core.Today()

	switch m.Status {
	case MissionNotStarted:
		m.Status = MissionInProgress
		m.StartedDate = attempt.Date
	case MissionCompleted:
		if e.allowReopen && attempt.Score != nil && *attempt.Score < mo.TargetScore {
			m.Status = MissionInProgress
			m.CompletedDate = ""
			e.log.Info("mission reopened after regression", map[string]interface{}{
				"mission": m.ID, "objective": mo.ObjectiveCode,
			})
		}
	}
	return true
}

// SyncMissions refreshes mission objective scores from the objective
// history and completes missions whose targets are all met.
func (e *Engine) SyncMissions(p *Progress, missions map[string]*Mission, date string) {
	for _, m := range missions {
		if m.Status == MissionCancelled || m.Status == MissionCompleted {
			continue
		}

		done := len(m.Objectives) > 0
		missing := 0.0
		for code, mo := range m.Objectives {
			if op, ok := p.Objectives[code]; ok && op.CurrentScore != nil {
				if *op.CurrentScore > mo.CurrentScore {
					mo.CurrentScore = *op.CurrentScore
					mo.LastUpdated = core.Today()
				}
			}
			if mo.CurrentScore < mo.TargetScore {
				done = false
			}
			missing += missingPoints(mo.CurrentScore)
		}
		m.MissingPointsCurrent = missing

		if done {
			if m.Status == MissionNotStarted {
				m.StartedDate = date
			}
			m.Status = MissionCompleted
			m.CompletedDate = date
			e.log.Info("mission completed", map[string]interface{}{"mission": m.ID, "title": m.Title})
		}
	}
}

// RecalculateSummary rebuilds the mastery summary over every objective in
// the curriculum, counting unseen objectives as not assessed.
func (e *Engine) RecalculateSummary(p *Progress) {
	all := make(map[string]bool)
	for code := range e.mapping.Units {
		all[code] = true
	}
	for code := range p.Objectives {
		all[code] = true
	}

	s := &Summary{Total: len(all)}
	for code := range all {
		op, ok := p.Objectives[code]
		if !ok || op.CurrentScore == nil {
			s.NotAssessed++
			continue
		}
		if op.LastUpdated > s.LastFullUpdate {
			s.LastFullUpdate = op.LastUpdated
		}
		switch score := *op.CurrentScore; {
		case score >= 1:
			s.Mastered++
		case score > 0:
			s.Partial++
		default:
			s.NotMastered++
		}
	}
	p.Summary = s
}

// compositeScore picks the best available score for an attempt, normalised
// to the 0..1 objective scale. Percentage wins over MYP level, which wins
// over the bare Cambridge score.
func compositeScore(ev Evidence) *float64 {
	if ev.Percentage != nil {
		v := *ev.Percentage / 100
		return &v
	}
	if ev.MYP != nil {
		v := *ev.MYP / 8
		return &v
	}
	if v, ok := ev.Cambridge[0]; ok {
		return &v
	}
	return nil
}

func missingPoints(score float64) float64 {
	if d := 1 - score; d > 0 {
		return d
	}
	return 0
}

func sameScore(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
