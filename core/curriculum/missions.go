package curriculum

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core"
)

// Mission priority buckets by total missing points.
const (
	PriorityCritical = "critical"
	PriorityModerate = "moderate"
	PriorityMinor    = "minor"
)

var ErrMissionTransition = errors.New("curriculum: invalid mission transition")

// NewMission creates a remediation mission over the given objectives,
// seeding each objective from the student's current progress.
func NewMission(p *Progress, mapping *Mapping, title, mType string, codes []string, deadline string) (*Mission, error) {
	if len(codes) == 0 {
		return nil, core.NewValidationError(errors.New("mission requires at least one objective"))
	}

	m := &Mission{
		ID:          uuid.New().String(),
		Title:       title,
		Type:        mType,
		Status:      MissionNotStarted,
		CreatedDate: core.Today(),
		Deadline:    deadline,
		Objectives:  make(map[string]*MissionObjective, len(codes)),
	}

	for _, code := range codes {
		initial := 0.0
		if op, ok := p.Objectives[code]; ok && op.CurrentScore != nil {
			initial = *op.CurrentScore
		}
		m.Objectives[code] = &MissionObjective{
			ObjectiveCode:      code,
			InitialScore:       initial,
			CurrentScore:       initial,
			TargetScore:        1,
			PracticeAssessment: mapping.PracticeFor(code),
			LastUpdated:        core.Today(),
		}
		m.MissingPointsInitial += missingPoints(initial)
	}
	m.MissingPointsCurrent = m.MissingPointsInitial
	return m, nil
}

// Priority buckets the mission by how many mastery points are still
// missing across its objectives.
func (m *Mission) Priority() string {
	switch {
	case m.MissingPointsCurrent >= 5:
		return PriorityCritical
	case m.MissingPointsCurrent >= 3:
		return PriorityModerate
	default:
		return PriorityMinor
	}
}

// Overdue reports whether the mission has an unmet deadline.
func (m *Mission) Overdue(today string) bool {
	if m.Deadline == "" || m.Status == MissionCompleted || m.Status == MissionCancelled {
		return false
	}
	return m.Deadline < today
}

// ProgressRatio is the share of initially missing points recovered so far.
func (m *Mission) ProgressRatio() float64 {
	if m.MissingPointsInitial == 0 {
		return 1
	}
	recovered := m.MissingPointsInitial - m.MissingPointsCurrent
	if recovered < 0 {
		recovered = 0
	}
	return recovered / m.MissingPointsInitial
}

// Start moves a pending mission into progress.
func (m *Mission) Start() error {
	if m.Status != MissionNotStarted {
		return errors.Wrapf(ErrMissionTransition, "cannot start mission in status %q", m.Status)
	}
	m.Status = MissionInProgress
	m.StartedDate = core.Today()
	return nil
}

// Complete marks the mission done regardless of remaining points.
func (m *Mission) Complete() error {
	switch m.Status {
	case MissionCompleted:
		return nil
	case MissionCancelled:
		return errors.Wrap(ErrMissionTransition, "cannot complete a cancelled mission")
	}
	if m.Status == MissionNotStarted {
		m.StartedDate = core.Today()
	}
	m.Status = MissionCompleted
	m.CompletedDate = core.Today()
	return nil
}

// Cancel abandons the mission. Completed missions stay completed.
func (m *Mission) Cancel() error {
	if m.Status == MissionCompleted {
		return errors.Wrap(ErrMissionTransition, "cannot cancel a completed mission")
	}
	m.Status = MissionCancelled
	return nil
}

// MissionStats summarises a student's mission board.
type MissionStats struct {
	Total      int
	ByStatus   map[MissionStatus]int
	ByPriority map[string]int
	Overdue    int
}

func SummariseMissions(missions map[string]*Mission) MissionStats {
	stats := MissionStats{
		ByStatus:   make(map[MissionStatus]int),
		ByPriority: make(map[string]int),
	}
	today := core.Today()
	for _, m := range missions {
		stats.Total++
		stats.ByStatus[m.Status]++
		if m.Status == MissionNotStarted || m.Status == MissionInProgress {
			stats.ByPriority[m.Priority()]++
		}
		if m.Overdue(today) {
			stats.Overdue++
		}
	}
	return stats
}

// ActiveMissions returns the open missions sorted by urgency, most missing
// points first, ties broken by earliest deadline.
func ActiveMissions(missions map[string]*Mission) []*Mission {
	var active []*Mission
	for _, m := range missions {
		if m.Status == MissionNotStarted || m.Status == MissionInProgress {
			active = append(active, m)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].MissingPointsCurrent != active[j].MissingPointsCurrent {
			return active[i].MissingPointsCurrent > active[j].MissingPointsCurrent
		}
		di, dj := active[i].Deadline, active[j].Deadline
		if di == "" {
			di = "9999-99-99"
		}
		if dj == "" {
			dj = "9999-99-99"
		}
		if di != dj {
			return di < dj
		}
		return active[i].ID < active[j].ID
	})
	return active
}
