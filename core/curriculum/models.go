// Package curriculum tracks per-objective mastery and goal missions built
// on top of curriculum objective codes.
package curriculum

// HistoryEntry is one observation of an objective score.
type HistoryEntry struct {
	Score      *float64 `json:"score"`
	Date       string   `json:"date"`
	Assessment string   `json:"assessment"`
}

// ObjectiveProgress is the mastery state of one objective code.
// current_score always equals the score of the chronologically latest
// history entry; history is append-only.
type ObjectiveProgress struct {
	CurrentScore *float64       `json:"current_score"`
	LastUpdated  string         `json:"last_updated"`
	History      []HistoryEntry `json:"history"`
}

// Summary is the per-student mastery recount, recomputed rather than
// maintained incrementally.
type Summary struct {
	Total          int    `json:"total"`
	Mastered       int    `json:"mastered"`
	Partial        int    `json:"partial"`
	NotMastered    int    `json:"not_mastered"`
	NotAssessed    int    `json:"not_assessed"`
	LastFullUpdate string `json:"last_full_update"`
}

// MaterialUnit is the completion state of one teaching unit.
type MaterialUnit struct {
	Percentage    float64 `json:"percentage"`
	CompletedDate string  `json:"completed_date,omitempty"`
	LastUpdated   string  `json:"last_updated"`
}

// Progress is a student's whole curriculum-progress state.
type Progress struct {
	Objectives map[string]*ObjectiveProgress `json:"cambridge_objectives"`
	Summary    *Summary                      `json:"cambridge_objectives_summary,omitempty"`
	Materials  map[string]MaterialUnit       `json:"material_completion,omitempty"`
}

// Objective returns the progress entry for code, creating it lazily.
func (p *Progress) Objective(code string) *ObjectiveProgress {
	if p.Objectives == nil {
		p.Objectives = make(map[string]*ObjectiveProgress)
	}
	obj, ok := p.Objectives[code]
	if !ok {
		obj = &ObjectiveProgress{}
		p.Objectives[code] = obj
	}
	return obj
}

type MissionStatus string

const (
	MissionNotStarted MissionStatus = "not_started"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionCancelled  MissionStatus = "cancelled"
)

// Attempt is one piece of assessment evidence recorded against a mission
// objective.
type Attempt struct {
	Date             string   `json:"date"`
	Score            *float64 `json:"score"`
	AssessmentColumn string   `json:"assessment_column"`
	Points           *float64 `json:"points,omitempty"`
	MYPLevel         *float64 `json:"myp_level,omitempty"`
}

// MissionObjective is one objective tracked inside a mission.
type MissionObjective struct {
	ObjectiveCode      string    `json:"objective_code"`
	InitialScore       float64   `json:"initial_score"`
	CurrentScore       float64   `json:"current_score"`
	TargetScore        float64   `json:"target_score"`
	PracticeAssessment string    `json:"pd_assessment,omitempty"`
	LastUpdated        string    `json:"last_updated,omitempty"`
	Attempts           []Attempt `json:"attempts"`
}

// Mission is a tracked goal bundling one or more objective codes.
type Mission struct {
	ID                   string                       `json:"mission_id"`
	Title                string                       `json:"title"`
	Type                 string                       `json:"type"`
	Status               MissionStatus                `json:"status"`
	CreatedDate          string                       `json:"created_date"`
	StartedDate          string                       `json:"started_date,omitempty"`
	CompletedDate        string                       `json:"completed_date,omitempty"`
	Deadline             string                       `json:"deadline,omitempty"`
	Objectives           map[string]*MissionObjective `json:"objectives"`
	MissingPointsInitial float64                      `json:"missing_points_initial"`
	MissingPointsCurrent float64                      `json:"missing_points_current"`
}
