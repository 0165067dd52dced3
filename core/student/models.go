// Package student holds the per-student gradebook record and the
// ingestion pipeline that folds spreadsheet exports into it.
package student

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/mkuprys/gradefold/core/curriculum"
)

// Assessment type tags carried by Record entries.
const (
	TypeHomework           = "homework"
	TypeHomeworkGraded     = "homework_graded"
	TypeHomeworkReflection = "homework_reflection"
	TypeClasswork          = "classwork"
	TypeTest               = "test"
	TypeSummative          = "summative"
	TypeDiagnostic         = "diagnostic"
	TypePractice           = "practice"
	TypeBoardSolving       = "board_solving"
	TypeConsultation       = "consultation"
	TypeTracking           = "tracking"
	TypeSocialHours        = "social_hours"
)

// Profile attribute names set by the tracking columns, and their levels.
const (
	AttrNotebookOrganization = "notebook_organization"
	AttrReflectivePractice   = "reflective_practice"

	LevelProficient   = "proficient"
	LevelNeedsSupport = "needs_support"
)

// EvaluationDetails is the sub-component bag of a composite assessment.
// Cambridge sub-scores are keyed by index; index 0 is the bare C column.
type EvaluationDetails struct {
	Percentage *float64
	MYP        *float64
	Cambridge  map[int]float64
}

func (d *EvaluationDetails) Empty() bool {
	return d == nil || (d.Percentage == nil && d.MYP == nil && len(d.Cambridge) == 0)
}

// Merge folds src's present components into d, reporting whether anything
// actually changed.
func (d *EvaluationDetails) Merge(src *EvaluationDetails) bool {
	if src == nil {
		return false
	}
	changed := false
	if src.Percentage != nil && (d.Percentage == nil || *d.Percentage != *src.Percentage) {
		d.Percentage = src.Percentage
		changed = true
	}
	if src.MYP != nil && (d.MYP == nil || *d.MYP != *src.MYP) {
		d.MYP = src.MYP
		changed = true
	}
	for idx, score := range src.Cambridge {
		if have, ok := d.Cambridge[idx]; !ok || have != score {
			if d.Cambridge == nil {
				d.Cambridge = make(map[int]float64)
			}
			d.Cambridge[idx] = score
			changed = true
		}
	}
	return changed
}

// Stored as percentage_score / myp_score / cambridge_score /
// cambridge_score_<k> keys, matching the workbook column tags.
func (d *EvaluationDetails) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, 2+len(d.Cambridge))
	if d.Percentage != nil {
		out["percentage_score"] = *d.Percentage
	}
	if d.MYP != nil {
		out["myp_score"] = *d.MYP
	}
	for idx, score := range d.Cambridge {
		key := "cambridge_score"
		if idx > 0 {
			key += "_" + strconv.Itoa(idx)
		}
		out[key] = score
	}
	return json.Marshal(out)
}

func (d *EvaluationDetails) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = EvaluationDetails{}
	for key, score := range raw {
		score := score
		switch {
		case key == "percentage_score":
			d.Percentage = &score
		case key == "myp_score":
			d.MYP = &score
		case key == "cambridge_score":
			if d.Cambridge == nil {
				d.Cambridge = make(map[int]float64)
			}
			d.Cambridge[0] = score
		case strings.HasPrefix(key, "cambridge_score_"):
			idx, err := strconv.Atoi(strings.TrimPrefix(key, "cambridge_score_"))
			if err != nil {
				continue
			}
			if d.Cambridge == nil {
				d.Cambridge = make(map[int]float64)
			}
			d.Cambridge[idx] = score
		}
	}
	return nil
}

// Assessment is one scored event. The pair (Date, Column) is the unique
// key within a student's list; Upsert is the only way entries are added.
type Assessment struct {
	Date     string             `json:"date"`
	Column   string             `json:"column"`
	Type     string             `json:"type"`
	TaskName string             `json:"task_name,omitempty"`
	Score    string             `json:"score"`
	Comment  string             `json:"comment,omitempty"`
	Context  string             `json:"context,omitempty"`
	Details  *EvaluationDetails `json:"evaluation_details,omitempty"`
	Added    string             `json:"added"`
	Updated  string             `json:"updated,omitempty"`
}

// Profile is the non-assessment academic context of a student.
type Profile struct {
	Grade              int               `json:"grade"`
	AcademicYear       string            `json:"academic_year"`
	LearningAttributes map[string]string `json:"learning_attributes,omitempty"`
}

// Engagement is derived from the assessment list, recomputed after every
// ingestion rather than maintained incrementally.
type Engagement struct {
	HomeworkOnTimeRate *float64 `json:"homework_on_time_rate,omitempty"`
	BoardSolvingCount  int      `json:"board_solving_count"`
	ConsultationVisits int      `json:"consultation_visits"`
	SocialHours        float64  `json:"social_hours"`
}

type Metadata struct {
	SchemaVersion string `json:"schema_version"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Record is one student's whole stored state.
type Record struct {
	ID          string                         `json:"id"`
	FirstName   string                         `json:"first_name"`
	LastName    string                         `json:"last_name"`
	ClassName   string                         `json:"class_name"`
	Profile     Profile                        `json:"profile"`
	Assessments []*Assessment                  `json:"assessments"`
	Engagement  Engagement                     `json:"engagement"`
	Curriculum  *curriculum.Progress           `json:"curriculum_progress,omitempty"`
	Missions    map[string]*curriculum.Mission `json:"missions,omitempty"`
	Metadata    Metadata                       `json:"metadata"`
}

func (r *Record) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Progress returns the curriculum state, creating it lazily.
func (r *Record) Progress() *curriculum.Progress {
	if r.Curriculum == nil {
		r.Curriculum = &curriculum.Progress{}
	}
	return r.Curriculum
}

func (r *Record) SetAttribute(name, level string) {
	if r.Profile.LearningAttributes == nil {
		r.Profile.LearningAttributes = make(map[string]string)
	}
	r.Profile.LearningAttributes[name] = level
}

// RecomputeEngagement rebuilds the derived engagement metrics from the
// assessment list.
func (r *Record) RecomputeEngagement() {
	eng := Engagement{}
	hwTotal, hwOnTime := 0, 0
	for _, a := range r.Assessments {
		switch a.Type {
		case TypeHomework:
			score, err := strconv.ParseFloat(a.Score, 64)
			if err != nil {
				continue
			}
			hwTotal++
			if score >= 1 {
				hwOnTime++
			}
		case TypeBoardSolving:
			eng.BoardSolvingCount++
		case TypeConsultation:
			eng.ConsultationVisits++
		case TypeSocialHours:
			if hours, err := strconv.ParseFloat(a.Score, 64); err == nil {
				eng.SocialHours += hours
			}
		}
	}
	if hwTotal > 0 {
		rate := float64(hwOnTime) / float64(hwTotal)
		eng.HomeworkOnTimeRate = &rate
	}
	r.Engagement = eng
}

// SortAssessments orders the list by date then column for stable exports.
func (r *Record) SortAssessments() {
	sort.Slice(r.Assessments, func(i, j int) bool {
		a, b := r.Assessments[i], r.Assessments[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Column < b.Column
	})
}
