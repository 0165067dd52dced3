package schema

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core/curriculum"
	"github.com/mkuprys/gradefold/core/student"
)

// v3 predates the v4 field renames: assessment sub-scores lived under
// "summative_details", board solving was called "participation", tests
// were typed "summative", and objectives were tracked as 0..3 levels
// instead of scores.
type v3Adapter struct{}

func (v3Adapter) Version() string { return V3 }

type v3Assessment struct {
	Date     string                     `json:"date"`
	Column   string                     `json:"column"`
	Type     string                     `json:"type"`
	TaskName string                     `json:"task_name,omitempty"`
	Score    string                     `json:"score"`
	Comment  string                     `json:"comment,omitempty"`
	Context  string                     `json:"context,omitempty"`
	Details  *student.EvaluationDetails `json:"summative_details,omitempty"`
	Added    string                     `json:"added"`
	Updated  string                     `json:"updated,omitempty"`
}

type v3LevelEntry struct {
	Level      int    `json:"level"`
	Date       string `json:"date"`
	Assessment string `json:"assessment"`
}

type v3Objective struct {
	CurrentLevel *int           `json:"current_level"`
	LastUpdated  string         `json:"last_updated"`
	History      []v3LevelEntry `json:"history"`
}

type v3Record struct {
	ID          string                 `json:"id"`
	FirstName   string                 `json:"first_name"`
	LastName    string                 `json:"last_name"`
	ClassName   string                 `json:"class_name"`
	Profile     student.Profile        `json:"profile"`
	Assessments []v3Assessment         `json:"assessments"`
	Engagement  student.Engagement     `json:"engagement"`
	Objectives  map[string]v3Objective `json:"objective_levels,omitempty"`
	Metadata    student.Metadata       `json:"metadata"`
}

var v3TypeToCurrent = map[string]string{
	"participation": student.TypeBoardSolving,
	"summative":     student.TypeTest,
}

var currentTypeToV3 = map[string]string{
	student.TypeBoardSolving: "participation",
	student.TypeTest:         "summative",
}

// levelScore maps a v3 objective level onto the score scale. Levels 1 and
// 2 both meant partial mastery.
func levelScore(level int) float64 {
	switch {
	case level <= 0:
		return 0
	case level >= 3:
		return 1
	default:
		return 0.5
	}
}

func scoreLevel(score float64) int {
	switch {
	case score >= 1:
		return 3
	case score > 0:
		return 1
	default:
		return 0
	}
}

func (v3Adapter) Decode(data []byte) (*student.Record, error) {
	old := &v3Record{}
	if err := json.Unmarshal(data, old); err != nil {
		return nil, errors.Wrap(err, "decoding v3 record")
	}

	rec := &student.Record{
		ID:         old.ID,
		FirstName:  old.FirstName,
		LastName:   old.LastName,
		ClassName:  old.ClassName,
		Profile:    old.Profile,
		Engagement: old.Engagement,
		Metadata:   old.Metadata,
	}
	for _, a := range old.Assessments {
		typ := a.Type
		if mapped, ok := v3TypeToCurrent[typ]; ok {
			typ = mapped
		}
		name := a.TaskName
		if name == "" {
			name = v3TaskName(a.Column, typ)
		}
		rec.Assessments = append(rec.Assessments, &student.Assessment{
			Date:     a.Date,
			Column:   a.Column,
			Type:     typ,
			TaskName: name,
			Score:    a.Score,
			Comment:  a.Comment,
			Context:  a.Context,
			Details:  a.Details,
			Added:    a.Added,
			Updated:  a.Updated,
		})
	}

	if len(old.Objectives) > 0 {
		progress := rec.Progress()
		for code, obj := range old.Objectives {
			op := progress.Objective(code)
			op.LastUpdated = obj.LastUpdated
			for _, h := range obj.History {
				score := levelScore(h.Level)
				op.History = append(op.History, curriculum.HistoryEntry{
					Score: &score, Date: h.Date, Assessment: h.Assessment,
				})
			}
			if obj.CurrentLevel != nil {
				score := levelScore(*obj.CurrentLevel)
				op.CurrentScore = &score
			}
		}
	}
	return rec, nil
}

// v3 documents often lack task names; later versions always carry one
// for graded work, so synthesize the titles the processor would assign.
func v3TaskName(column, typ string) string {
	switch typ {
	case student.TypeTest:
		return column + ": Test"
	case student.TypeSummative:
		return column + ": Unit Summative"
	}
	return ""
}

func (v3Adapter) Encode(rec *student.Record) ([]byte, error) {
	old := &v3Record{
		ID:         rec.ID,
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		ClassName:  rec.ClassName,
		Profile:    rec.Profile,
		Engagement: rec.Engagement,
		Metadata:   rec.Metadata,
	}
	old.Metadata.SchemaVersion = V3

	for _, a := range rec.Assessments {
		typ := a.Type
		if mapped, ok := currentTypeToV3[typ]; ok {
			typ = mapped
		}
		old.Assessments = append(old.Assessments, v3Assessment{
			Date:     a.Date,
			Column:   a.Column,
			Type:     typ,
			TaskName: a.TaskName,
			Score:    a.Score,
			Comment:  a.Comment,
			Context:  a.Context,
			Details:  a.Details,
			Added:    a.Added,
			Updated:  a.Updated,
		})
	}

	if rec.Curriculum != nil && len(rec.Curriculum.Objectives) > 0 {
		old.Objectives = make(map[string]v3Objective, len(rec.Curriculum.Objectives))
		for code, op := range rec.Curriculum.Objectives {
			obj := v3Objective{LastUpdated: op.LastUpdated}
			for _, h := range op.History {
				level := 0
				if h.Score != nil {
					level = scoreLevel(*h.Score)
				}
				obj.History = append(obj.History, v3LevelEntry{
					Level: level, Date: h.Date, Assessment: h.Assessment,
				})
			}
			if op.CurrentScore != nil {
				level := scoreLevel(*op.CurrentScore)
				obj.CurrentLevel = &level
			}
			old.Objectives[code] = obj
		}
	}
	return json.MarshalIndent(old, "", "  ")
}
