package column

// LegacyKind says how a pre-grammar column is consumed.
type LegacyKind string

const (
	// LegacyAssessment columns are emitted directly as single assessments.
	LegacyAssessment LegacyKind = "assessment"
	// LegacyComment columns attach free text to a parent column.
	LegacyComment LegacyKind = "comment"
	// LegacySocialHours columns set the engagement social-hours counter.
	LegacySocialHours LegacyKind = "social_hours"
)

// LegacyColumn is one entry of the hand-maintained table covering columns
// that predate the pattern grammar.
type LegacyColumn struct {
	Kind         LegacyKind
	Type         string // assessment type for LegacyAssessment entries
	TaskName     string
	ParentColumn string // for LegacyComment entries
}

// LegacyMapping is injected, read-only configuration: column name -> meaning.
type LegacyMapping map[string]LegacyColumn

// DefaultLegacyMapping covers the columns still present in older workbooks.
func DefaultLegacyMapping() LegacyMapping {
	return LegacyMapping{
		"SOC": {Kind: LegacySocialHours, TaskName: "Social Hours"},

		"KONS1": {Kind: LegacyAssessment, Type: "consultation", TaskName: "Consultation 1"},
		"KONS2": {Kind: LegacyAssessment, Type: "consultation", TaskName: "Consultation 2"},

		"DIAG1": {Kind: LegacyAssessment, Type: "diagnostic", TaskName: "Diagnostic Assessment 1"},
		"DIAG2": {Kind: LegacyAssessment, Type: "diagnostic", TaskName: "Diagnostic Assessment 2"},

		"HW1":   {Kind: LegacyAssessment, Type: "homework", TaskName: "HW1: Homework"},
		"HW2":   {Kind: LegacyAssessment, Type: "homework", TaskName: "HW2: Homework"},
		"HW1 K": {Kind: LegacyComment, ParentColumn: "HW1"},
		"HW2 K": {Kind: LegacyComment, ParentColumn: "HW2"},
	}
}
