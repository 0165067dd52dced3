package curriculum

import "strings"

// Mapping is the externally supplied assessment -> objective lookup. It is
// read-only configuration: components receive it, they never mutate it.
type Mapping struct {
	// Assessments maps a base assessment column (SD1, KD2, PD3) to the
	// ordered list of objective codes it tests.
	Assessments map[string][]string

	// Detailed pins a specific Cambridge sub-score index to an objective
	// for assessments where several objectives share one column family.
	// Index 0 is the bare C column.
	Detailed map[string]map[int]string

	// Strands groups objective codes by curriculum strand name.
	Strands map[string][]string

	// Units maps an objective code to the teaching unit(s) covering it.
	Units map[string][]string
}

// ObjectivesFor returns the ordered objective list for a base assessment
// column, or nil when the assessment is not curriculum-relevant.
func (m *Mapping) ObjectivesFor(base string) []string {
	return m.Assessments[base]
}

// DetailedFor returns the C-index -> objective pinning for a base column.
func (m *Mapping) DetailedFor(base string) map[int]string {
	return m.Detailed[base]
}

// StrandFor returns the strand name for an objective code.
func (m *Mapping) StrandFor(code string) string {
	for strand, codes := range m.Strands {
		for _, c := range codes {
			if c == code {
				return strand
			}
		}
	}
	return "Unknown"
}

// UnitsFor returns the teaching units covering an objective code.
func (m *Mapping) UnitsFor(code string) []string {
	return m.Units[code]
}

// PracticeFor returns the practice (PD) assessment covering an objective
// code, or "" when none is mapped.
func (m *Mapping) PracticeFor(code string) string {
	for base, codes := range m.Assessments {
		if !strings.HasPrefix(base, "PD") {
			continue
		}
		for _, c := range codes {
			if c == code {
				return base
			}
		}
	}
	return ""
}

// DefaultMapping is the Stage 9 mathematics mapping currently in use.
func DefaultMapping() *Mapping {
	return &Mapping{
		Assessments: map[string][]string{
			// Unit summatives
			"KD1": {"9Ni.01", "9Ni.02", "9Ni.03", "9Ni.04"},
			"KD2": {"9Ae.01", "9Ae.02", "9Ae.03", "9Ae.04"},

			// Tests
			"SD1": {"9Ni.01", "9Ni.04"},
			"SD2": {"9Ni.03"},
			"SD3": {"9Ni.02"},
			"SD4": {"9Ae.01"},
			"SD5": {"9Ae.03"},
			"SD6": {"9Ae.02"},
			"SD7": {"9Ae.02"},
			"SD8": {"9Ae.02"},
			"SD9": {"9Ae.04"},

			// Practice assessments
			"PD1": {"9Ni.01", "9Ni.02", "9Ni.03", "9Ni.04"},
			"PD2": {"9Ae.01", "9Ae.02", "9Ae.03", "9Ae.04"},
			"PD3": {"9Ae.05", "9Ae.06", "9Ae.07"},
			"PD4": {"9Np.01", "9Np.02"},
		},
		Detailed: map[string]map[int]string{
			"SD1": {1: "9Ni.01", 2: "9Ni.04"},
			"SD2": {0: "9Ni.03"},
			"SD3": {0: "9Ni.02"},
			"SD4": {0: "9Ae.01"},
			"SD5": {0: "9Ae.03"},
			"SD6": {0: "9Ae.02"},
			"SD7": {0: "9Ae.02"},
			"SD8": {0: "9Ae.02"},
			"SD9": {0: "9Ae.04"},
		},
		Strands: map[string][]string{
			"Number: Integers":     {"9Ni.01", "9Ni.02", "9Ni.03", "9Ni.04"},
			"Number: Fractions":    {"9NF.01", "9NF.02", "9NF.03", "9NF.05", "9NF.06", "9NF.07", "9NF.08"},
			"Number: Probability":  {"9Np.01", "9Np.02"},
			"Algebra: Expressions": {"9Ae.01", "9Ae.02", "9Ae.03", "9Ae.04", "9Ae.05", "9Ae.06", "9Ae.07"},
			"Algebra: Sequences":   {"9As.01", "9As.02", "9As.03", "9As.04", "9As.05", "9As.06", "9As.07"},
			"Geometry: Graphs": {
				"9Gg.01", "9Gg.02", "9Gg.03", "9Gg.04", "9Gg.05", "9Gg.06",
				"9Gg.07", "9Gg.08", "9Gg.09", "9Gg.10", "9Gg.11",
			},
			"Geometry: Properties": {"9Gp.01", "9Gp.02", "9Gp.03", "9Gp.04", "9Gp.05", "9Gp.06", "9Gp.07"},
			"Space":                {"9Sp.01", "9Sp.02", "9Sp.03", "9Sp.04"},
			"Statistics":           {"9Ss.01", "9Ss.02", "9Ss.03", "9Ss.04", "9Ss.05"},
		},
		Units: map[string][]string{
			"9Ni.01": {"1.1"},
			"9Ni.04": {"1.1"},
			"9Ni.03": {"1.2"},
			"9Ni.02": {"1.3"},

			"9Ae.01": {"2.1"},
			"9Ae.03": {"2.2"},
			"9Ae.02": {"2.3", "2.4", "2.5"},
			"9Ae.04": {"2.6"},

			"9Np.01": {"3.1"},
			"9Np.02": {"3.4"},

			"9Ae.05": {"4.1"},
			"9Ae.06": {"4.2"},
			"9Ae.07": {"4.3"},

			"9Gg.09": {"5.1"},
			"9Gg.07": {"5.2"},
			"9Gg.08": {"5.3"},
			"9Gg.11": {"5.4"},
			"9Gg.10": {"5.5"},

			"9Ss.01": {"6.1"},
			"9Ss.05": {"6.1", "6.2", "15.2"},
			"9Ss.02": {"6.2"},

			"9Gg.01": {"7.1"},
			"9Gg.03": {"7.2"},
			"9Gg.02": {"7.3"},

			"9NF.01": {"8.1"},
			"9NF.02": {"8.2"},
			"9NF.03": {"8.3", "8.4"},

			"9As.01": {"9.1"},
			"9As.02": {"9.2"},
			"9As.03": {"9.3"},
			"9As.04": {"10.1"},
			"9As.05": {"10.2"},
			"9As.06": {"10.3"},
			"9As.07": {"10.4"},

			"9NF.08": {"11.1"},
			"9NF.07": {"11.2"},

			"9Sp.01": {"12.1"},
			"9Sp.02": {"12.2"},
			"9Sp.03": {"12.3"},
			"9Sp.04": {"12.4"},

			"9Gp.01": {"13.1"},
			"9Gp.02": {"13.2"},
			"9Gp.03": {"13.3"},
			"9Gp.04": {"13.3"},
			"9Gp.05": {"13.3"},
			"9Gp.06": {"13.4"},
			"9Gp.07": {"13.4"},

			"9Gg.04": {"14.1"},
			"9Gg.05": {"14.2"},
			"9Gg.06": {"14.3"},

			"9Ss.03": {"15.1", "15.2", "15.3", "15.5"},
			"9Ss.04": {"15.4"},
		},
	}
}
