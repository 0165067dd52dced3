package student

import (
	"testing"

	"github.com/mkuprys/gradefold/core"
	testutil "github.com/mkuprys/gradefold/tests"
)

func classRecords() []*Record {
	return []*Record{
		{ID: "1", FirstName: "Jonas", LastName: "Petraitis", ClassName: "9A"},
		{ID: "2", FirstName: "Maksimas", LastName: "Kazlauskas", ClassName: "9A"},
		{ID: "3", FirstName: "Jonas", LastName: "Petraitis", ClassName: "9B"},
	}
}

func TestResolveExact(t *testing.T) {
	r := NewResolver(nil, 0.9, 0.02, core.NewNopLogger())
	records := classRecords()

	rec := r.Resolve(records, "Jonas", "Petraitis", "9A")
	if rec == nil || rec.ID != "1" {
		t.Fatalf("Resolve() = %+v; want record 1", rec)
	}

	// Case and surrounding whitespace are not significant.
	rec = r.Resolve(records, "  jonas ", "PETRAITIS", "9A")
	if rec == nil || rec.ID != "1" {
		t.Errorf("case-insensitive Resolve() = %+v; want record 1", rec)
	}

	// Class scopes the search.
	rec = r.Resolve(records, "Jonas", "Petraitis", "9B")
	if rec == nil || rec.ID != "3" {
		t.Errorf("Resolve() in 9B = %+v; want record 3", rec)
	}
}

func TestResolveAlias(t *testing.T) {
	aliases := AliasTable{
		"9A": {"Max Kazlauskas": "Maksimas Kazlauskas"},
	}
	r := NewResolver(aliases, 0.9, 0.02, core.NewNopLogger())

	rec := r.Resolve(classRecords(), "Max", "Kazlauskas", "9A")
	if rec == nil || rec.ID != "2" {
		t.Fatalf("alias Resolve() = %+v; want record 2", rec)
	}
}

func TestResolveFuzzy(t *testing.T) {
	log := &testutil.CaptureLogger{}
	r := NewResolver(nil, 0.9, 0.02, log)
	records := classRecords()

	// One-letter typo in the last name still resolves, with a warning.
	rec := r.Resolve(records, "Jonas", "Petraitus", "9A")
	if rec == nil || rec.ID != "1" {
		t.Fatalf("fuzzy Resolve() = %+v; want record 1", rec)
	}
	if !log.Has("WARN", "fuzzy name match") {
		t.Error("fuzzy match was not warned about")
	}

	// A different student stays unresolved.
	if rec := r.Resolve(records, "Tomas", "Jankauskas", "9A"); rec != nil {
		t.Errorf("Resolve() for unknown student = %+v; want nil", rec)
	}
}

func TestResolveAmbiguousTie(t *testing.T) {
	log := &testutil.CaptureLogger{}
	r := NewResolver(nil, 0.9, 0.02, log)
	records := []*Record{
		{ID: "1", FirstName: "Jonas", LastName: "Petraitis", ClassName: "9A"},
		{ID: "2", FirstName: "Jonas", LastName: "Petraitas", ClassName: "9A"},
	}

	// "Petraitus" is one edit from both candidates; neither may be picked.
	if rec := r.Resolve(records, "Jonas", "Petraitus", "9A"); rec != nil {
		t.Errorf("ambiguous Resolve() = %+v; want nil", rec)
	}
	if !log.Has("WARN", "ambiguous") {
		t.Error("ambiguous tie was not warned about")
	}
}

func TestResolveBlankName(t *testing.T) {
	r := NewResolver(nil, 0.9, 0.02, core.NewNopLogger())
	if rec := r.Resolve(classRecords(), "", "", "9A"); rec != nil {
		t.Errorf("Resolve() with blank name = %+v; want nil", rec)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Petraitis", "Petraitis", 1},
		{"Petraitis", "petraitis", 1},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v; want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if got := similarity("Petraitis", "Petraitus"); got <= 0.85 || got >= 1 {
		t.Errorf("similarity one edit = %v; want within (0.85, 1)", got)
	}
	if got := similarity("Petraitis", "Jankauskas"); got >= 0.5 {
		t.Errorf("similarity unrelated = %v; want below 0.5", got)
	}
}
