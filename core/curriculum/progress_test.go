package curriculum

import (
	"testing"

	"github.com/mkuprys/gradefold/core"
)

func fptr(v float64) *float64 { return &v }

func newTestEngine(allowReopen bool) *Engine {
	return NewEngine(DefaultMapping(), core.NewNopLogger(), allowReopen)
}

func TestApplyObjectiveScores(t *testing.T) {
	tests := []struct {
		name string
		ev   Evidence
		want map[string]float64
	}{
		{
			name: "detailed mapping pins sub-scores",
			ev: Evidence{
				Base: "SD1", Column: "SD1", Family: "SD", Date: "2025-10-01",
				Cambridge: map[int]float64{1: 1, 2: 0.5},
			},
			want: map[string]float64{"9Ni.01": 1, "9Ni.04": 0.5},
		},
		{
			name: "bare cambridge column maps to first objective",
			ev: Evidence{
				Base: "SD2", Column: "SD2", Family: "SD", Date: "2025-10-08",
				Cambridge: map[int]float64{0: 1},
			},
			want: map[string]float64{"9Ni.03": 1},
		},
		{
			name: "unit summative indexes into objective list",
			ev: Evidence{
				Base: "KD1", Column: "KD1", Family: "KD", Date: "2025-11-20",
				Cambridge: map[int]float64{1: 1, 2: 0, 3: 0.5, 4: 1},
			},
			want: map[string]float64{"9Ni.01": 1, "9Ni.02": 0, "9Ni.03": 0.5, "9Ni.04": 1},
		},
		{
			name: "out of range index is dropped",
			ev: Evidence{
				Base: "KD1", Column: "KD1 C9", Family: "KD", Date: "2024-01-01",
				Cambridge: map[int]float64{9: 1},
			},
			want: map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(false)
			p := &Progress{}
			eng.Apply(p, nil, tt.ev)

			for code, score := range tt.want {
				op, ok := p.Objectives[code]
				if !ok {
					t.Fatalf("objective %s not recorded", code)
				}
				if op.CurrentScore == nil || *op.CurrentScore != score {
					t.Errorf("objective %s: current score = %v; want %v", code, op.CurrentScore, score)
				}
				if len(op.History) != 1 {
					t.Errorf("objective %s: history length = %d; want 1", code, len(op.History))
				}
			}
			if len(p.Objectives) != len(tt.want) {
				t.Errorf("recorded %d objectives; want %d", len(p.Objectives), len(tt.want))
			}
		})
	}
}

func TestApplyUnknownAssessmentSkipped(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}
	eng.Apply(p, nil, Evidence{
		Base: "SD99", Column: "SD99", Family: "SD", Date: "2025-10-01",
		Cambridge: map[int]float64{0: 1},
	})
	if len(p.Objectives) != 0 {
		t.Errorf("unknown assessment recorded %d objectives; want 0", len(p.Objectives))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}
	ev := Evidence{
		Base: "SD2", Column: "SD2", Family: "SD", Date: "2025-10-08",
		Cambridge: map[int]float64{0: 0.5},
	}

	eng.Apply(p, nil, ev)
	eng.Apply(p, nil, ev)

	op := p.Objectives["9Ni.03"]
	if op == nil {
		t.Fatal("objective 9Ni.03 not recorded")
	}
	if len(op.History) != 1 {
		t.Errorf("history length after re-apply = %d; want 1", len(op.History))
	}
}

func TestCurrentScoreFollowsLatestDate(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}

	// Later evidence arrives first; an older entry must not win.
	eng.UpdateObjective(p, "9Ni.03", fptr(1), "2025-11-01", "KD1 C3")
	eng.UpdateObjective(p, "9Ni.03", fptr(0.5), "2025-10-08", "SD2 C")

	op := p.Objectives["9Ni.03"]
	if len(op.History) != 2 {
		t.Fatalf("history length = %d; want 2", len(op.History))
	}
	if op.CurrentScore == nil || *op.CurrentScore != 1 {
		t.Errorf("current score = %v; want 1 (latest by date)", op.CurrentScore)
	}
	if op.LastUpdated != "2025-11-01" {
		t.Errorf("last updated = %q; want 2025-11-01 (latest by date)", op.LastUpdated)
	}
}

func TestLastUpdatedCarriesAssessmentDate(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}

	eng.UpdateObjective(p, "9Ni.01", fptr(0.5), "2023-01-15", "SD1 C1")

	if got := p.Objectives["9Ni.01"].LastUpdated; got != "2023-01-15" {
		t.Errorf("last updated = %q; want the assessment date 2023-01-15", got)
	}
}

func TestPracticeAttemptsFeedMissions(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}
	eng.UpdateObjective(p, "9Ni.03", fptr(0), "2025-10-08", "SD2 C")

	m, err := NewMission(p, DefaultMapping(), "Integers remediation", "remediation", []string{"9Ni.03"}, "")
	if err != nil {
		t.Fatalf("NewMission() error = %v", err)
	}
	missions := map[string]*Mission{m.ID: m}

	ev := Evidence{
		Base: "PD1", Column: "PD1 P_2025-10-15", Family: "PD", Date: "2025-10-15",
		Percentage: fptr(60),
	}
	eng.Apply(p, missions, ev)

	mo := m.Objectives["9Ni.03"]
	if len(mo.Attempts) != 1 {
		t.Fatalf("attempt count = %d; want 1", len(mo.Attempts))
	}
	if mo.Attempts[0].Score == nil || *mo.Attempts[0].Score != 0.6 {
		t.Errorf("attempt score = %v; want 0.6", mo.Attempts[0].Score)
	}
	if m.Status != MissionInProgress {
		t.Errorf("mission status = %q; want %q", m.Status, MissionInProgress)
	}
	if m.StartedDate != "2025-10-15" {
		t.Errorf("started date = %q; want 2025-10-15", m.StartedDate)
	}

	// Re-running the same import must not duplicate the attempt.
	eng.Apply(p, missions, ev)
	if len(mo.Attempts) != 1 {
		t.Errorf("attempt count after re-apply = %d; want 1", len(mo.Attempts))
	}
}

func TestMissionAutoCompletesWhenTargetsMet(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}
	eng.UpdateObjective(p, "9Ni.03", fptr(0), "2025-10-08", "SD2 C")

	m, err := NewMission(p, DefaultMapping(), "Integers remediation", "remediation", []string{"9Ni.03"}, "")
	if err != nil {
		t.Fatalf("NewMission() error = %v", err)
	}
	missions := map[string]*Mission{m.ID: m}

	eng.Apply(p, missions, Evidence{
		Base: "SD2", Column: "SD2", Family: "SD", Date: "2025-11-12",
		Cambridge: map[int]float64{0: 1},
	})

	if m.Status != MissionCompleted {
		t.Fatalf("mission status = %q; want %q", m.Status, MissionCompleted)
	}
	if m.CompletedDate != "2025-11-12" {
		t.Errorf("completed date = %q; want 2025-11-12", m.CompletedDate)
	}
	if m.MissingPointsCurrent != 0 {
		t.Errorf("missing points = %v; want 0", m.MissingPointsCurrent)
	}
}

func TestCompletedMissionIgnoresAttemptsUnlessReopenAllowed(t *testing.T) {
	setup := func(allowReopen bool) (*Engine, *Progress, *Mission, map[string]*Mission) {
		eng := newTestEngine(allowReopen)
		p := &Progress{}
		m, err := NewMission(p, DefaultMapping(), "Integers remediation", "remediation", []string{"9Ni.03"}, "")
		if err != nil {
			t.Fatalf("NewMission() error = %v", err)
		}
		if err := m.Complete(); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		return eng, p, m, map[string]*Mission{m.ID: m}
	}

	ev := Evidence{
		Base: "PD1", Column: "PD1 P_2025-12-01", Family: "PD", Date: "2025-12-01",
		Percentage: fptr(40),
	}

	t.Run("locked by default", func(t *testing.T) {
		eng, p, m, missions := setup(false)
		eng.Apply(p, missions, ev)
		if m.Status != MissionCompleted {
			t.Errorf("status = %q; want %q", m.Status, MissionCompleted)
		}
		if n := len(m.Objectives["9Ni.03"].Attempts); n != 0 {
			t.Errorf("attempt count = %d; want 0", n)
		}
	})

	t.Run("reopens on regression when allowed", func(t *testing.T) {
		eng, p, m, missions := setup(true)
		eng.Apply(p, missions, ev)
		if m.Status != MissionInProgress {
			t.Errorf("status = %q; want %q", m.Status, MissionInProgress)
		}
		if m.CompletedDate != "" {
			t.Errorf("completed date = %q; want cleared", m.CompletedDate)
		}
	})
}

func TestRecalculateSummary(t *testing.T) {
	eng := newTestEngine(false)
	p := &Progress{}
	eng.UpdateObjective(p, "9Ni.01", fptr(1), "2025-10-01", "SD1 C1")
	eng.UpdateObjective(p, "9Ni.02", fptr(0.5), "2025-10-01", "SD3 C")
	eng.UpdateObjective(p, "9Ni.03", fptr(0), "2025-10-08", "SD2 C")

	eng.RecalculateSummary(p)

	s := p.Summary
	if s == nil {
		t.Fatal("summary not set")
	}
	if s.Mastered != 1 || s.Partial != 1 || s.NotMastered != 1 {
		t.Errorf("counts = %d/%d/%d (mastered/partial/not); want 1/1/1", s.Mastered, s.Partial, s.NotMastered)
	}
	if s.NotAssessed != s.Total-3 {
		t.Errorf("not assessed = %d; want %d", s.NotAssessed, s.Total-3)
	}
	if s.LastFullUpdate != "2025-10-08" {
		t.Errorf("last full update = %q; want latest objective date 2025-10-08", s.LastFullUpdate)
	}
}
