package student

import "github.com/mkuprys/gradefold/core"

// Upsert inserts the assessment or merges it into the existing entry with
// the same (date, column) key. It reports true when a new entry was
// appended. Merging only stamps Updated when a field actually changed, so
// re-running the same import leaves the record untouched.
func (r *Record) Upsert(a *Assessment) bool {
	for _, existing := range r.Assessments {
		if existing.Date == a.Date && existing.Column == a.Column {
			if mergeAssessment(existing, a) {
				existing.Updated = core.Today()
			}
			return false
		}
	}
	if a.Added == "" {
		a.Added = core.Today()
	}
	r.Assessments = append(r.Assessments, a)
	return true
}

// Find returns the assessment with the given key, or nil.
func (r *Record) Find(date, column string) *Assessment {
	for _, a := range r.Assessments {
		if a.Date == date && a.Column == column {
			return a
		}
	}
	return nil
}

func mergeAssessment(dst, src *Assessment) bool {
	changed := false
	if src.Score != "" && src.Score != dst.Score {
		dst.Score = src.Score
		changed = true
	}
	if src.Type != "" && src.Type != dst.Type {
		dst.Type = src.Type
		changed = true
	}
	if src.TaskName != "" && src.TaskName != dst.TaskName {
		dst.TaskName = src.TaskName
		changed = true
	}
	if src.Comment != "" && src.Comment != dst.Comment {
		dst.Comment = src.Comment
		changed = true
	}
	if src.Context != "" && src.Context != dst.Context {
		dst.Context = src.Context
		changed = true
	}
	if !src.Details.Empty() {
		if dst.Details == nil {
			dst.Details = &EvaluationDetails{}
		}
		if dst.Details.Merge(src.Details) {
			changed = true
		}
	}
	return changed
}
