package records

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core/student"
)

// InMemRepository keeps records as serialized snapshots. Load and save go
// through JSON so callers see the same copy semantics as the file backend.
// It backs tests and dry runs.
type InMemRepository struct {
	docs map[string][]byte
}

var _ student.Repository = (*InMemRepository)(nil)

func NewInMemRepository() *InMemRepository {
	return &InMemRepository{docs: make(map[string][]byte)}
}

func (r *InMemRepository) LoadAll() ([]*student.Record, error) {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]*student.Record, 0, len(ids))
	for _, id := range ids {
		rec := &student.Record{}
		if err := json.Unmarshal(r.docs[id], rec); err != nil {
			return nil, errors.Wrapf(err, "decoding record %s", id)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *InMemRepository) Save(rec *student.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", rec.ID)
	}
	r.docs[rec.ID] = data
	return nil
}

// Len reports how many records are stored.
func (r *InMemRepository) Len() int { return len(r.docs) }
