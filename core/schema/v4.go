package schema

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core/student"
)

// v4 shares the v5 field names but predates missions and the objective
// summary. Those are derived or created later, so downgrading drops them
// and upgrading recomputes them.
type v4Adapter struct{}

func (v4Adapter) Version() string { return V4 }

func (v4Adapter) Decode(data []byte) (*student.Record, error) {
	rec := &student.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "decoding v4 record")
	}
	rec.Missions = nil
	if rec.Curriculum != nil {
		rec.Curriculum.Summary = nil
	}
	return rec, nil
}

func (v4Adapter) Encode(rec *student.Record) ([]byte, error) {
	out := *rec
	out.Missions = nil
	if rec.Curriculum != nil {
		trimmed := *rec.Curriculum
		trimmed.Summary = nil
		out.Curriculum = &trimmed
	}
	out.Metadata.SchemaVersion = V4
	return json.MarshalIndent(&out, "", "  ")
}
