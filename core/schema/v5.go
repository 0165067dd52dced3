package schema

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core/student"
)

// v5 is the current shape; decode and encode are straight JSON.
type v5Adapter struct{}

func (v5Adapter) Version() string { return V5 }

func (v5Adapter) Decode(data []byte) (*student.Record, error) {
	rec := &student.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "decoding v5 record")
	}
	return rec, nil
}

func (v5Adapter) Encode(rec *student.Record) ([]byte, error) {
	rec.Metadata.SchemaVersion = V5
	return json.MarshalIndent(rec, "", "  ")
}
