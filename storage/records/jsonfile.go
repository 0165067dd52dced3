// Package records implements the student record repositories.
package records

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/student"
)

// FileRepository stores one JSON document per student under a directory.
// Files whose name starts with "_" (exports, backups) are not records and
// are never loaded or touched.
type FileRepository struct {
	dir           string
	schemaVersion string
	log           core.Logger
}

var _ student.Repository = (*FileRepository)(nil)

func NewFileRepository(dir, schemaVersion string, log core.Logger) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating record dir %s", dir)
	}
	return &FileRepository{dir: dir, schemaVersion: schemaVersion, log: log}, nil
}

// LoadAll reads every record file in the directory. A corrupt file or one
// carrying a different schema version is skipped with a warning; only the
// directory itself being unreadable aborts the run.
func (r *FileRepository) LoadAll() ([]*student.Record, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, core.NewShutdownError("reading record dir " + r.dir + ": " + err.Error())
	}

	var records []*student.Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(r.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("unreadable record file skipped", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}
		rec := &student.Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			r.log.Warn("corrupt record file skipped", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}
		if rec.Metadata.SchemaVersion != r.schemaVersion {
			r.log.Warn("record with mismatched schema version skipped", map[string]interface{}{
				"file": name, "version": rec.Metadata.SchemaVersion, "expected": r.schemaVersion,
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *FileRepository) Save(rec *student.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", rec.ID)
	}
	path := filepath.Join(r.dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.NewShutdownError("writing record file " + path + ": " + err.Error())
	}
	return nil
}

// WriteExport writes an auxiliary document (master export and the like)
// next to the records, under an underscore name so LoadAll ignores it.
func (r *FileRepository) WriteExport(name string, doc interface{}) (string, error) {
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "encoding export %s", name)
	}
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", core.NewShutdownError("writing export file " + path + ": " + err.Error())
	}
	return path, nil
}
