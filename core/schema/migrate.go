package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mkuprys/gradefold/core"
	"github.com/mkuprys/gradefold/core/curriculum"
)

// Migrator rewrites a whole record collection from one schema version to
// another. Derived fields (engagement, objective summary) are recomputed
// on the way out rather than copied, so a migration never carries stale
// aggregates forward.
type Migrator struct {
	engine *curriculum.Engine
	log    core.Logger
}

func NewMigrator(log core.Logger) *Migrator {
	return &Migrator{
		engine: curriculum.NewEngine(nil, log, false),
		log:    log,
	}
}

type MigrateStats struct {
	Migrated int
	Skipped  int
}

// Migrate converts every record file under dir from version `from` to
// version `to`, in place. Files at other versions, corrupt files and
// underscore-prefixed exports are skipped with a warning.
func (m *Migrator) Migrate(dir, from, to string) (*MigrateStats, error) {
	src, ok := ForVersion(from)
	if !ok {
		return nil, errors.Errorf("unsupported source schema version %q", from)
	}
	dst, ok := ForVersion(to)
	if !ok {
		return nil, errors.Errorf("unsupported target schema version %q", to)
	}
	if from == to {
		return nil, errors.Errorf("source and target schema versions are both %q", from)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, core.NewShutdownError("reading record dir " + dir + ": " + err.Error())
	}

	stats := &MigrateStats{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(dir, name)
		if m.migrateFile(path, src, dst) {
			stats.Migrated++
		} else {
			stats.Skipped++
		}
	}

	m.log.Info("migration finished", map[string]interface{}{
		"dir": dir, "from": from, "to": to,
		"migrated": stats.Migrated, "skipped": stats.Skipped,
	})
	return stats, nil
}

func (m *Migrator) migrateFile(path string, src, dst Adapter) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		m.log.Warn("unreadable record file skipped", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return false
	}

	var probe struct {
		Metadata struct {
			SchemaVersion string `json:"schema_version"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		m.log.Warn("corrupt record file skipped", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return false
	}
	if probe.Metadata.SchemaVersion != src.Version() {
		m.log.Warn("record with mismatched schema version skipped", map[string]interface{}{
			"file": path, "version": probe.Metadata.SchemaVersion, "expected": src.Version(),
		})
		return false
	}

	rec, err := src.Decode(data)
	if err != nil {
		m.log.Warn("undecodable record skipped", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return false
	}

	rec.RecomputeEngagement()
	m.engine.RecalculateSummary(rec.Progress())

	out, err := dst.Encode(rec)
	if err != nil {
		m.log.Warn("unencodable record skipped", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return false
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		m.log.Error("writing migrated record failed", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return false
	}
	return true
}
