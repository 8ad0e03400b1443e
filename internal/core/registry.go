package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// EntityDefinition describes how one entity is imported from and exported to CSV.
type EntityDefinition struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Mapping []ColumnMapping `json:"mapping,omitempty"` // empty: not importable
	Columns []ExportColumn  `json:"columns"`

	parse  func(raw string) importBatch
	export func(ctx context.Context, s *Service) ([]ExportRecord, error)
}

// Importable reports whether the entity accepts CSV imports.
func (d EntityDefinition) Importable() bool {
	return d.parse != nil
}

// importBatch is a parsed file with one pending create per valid record.
type importBatch struct {
	rows         int
	errors       []string
	headerFailed bool
	lines        []int
	creates      []func(ctx context.Context, s *Service) error
}

// importer adapts a typed transform and create function to an importBatch.
func importer[T any](mapping []ColumnMapping, transform RowTransform[T], create func(context.Context, *Service, T) error) func(string) importBatch {
	return func(raw string) importBatch {
		res := ParseCSV(raw, mapping, transform)
		batch := importBatch{
			errors:       res.Errors,
			headerFailed: res.HeaderFailed,
			lines:        res.Lines,
		}
		if res.HeaderFailed {
			return batch
		}
		batch.rows = res.Rows()
		batch.creates = make([]func(context.Context, *Service) error, len(res.Records))
		for i, rec := range res.Records {
			rec := rec
			batch.creates[i] = func(ctx context.Context, s *Service) error {
				return create(ctx, s, rec)
			}
		}
		return batch
	}
}

var (
	registry   = make(map[string]EntityDefinition)
	registryMu sync.RWMutex
)

// RegisterEntity adds an entity definition.
// Panics if the key is already registered.
func RegisterEntity(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Key))
	}
	if len(def.Columns) == 0 && len(def.Mapping) > 0 {
		def.Columns = ColumnsFromMapping(def.Mapping)
	}
	registry[def.Key] = def
}

// GetEntity returns the definition for key.
func GetEntity(key string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Entities returns all definitions sorted by key.
func Entities() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}
