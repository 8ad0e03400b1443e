package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/stockpos/internal/logging"
)

// maxHeaderErrors caps the header problems reported for a rejected file.
const maxHeaderErrors = 3

// Import parses a CSV file for the given entity and creates one record per
// valid row, in file order. Row and create failures are tallied in the
// result and never stop later rows. A rejected header creates nothing.
//
// The returned error is reserved for failures outside the file itself: an
// unknown entity, no free import slot, or a cancelled request.
func (s *Service) Import(ctx context.Context, entity, fileName string, data []byte) (*ImportResult, error) {
	def, ok := GetEntity(entity)
	if !ok || !def.Importable() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "entity", entity, "file", fileName)
	start := time.Now()
	result := &ImportResult{Entity: entity, FileName: fileName}

	batch := def.parse(string(data))
	if batch.headerFailed {
		errs := batch.errors
		if len(errs) > maxHeaderErrors {
			errs = errs[:maxHeaderErrors]
		}
		result.HeaderErrors = errs
		result.Duration = time.Since(start)
		log.Warn("import rejected", "errors", len(batch.errors))
		return result, nil
	}

	result.TotalRows = batch.rows
	result.RowErrors = batch.errors

	for i, create := range batch.creates {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Sprintf("import stopped after %d of %d records: %v", i, len(batch.creates), err)
			log.Warn("import interrupted", "processed", i, "error", err)
			break
		}
		if err := create(ctx, s); err != nil {
			result.CreateErrors = append(result.CreateErrors,
				fmt.Sprintf("Error on row %d: %s", batch.lines[i], describeError(err)))
			log.Debug("import record failed", "line", batch.lines[i], "error", err)
			continue
		}
		result.Imported++
	}

	result.Failed = len(result.RowErrors) + len(result.CreateErrors)
	result.Duration = time.Since(start)
	s.recorder.ImportFinished(entity, result.Imported, result.Failed)

	log.Info("import finished",
		"rows", result.TotalRows,
		"imported", result.Imported,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Export writes every record of an entity as CSV.
func (s *Service) Export(ctx context.Context, entity string, w io.Writer) error {
	def, ok := GetEntity(entity)
	if !ok || def.export == nil {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	records, err := def.export(ctx, s)
	if err != nil {
		return fmt.Errorf("export %s: %w", entity, err)
	}
	return ExportCSV(w, def.Columns, records)
}

// Template writes the header-only import file for an entity.
func (s *Service) Template(entity string, w io.Writer) error {
	def, ok := GetEntity(entity)
	if !ok || !def.Importable() {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	return TemplateCSV(w, def.Mapping)
}
