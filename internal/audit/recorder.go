// Package audit appends the immutable record of every executed gated
// action. An action whose audit entry cannot be written did not
// complete; callers must propagate the write failure.
package audit

import (
	"context"
	"log/slog"

	"github.com/attachehq/attache/internal/logging"
	"github.com/attachehq/attache/internal/store"
	"github.com/attachehq/attache/internal/store/tables"
)

// Recorder writes audit entries through the store.
type Recorder struct {
	log   *slog.Logger
	store *store.Store
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(logger *slog.Logger, s *store.Store) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{log: logger, store: s}
}

// Record appends one entry for an executed action and its result.
func (r *Recorder) Record(
	ctx context.Context,
	action string,
	payload tables.MapStructure,
	result tables.MapStructure,
) error {
	if err := r.store.AppendAuditLog(ctx, action, payload, result); err != nil {
		r.log.Error("audit write failed", logging.Action(action), logging.Err(err))
		return err
	}
	r.log.Info("action recorded", logging.Action(action))
	return nil
}

// Recent lists audit entries newest-first for inspection surfaces.
func (r *Recorder) Recent(ctx context.Context, limit uint64) ([]*tables.AuditLogTable, error) {
	return r.store.RecentAuditLog(ctx, limit)
}
