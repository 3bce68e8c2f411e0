package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/attachehq/attache/internal/store/tables"
)

// AppendAuditLog adds one audit log entry. Entries are never updated
// or deleted.
func (s *Store) AppendAuditLog(
	ctx context.Context,
	action string,
	payload tables.MapStructure,
	result tables.MapStructure,
) error {
	insert := sq.
		Insert("audit_log").
		Columns("action", "payload", "result", "created_at").
		Values(action, payload, result, time.Now().UTC())
	_, err := s.insertStatement(ctx, insert)
	return err
}

// RecentAuditLog lists audit entries newest-first.
func (s *Store) RecentAuditLog(ctx context.Context, limit uint64) ([]*tables.AuditLogTable, error) {
	if limit == 0 {
		limit = 50
	}
	q := sq.
		Select("id", "action", "payload", "result", "created_at").
		From("audit_log").
		OrderBy("id DESC").
		Limit(limit)
	var entities []*tables.AuditLogTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}
