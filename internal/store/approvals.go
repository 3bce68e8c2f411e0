package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/attachehq/attache/internal/store/tables"
)

// Approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalDenied   = "denied"
)

// CreateApproval inserts a new pending approval and returns its id.
// The payload is the immutable record of what was asked for.
func (s *Store) CreateApproval(
	ctx context.Context,
	action string,
	payload tables.MapStructure,
) (int64, error) {
	insert := sq.
		Insert("approvals").
		Columns("action", "payload", "status", "created_at").
		Values(action, payload, ApprovalPending, time.Now().UTC())
	res, err := s.insertStatement(ctx, insert)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ApprovalByID returns the approval, or ErrNotFound.
func (s *Store) ApprovalByID(ctx context.Context, id int64) (*tables.ApprovalTable, error) {
	q := approvalSelect().Where(sq.Eq{"id": id})
	var entity tables.ApprovalTable
	err := s.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// ResolveApproval records the decision for an approval and returns the
// updated row. Only status and resolution timestamp change; the payload
// stays what it was at creation. Returns ErrNotFound for unknown ids.
func (s *Store) ResolveApproval(
	ctx context.Context,
	id int64,
	decision string,
) (*tables.ApprovalTable, error) {
	update := sq.
		Update("approvals").
		Set("status", decision).
		Set("resolved_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})
	res, err := s.updateStatement(ctx, update)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.ApprovalByID(ctx, id)
}

// RecentApprovals lists approvals newest-first.
func (s *Store) RecentApprovals(ctx context.Context, limit uint64) ([]*tables.ApprovalTable, error) {
	if limit == 0 {
		limit = 50
	}
	q := approvalSelect().OrderBy("id DESC").Limit(limit)
	var entities []*tables.ApprovalTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}

func approvalSelect() sq.SelectBuilder {
	return sq.
		Select("id", "action", "payload", "status", "created_at", "resolved_at").
		From("approvals")
}
