package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/attachehq/attache/internal/store/tables"
)

// Authorization request statuses.
const (
	AuthRequestPending  = "pending"
	AuthRequestApproved = "approved"
	AuthRequestError    = "error"
	AuthRequestExpired  = "expired"
)

// CreateAuthorizationRequest inserts a new pending request. Returns
// ErrAlreadyExists when the (provider, state) pair is already taken.
func (s *Store) CreateAuthorizationRequest(
	ctx context.Context,
	id string,
	provider string,
	state string,
	expiresAt time.Time,
) error {
	insert := sq.
		Insert("authorization_requests").
		Columns("id", "provider", "state", "status", "created_at", "expires_at").
		Values(id, provider, state, AuthRequestPending, time.Now().UTC(), expiresAt.UTC())
	_, err := s.insertStatement(ctx, insert)
	if isUniqueConstraintError(err) {
		return ErrAlreadyExists
	}
	return err
}

// AuthorizationRequestByState looks up a request by its anti-forgery
// state token.
func (s *Store) AuthorizationRequestByState(
	ctx context.Context,
	provider string,
	state string,
) (*tables.AuthorizationRequestTable, error) {
	q := authRequestSelect().Where(sq.Eq{"provider": provider, "state": state})
	return s.oneAuthRequest(ctx, q)
}

// AuthorizationRequestByID looks up a request by its caller-facing id.
func (s *Store) AuthorizationRequestByID(
	ctx context.Context,
	id string,
) (*tables.AuthorizationRequestTable, error) {
	q := authRequestSelect().Where(sq.Eq{"id": id})
	return s.oneAuthRequest(ctx, q)
}

// ResolveAuthorizationRequest moves a pending request into a terminal
// status. The pending guard makes the transition single-use: a second
// resolution attempt reports false and changes nothing.
func (s *Store) ResolveAuthorizationRequest(
	ctx context.Context,
	id string,
	status string,
	errorMessage string,
) (bool, error) {
	var msg interface{}
	if errorMessage != "" {
		msg = errorMessage
	}
	update := sq.
		Update("authorization_requests").
		Set("status", status).
		Set("error_message", msg).
		Where(sq.Eq{"id": id, "status": AuthRequestPending})
	res, err := s.updateStatement(ctx, update)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func authRequestSelect() sq.SelectBuilder {
	return sq.
		Select("id", "provider", "state", "status", "error_message", "created_at", "expires_at").
		From("authorization_requests")
}

func (s *Store) oneAuthRequest(
	ctx context.Context,
	q sq.SelectBuilder,
) (*tables.AuthorizationRequestTable, error) {
	var entity tables.AuthorizationRequestTable
	err := s.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}
