package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/attachehq/attache/internal/store/tables"
)

// SaveConnection persists the credential for a provider. A second save
// for the same provider overwrites the prior row, never duplicates it.
func (s *Store) SaveConnection(
	ctx context.Context,
	provider string,
	credential string,
	scopes []string,
	expiry *time.Time,
) error {
	var exp interface{}
	if expiry != nil {
		exp = expiry.UTC()
	}
	insert := sq.
		Insert("connections").
		Columns("provider", "credential", "scopes", "expiry", "updated_at").
		Values(provider, credential, strings.Join(scopes, ","), exp, time.Now().UTC()).
		Suffix(`ON CONFLICT(provider) DO UPDATE SET
			credential = excluded.credential,
			scopes = excluded.scopes,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`)
	_, err := s.insertStatement(ctx, insert)
	return err
}

// ConnectionByProvider returns the live connection for a provider,
// or ErrNotFound if the provider was never authorized.
func (s *Store) ConnectionByProvider(
	ctx context.Context,
	provider string,
) (*tables.ConnectionTable, error) {
	q := sq.
		Select("id", "provider", "credential", "scopes", "expiry", "updated_at").
		From("connections").
		Where(sq.Eq{"provider": provider})
	var entity tables.ConnectionTable
	err := s.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Connections lists all stored connections, newest-first.
func (s *Store) Connections(ctx context.Context) ([]*tables.ConnectionTable, error) {
	q := sq.
		Select("id", "provider", "credential", "scopes", "expiry", "updated_at").
		From("connections").
		OrderBy("id DESC")
	var entities []*tables.ConnectionTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}
