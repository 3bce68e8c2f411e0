package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/attachehq/attache/internal/store/tables"
)

// AddNote stores one assistant memory entry and returns the persisted
// row.
func (s *Store) AddNote(ctx context.Context, source, summary string) (*tables.AssistantNoteTable, error) {
	insert := sq.
		Insert("assistant_notes").
		Columns("source", "summary", "created_at").
		Values(source, summary, time.Now().UTC())
	res, err := s.insertStatement(ctx, insert)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.noteByID(ctx, id)
}

// RecentNotes lists assistant notes newest-first.
func (s *Store) RecentNotes(ctx context.Context, limit uint64) ([]*tables.AssistantNoteTable, error) {
	if limit == 0 {
		limit = 50
	}
	q := sq.
		Select("id", "source", "summary", "created_at").
		From("assistant_notes").
		OrderBy("id DESC").
		Limit(limit)
	var entities []*tables.AssistantNoteTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *Store) noteByID(ctx context.Context, id int64) (*tables.AssistantNoteTable, error) {
	q := sq.
		Select("id", "source", "summary", "created_at").
		From("assistant_notes").
		Where(sq.Eq{"id": id})
	var entity tables.AssistantNoteTable
	if err := s.getStatement(ctx, &entity, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// SaveContactRecord stores the local mirror of a contact. Records are
// keyed by email; saving a known email updates name, company, and
// metadata instead of inserting a duplicate.
func (s *Store) SaveContactRecord(
	ctx context.Context,
	name string,
	email string,
	company string,
	metadata tables.MapStructure,
) (*tables.ContactRecordTable, error) {
	insert := sq.
		Insert("contacts").
		Columns("name", "email", "company", "metadata", "created_at").
		Values(name, email, company, metadata, time.Now().UTC()).
		Suffix(`ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			company = excluded.company,
			metadata = excluded.metadata`)
	if _, err := s.insertStatement(ctx, insert); err != nil {
		return nil, err
	}
	return s.ContactRecordByEmail(ctx, email)
}

// ContactRecordByEmail returns the local contact record for an email
// address, or ErrNotFound.
func (s *Store) ContactRecordByEmail(ctx context.Context, email string) (*tables.ContactRecordTable, error) {
	q := contactRecordSelect().Where(sq.Eq{"email": email})
	var entity tables.ContactRecordTable
	if err := s.getStatement(ctx, &entity, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// ContactRecords lists the local contact mirror newest-first.
func (s *Store) ContactRecords(ctx context.Context) ([]*tables.ContactRecordTable, error) {
	q := contactRecordSelect().OrderBy("id DESC")
	var entities []*tables.ContactRecordTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}

// SaveCompany stores one company record.
func (s *Store) SaveCompany(
	ctx context.Context,
	name string,
	domain string,
	metadata tables.MapStructure,
) (int64, error) {
	insert := sq.
		Insert("companies").
		Columns("name", "domain", "metadata", "created_at").
		Values(name, domain, metadata, time.Now().UTC())
	res, err := s.insertStatement(ctx, insert)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Companies lists company records newest-first.
func (s *Store) Companies(ctx context.Context) ([]*tables.CompanyTable, error) {
	q := sq.
		Select("id", "name", "domain", "metadata", "created_at").
		From("companies").
		OrderBy("id DESC")
	var entities []*tables.CompanyTable
	if err := s.selectStatement(ctx, &entities, q); err != nil {
		return nil, err
	}
	return entities, nil
}

func contactRecordSelect() sq.SelectBuilder {
	return sq.
		Select("id", "name", "email", "company", "metadata", "created_at").
		From("contacts")
}
