package tables

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MapStructure is a JSON object column. It keeps structured payloads
// queryable as a single TEXT column while staying a plain map in Go.
type MapStructure map[string]interface{}

// Value implements driver.Valuer
func (m MapStructure) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *MapStructure) Scan(src interface{}) error {
	if src == nil {
		*m = MapStructure{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for MapStructure")
	}
}

// ConnectionTable represents the connections table.
// At most one row exists per provider; saves are upserts.
type ConnectionTable struct {
	ID         int          `db:"id"`
	Provider   string       `db:"provider"`
	Credential string       `db:"credential"`
	Scopes     string       `db:"scopes"`
	Expiry     sql.NullTime `db:"expiry"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

// AuthorizationRequestTable represents the authorization_requests table.
// The state token is unique per provider among live requests; a row
// transitions out of pending exactly once.
type AuthorizationRequestTable struct {
	ID           string         `db:"id"`
	Provider     string         `db:"provider"`
	State        string         `db:"state"`
	Status       string         `db:"status"`
	ErrorMessage sql.NullString `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
}

// ApprovalTable represents the approvals table.
type ApprovalTable struct {
	ID         int64        `db:"id"`
	Action     string       `db:"action"`
	Payload    MapStructure `db:"payload"`
	Status     string       `db:"status"`
	CreatedAt  time.Time    `db:"created_at"`
	ResolvedAt sql.NullTime `db:"resolved_at"`
}

// AuditLogTable represents the append-only audit_log table.
type AuditLogTable struct {
	ID        int64        `db:"id"`
	Action    string       `db:"action"`
	Payload   MapStructure `db:"payload"`
	Result    MapStructure `db:"result"`
	CreatedAt time.Time    `db:"created_at"`
}

// CompanyTable represents the companies table, the assistant's local
// record of organizations it has been told about.
type CompanyTable struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	Domain    string       `db:"domain"`
	Metadata  MapStructure `db:"metadata"`
	CreatedAt time.Time    `db:"created_at"`
}

// ContactRecordTable represents the contacts table, the assistant's
// local mirror of people it works with. Rows are keyed by email;
// saving an existing email updates the row.
type ContactRecordTable struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	Email     string       `db:"email"`
	Company   string       `db:"company"`
	Metadata  MapStructure `db:"metadata"`
	CreatedAt time.Time    `db:"created_at"`
}

// AssistantNoteTable represents the assistant_notes table, the
// assistant's memory of summaries it has produced.
type AssistantNoteTable struct {
	ID        int64     `db:"id"`
	Source    string    `db:"source"`
	Summary   string    `db:"summary"`
	CreatedAt time.Time `db:"created_at"`
}
