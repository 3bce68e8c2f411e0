// Package approval implements the single-step human approval gate in
// front of every mutating tool action.
package approval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/attachehq/attache/internal/logging"
	"github.com/attachehq/attache/internal/store"
	"github.com/attachehq/attache/internal/store/tables"
)

// Statuses surfaced to callers by EnsureApproval.
const (
	StatusRequired = "approval_required"
	StatusNotFound = "approval_not_found"
	StatusApproved = "approved"
)

// ErrInvalidDecision is returned by Resolve for decisions other than
// approved or denied.
var ErrInvalidDecision = errors.New("decision must be approved or denied")

// ErrNotFound is returned by Resolve for unknown approval ids.
var ErrNotFound = store.ErrNotFound

// Decision is the structured outcome of an EnsureApproval call. A
// refusal is not an error; callers branch on OK and surface Status and
// ApprovalID unchanged.
type Decision struct {
	OK         bool   `json:"ok"`
	Status     string `json:"status"`
	ApprovalID int64  `json:"approval_id"`
}

// Gate decides whether gated actions may execute. It keeps no state
// between calls; every decision is read fresh from the store, so a
// single Gate serves all concurrent callers.
type Gate struct {
	log   *slog.Logger
	store *store.Store
}

// NewGate creates a Gate over the given store.
func NewGate(logger *slog.Logger, s *store.Store) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{log: logger, store: s}
}

// EnsureApproval is the gate's single decision point.
//
// Without an approval id it records a new pending approval for the
// action and payload and tells the caller to come back with the id.
// With an id it reports the approval's current standing. Two calls
// without ids always create two distinct approvals: payloads are not
// deduplicated, because equal payloads can belong to semantically
// different requests.
func (g *Gate) EnsureApproval(
	ctx context.Context,
	action string,
	payload tables.MapStructure,
	approvalID *int64,
) (Decision, error) {
	if approvalID == nil {
		id, err := g.store.CreateApproval(ctx, action, payload)
		if err != nil {
			return Decision{}, err
		}
		g.log.Info("approval requested", logging.Action(action), "approval_id", id)
		return Decision{OK: false, Status: StatusRequired, ApprovalID: id}, nil
	}

	rec, err := g.store.ApprovalByID(ctx, *approvalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Decision{OK: false, Status: StatusNotFound, ApprovalID: *approvalID}, nil
		}
		return Decision{}, err
	}
	if rec.Status != store.ApprovalApproved {
		return Decision{OK: false, Status: "approval_" + rec.Status, ApprovalID: *approvalID}, nil
	}
	return Decision{OK: true, Status: StatusApproved, ApprovalID: *approvalID}, nil
}

// Resolve records a human decision for an approval. Re-resolving
// overwrites status and resolution time, but never the payload the
// decision was made against.
func (g *Gate) Resolve(ctx context.Context, id int64, decision string) (*tables.ApprovalTable, error) {
	if decision != store.ApprovalApproved && decision != store.ApprovalDenied {
		return nil, ErrInvalidDecision
	}
	rec, err := g.store.ResolveApproval(ctx, id, decision)
	if err != nil {
		return nil, err
	}
	g.log.Info("approval resolved", "approval_id", id, logging.Status(decision))
	return rec, nil
}

// Recent lists approvals newest-first for inspection surfaces.
func (g *Gate) Recent(ctx context.Context, limit uint64) ([]*tables.ApprovalTable, error) {
	return g.store.RecentApprovals(ctx, limit)
}
