package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store/tables"
)

// RunGated executes a mutating action under the approval gate.
//
// The contract every mutating tool follows: ask the gate first; on
// refusal surface status and approval id with no side effect; on
// approval run the action and append the audit record. A failed audit
// write fails the whole call, because an action whose record was lost
// did not observably complete.
func RunGated(
	ctx context.Context,
	sc *server.ServerContext,
	action string,
	payload tables.MapStructure,
	approvalID *int64,
	run func() (interface{}, error),
) (*mcp.CallToolResult, error) {
	decision, err := sc.Gate().EnsureApproval(ctx, action, payload, approvalID)
	if err != nil {
		return ResultError("approval gate unavailable: %v", err)
	}
	if m := sc.Metrics(); m != nil {
		m.RecordApprovalOutcome(decision.Status)
	}
	if !decision.OK {
		return ResultGateRefusal(decision)
	}

	result, err := run()
	if err != nil {
		return ResultError("%s failed: %v", action, err)
	}

	if err := sc.Recorder().Record(ctx, action, payload, AsMap(result)); err != nil {
		return ResultError("%s executed but audit record failed: %v", action, err)
	}
	return ResultOK(result)
}
