package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/attachehq/attache/internal/approval"
)

// toolResponse is the JSON envelope every tool returns, so the agent
// can branch on ok/status without parsing prose.
type toolResponse struct {
	OK         bool        `json:"ok"`
	Data       interface{} `json:"data,omitempty"`
	Status     string      `json:"status,omitempty"`
	ApprovalID *int64      `json:"approval_id,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ResultOK wraps data in a successful tool response.
func ResultOK(data interface{}) (*mcp.CallToolResult, error) {
	return marshalResponse(toolResponse{OK: true, Data: data})
}

// ResultGateRefusal surfaces an approval gate refusal unchanged: the
// status and approval id pass through so the caller can wait,
// re-request, or abandon.
func ResultGateRefusal(d approval.Decision) (*mcp.CallToolResult, error) {
	return marshalResponse(toolResponse{
		OK:         false,
		Status:     d.Status,
		ApprovalID: &d.ApprovalID,
		Error:      "approval_required",
	})
}

// ResultError reports a failed tool call.
func ResultError(format string, a ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, a...)), nil
}

func marshalResponse(r toolResponse) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
