package protocol

import "github.com/renato0307/duet/internal/domain"

var toolStatuses = map[string]domain.ToolStatus{
	"pending":     domain.ToolPending,
	"in_progress": domain.ToolRunning,
	"in-progress": domain.ToolRunning,
	"completed":   domain.ToolCompleted,
	"failed":      domain.ToolError,
}

// MapToolStatus normalizes a wire tool status. Unknown values map to pending,
// agents are not trusted to emit a closed set.
func MapToolStatus(status string) domain.ToolStatus {
	if s, ok := toolStatuses[status]; ok {
		return s
	}
	return domain.ToolPending
}
