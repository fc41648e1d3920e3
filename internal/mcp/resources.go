package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/runnasync/internal/syncer"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) schedule(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.defaults.ICSURL == "" {
		return nil, errors.New("no calendar feed configured")
	}

	start, end, err := defaultDateRange("", "")
	if err != nil {
		return nil, err
	}

	plan, err := h.planner.Plan(syncer.Options{
		ICSURL:        h.defaults.ICSURL,
		StartDate:     start,
		EndDate:       end,
		Units:         h.defaults.Units,
		EasyPaceSecMi: h.defaults.EasyPaceSecMi,
	})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(planPayload(plan))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
