package mcp

import (
	"log/slog"

	"github.com/claude/runnasync/internal/runna"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Defaults carries the configured fallbacks tools use when a call
// omits the corresponding parameter.
type Defaults struct {
	ICSURL        string
	Units         runna.DistanceUnit
	EasyPaceSecMi int
}

// New creates an MCP server with all tools and resources registered.
// remote and journal may be nil when intervals.icu credentials or a
// state directory are not configured; the affected tools say so
// instead of failing.
func New(planner Planner, remote RemoteCalendar, journal JournalReader, defaults Defaults, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RunnaSync", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Runna training calendar bridge for intervals.icu. Preview workout description conversions, inspect the upcoming schedule from the calendar feed, list planned events already on intervals.icu, and check sync state. Nothing here uploads; use the runnasync CLI to sync."),
	)

	h := &handlers{planner: planner, remote: remote, journal: journal, defaults: defaults, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolPreviewWorkout, Handler: h.previewWorkout},
		server.ServerTool{Tool: toolGetUpcomingWorkouts, Handler: h.getUpcomingWorkouts},
		server.ServerTool{Tool: toolListPlannedEvents, Handler: h.listPlannedEvents},
		server.ServerTool{Tool: toolGetSyncStatus, Handler: h.getSyncStatus},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSchedule, Handler: h.schedule},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	planner  Planner
	remote   RemoteCalendar
	journal  JournalReader
	defaults Defaults
	log      *slog.Logger
}

// --- Resource definitions ---

var resSchedule = mcp.NewResource(
	"runnasync://schedule",
	"Upcoming Schedule",
	mcp.WithResourceDescription("Workouts from the Runna calendar feed for the next 7 days, converted to intervals.icu form"),
	mcp.WithMIMEType("application/json"),
)
