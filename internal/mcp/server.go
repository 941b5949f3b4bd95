// Package mcp exposes the training views as Model Context Protocol tools
// and resources, over streamable HTTP inside the API server or over stdio
// against a remote API.
package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
// It is uuid.Nil in remote mode, where the API resolves the user from the
// client's credentials.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TriTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TriTrack triathlon training log. Read planned and completed swim/bike/run workouts, weekly and monthly volume, and the countdown to the athlete's primary race. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWeekOverview, Handler: h.getWeekOverview},
		server.ServerTool{Tool: toolGetCalendarMonth, Handler: h.getCalendarMonth},
		server.ServerTool{Tool: toolGetDayDetail, Handler: h.getDayDetail},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetRaceCountdown, Handler: h.getRaceCountdown},
		server.ServerTool{Tool: toolGetRecentWorkouts, Handler: h.getRecentWorkouts},
	)

	s.AddResources(
		server.ServerResource{Resource: resDashboard, Handler: h.dashboard},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. userFrom resolves the
// caller of each request, typically from the API's identity middleware.
func NewHTTPHandler(s *server.MCPServer, userFrom func(context.Context) (uuid.UUID, bool)) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if id, ok := userFrom(r.Context()); ok {
				return WithUserID(ctx, id)
			}
			return ctx
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resDashboard = mcp.NewResource(
	"tritrack://dashboard",
	"Dashboard",
	mcp.WithResourceDescription("Today's quick stats, this week's discipline split, recent workouts and the race countdown"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"tritrack://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The latest completed workouts, newest first"),
	mcp.WithMIMEType("application/json"),
)
