package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/views"
)

// optionalDate parses a YYYY-MM-DD argument; empty means the zero Date.
func optionalDate(s string) (caldate.Date, error) {
	if s == "" {
		return caldate.Date{}, nil
	}
	return caldate.Parse(s)
}

// --- Tool definitions ---

var toolGetWeekOverview = mcp.NewTool("get_week_overview",
	mcp.WithDescription("Planned and completed workouts of one Sunday-to-Saturday week, merged so a completed planned session appears once, bucketed per day, with duration/distance totals per discipline."),
	mcp.WithNumber("offset", mcp.Description("Weeks from the current week: 0 this week, -1 last week, 1 next week. Defaults to 0.")),
)

var toolGetCalendarMonth = mcp.NewTool("get_calendar_month",
	mcp.WithDescription("Month calendar: Sunday-first weeks of day cells with their workouts, a summary per week, and month statistics."),
	mcp.WithNumber("offset", mcp.Description("Months from the current month. Defaults to 0.")),
)

var toolGetDayDetail = mcp.NewTool("get_day_detail",
	mcp.WithDescription("One day's workouts split into completed and still-planned, with the day's totals."),
	mcp.WithString("date", mcp.Description("Day (YYYY-MM-DD). Defaults to today.")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("All-time statistics over completed workouts: total count, hours, kilometres, workouts per discipline and average workouts per week."),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Completed volume per week or month broken down by discipline, paired with planned minutes for the same periods."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 12 weeks or 6 months ago depending on bucket.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to the end of the current period.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to 'month'."), mcp.Enum("week", "month")),
)

var toolGetRaceCountdown = mcp.NewTool("get_race_countdown",
	mcp.WithDescription("Days and weeks until the athlete's primary race, with its distance and goal finish time."),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("The latest completed workouts, newest first, with duration, distance, heart rate, RPE and how the athlete felt."),
	mcp.WithNumber("limit", mcp.Description("How many workouts to return (1-50). Defaults to 5.")),
)

// --- Tool handlers ---

func (h *handlers) getWeekOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := h.ds.Week(ctx, UserIDFromContext(ctx), req.GetInt("offset", 0))
	if err != nil {
		h.log.Error("mcp get_week_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(view)
}

func (h *handlers) getCalendarMonth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := h.ds.Calendar(ctx, UserIDFromContext(ctx), req.GetInt("offset", 0))
	if err != nil {
		h.log.Error("mcp get_calendar_month", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(view)
}

func (h *handlers) getDayDetail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := optionalDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	view, err := h.ds.Day(ctx, UserIDFromContext(ctx), d)
	if err != nil {
		h.log.Error("mcp get_day_detail", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(view)
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.Stats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := optionalDate(req.GetString("start", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
	}
	end, err := optionalDate(req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return mcp.NewToolResultError("end must not be before start"), nil
	}

	bucket := req.GetString("bucket", "month")
	summary, err := h.ds.Summary(ctx, UserIDFromContext(ctx), bucket, caldate.Range{Start: start, End: end})
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func (h *handlers) getRaceCountdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cd, err := h.ds.Countdown(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_race_countdown", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if cd == nil {
		return mcp.NewToolResultText("No primary race is set."), nil
	}
	return jsonResult(cd)
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", views.RecentLimit)
	if limit < 1 || limit > 50 {
		return mcp.NewToolResultError("limit must be between 1 and 50"), nil
	}
	recent, err := h.ds.Recent(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(recent)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
