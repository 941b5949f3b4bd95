package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/training"
	"github.com/tritrack/tritrack/internal/views"
)

// HTTPClient implements DataSource by calling the TriTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the server. The user is whoever the token belongs to, so
// the userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. A
// non-empty token is sent as a bearer credential.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func offsetParams(offset int) url.Values {
	v := url.Values{}
	v.Set("offset", strconv.Itoa(offset))
	return v
}

func (c *HTTPClient) Week(ctx context.Context, _ uuid.UUID, offset int) (views.WeekView, error) {
	var view views.WeekView
	err := c.get(ctx, "/api/v1/views/week", offsetParams(offset), &view)
	return view, err
}

func (c *HTTPClient) Calendar(ctx context.Context, _ uuid.UUID, offset int) (views.CalendarView, error) {
	var view views.CalendarView
	err := c.get(ctx, "/api/v1/views/calendar", offsetParams(offset), &view)
	return view, err
}

func (c *HTTPClient) Day(ctx context.Context, _ uuid.UUID, d caldate.Date) (views.DayView, error) {
	params := url.Values{}
	if !d.IsZero() {
		params.Set("date", d.String())
	}
	var view views.DayView
	err := c.get(ctx, "/api/v1/views/day", params, &view)
	return view, err
}

func (c *HTTPClient) Dashboard(ctx context.Context, _ uuid.UUID) (views.DashboardView, error) {
	var view views.DashboardView
	err := c.get(ctx, "/api/v1/views/dashboard", nil, &view)
	return view, err
}

func (c *HTTPClient) Stats(ctx context.Context, _ uuid.UUID) (training.Stats, error) {
	var stats training.Stats
	err := c.get(ctx, "/api/v1/views/stats", nil, &stats)
	return stats, err
}

func (c *HTTPClient) Summary(ctx context.Context, _ uuid.UUID, bucket string, r caldate.Range) (views.SummaryView, error) {
	params := url.Values{}
	params.Set("bucket", bucket)
	if !r.Start.IsZero() {
		params.Set("start", r.Start.String())
	}
	if !r.End.IsZero() {
		params.Set("end", r.End.String())
	}
	var view views.SummaryView
	err := c.get(ctx, "/api/v1/views/summary", params, &view)
	return view, err
}

// Countdown reads the countdown off the dashboard so it is computed against
// the server's calendar day rather than the local one.
func (c *HTTPClient) Countdown(ctx context.Context, userID uuid.UUID) (*training.RaceCountdown, error) {
	view, err := c.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view.Countdown, nil
}

func (c *HTTPClient) Recent(ctx context.Context, _ uuid.UUID, limit int) ([]models.CompletedWorkout, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var recent []models.CompletedWorkout
	err := c.get(ctx, "/api/v1/workouts/recent", params, &recent)
	return recent, err
}
