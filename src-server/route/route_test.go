package route_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventdesk/src-server/model"
	"eventdesk/src-server/route"
	"eventdesk/src-server/utils"

	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	as      *utils.AppState
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	as, err := utils.NewAppState(utils.NewConfig())
	require.NoError(t, err)
	t.Cleanup(as.GracefulShutdown)
	require.NoError(t, model.CreateSchema(t.Context(), as.BunDB))

	return &testServer{
		t:       t,
		as:      as,
		handler: route.NewHandler(as),
	}
}

// Sends the request; body is marshalled unless it's already a string.
func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// Like do, but fails unless the status matches, then decodes the body into dst.
func (ts *testServer) expect(status int, method, path string, body, dst interface{}) {
	ts.t.Helper()
	rec := ts.do(method, path, body)
	require.Equal(ts.t, status, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if dst != nil {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
	}
}

type eventResp struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Date           string     `json:"date"`
	Location       string     `json:"location"`
	Tasks          []taskResp `json:"tasks"`
	AttendeesCount int        `json:"attendees_count"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      string     `json:"updated_at"`
}

type attendeeResp struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Events []int64 `json:"events"`
}

type taskResp struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Event  int64  `json:"event"`
	Status string `json:"status"`
}

func (ts *testServer) createEvent(name, description, location string) eventResp {
	ts.t.Helper()
	var resp eventResp
	ts.expect(http.StatusCreated, "POST", "/api/events/", map[string]interface{}{
		"name":        name,
		"description": description,
		"date":        "2026-11-20T18:30:00Z",
		"location":    location,
	}, &resp)
	return resp
}

func (ts *testServer) createAttendee(name, email string, events ...int64) attendeeResp {
	ts.t.Helper()
	if events == nil {
		events = make([]int64, 0)
	}
	var resp attendeeResp
	ts.expect(http.StatusCreated, "POST", "/api/attendees/", map[string]interface{}{
		"name":   name,
		"email":  email,
		"events": events,
	}, &resp)
	return resp
}

func (ts *testServer) createTask(name string, eventID int64) taskResp {
	ts.t.Helper()
	var resp taskResp
	ts.expect(http.StatusCreated, "POST", "/api/tasks/", map[string]interface{}{
		"name":  name,
		"event": eventID,
	}, &resp)
	return resp
}

func eventPath(id int64, suffix ...string) string {
	return path("events", id, suffix...)
}

func attendeePath(id int64, suffix ...string) string {
	return path("attendees", id, suffix...)
}

func taskPath(id int64, suffix ...string) string {
	return path("tasks", id, suffix...)
}

func path(resource string, id int64, suffix ...string) string {
	p := fmt.Sprintf("/api/%s/%d/", resource, id)
	for _, s := range suffix {
		p += s + "/"
	}
	return p
}
