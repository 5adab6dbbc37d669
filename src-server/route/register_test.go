package route_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventdesk/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/api/register/", map[string]string{"username": "ivy", "password": "s3cret"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Body.String())

	userModel, err := model.GetUserByUsername(context.Background(), ts.as.BunDB, "ivy")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", userModel.Password)
	assert.True(t, model.CheckPassword(userModel.Password, "s3cret"))

	// fullwidth letters fold to the same name
	rec = ts.do("POST", "/api/register/", map[string]string{"username": " ｉｖｙ ", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Username already exists"}`, rec.Body.String())

	for _, body := range []interface{}{
		map[string]string{"username": "jack"},
		map[string]string{"password": "pw"},
		map[string]string{"username": "", "password": "pw"},
		nil,
	} {
		rec := ts.do("POST", "/api/register/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "Please provide username and password"}`, rec.Body.String())
	}
}

func TestMiddleware(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("GET", "/api/events/", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())

	req, err := http.NewRequest("GET", "/api/events/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	rec = ts.do("GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventdesk_http_requests_total")
}
