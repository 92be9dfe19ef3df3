package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hekkura/LibraryAppBE/pkg/api"
	"github.com/Hekkura/LibraryAppBE/pkg/backend/embedded"
	"github.com/Hekkura/LibraryAppBE/pkg/catalog"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *embedded.Engine) {
	t.Helper()
	engine := embedded.NewEngine()
	t.Cleanup(engine.StopBackgroundWorkers)

	handler := api.NewHandler(engine,
		catalog.NewLifecycle(engine, catalog.IndexScheme("user_apps")),
		catalog.NewLifecycle(engine, catalog.GenreScheme("user_list")),
	)
	srv := httptest.NewServer(NewServer(handler, []string{"http://localhost:3000"}).Router())
	t.Cleanup(srv.Close)
	return srv, engine
}

func TestServer_RoutesAndRequestID(t *testing.T) {
	srv, engine := newTestServer(t)
	require.NoError(t, engine.IndexDocument(context.Background(), "user_apps", "app1", domain.Document{"indexes": []string{}}))

	resp, err := http.Post(srv.URL+"/api/index/app1", "application/json", strings.NewReader(`{"index":"movies"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req, err := http.NewRequest("GET", srv.URL+"/api/index/list/app1", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))
	assert.JSONEq(t, `["movies"]`, string(body))
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","backend":true}`, string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `libraryapp_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/nowhere")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"route not found"}`, string(body))
}

func TestServer_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest("OPTIONS", srv.URL+"/api/index/app1", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest("GET", srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouteTemplate(t *testing.T) {
	req := httptest.NewRequest("GET", "/x", nil)
	assert.Equal(t, "unmatched", routeTemplate(req))
	assert.Empty(t, RequestID(req.Context()))
}
