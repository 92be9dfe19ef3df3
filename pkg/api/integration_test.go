package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hekkura/LibraryAppBE/pkg/backend/embedded"
	"github.com/Hekkura/LibraryAppBE/pkg/catalog"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// TestServer represents a test HTTP server backed by the embedded engine
type TestServer struct {
	Server  *httptest.Server
	TempDir string
	Engine  *embedded.Engine
	Handler *Handler
	BaseURL string
}

// NewTestServer creates a new test server with a temporary snapshot file
func NewTestServer(t *testing.T, options ...embedded.Option) *TestServer {
	tempDir, err := os.MkdirTemp("", "libraryapp-api-test-*")
	require.NoError(t, err)

	defaultOptions := []embedded.Option{
		embedded.WithDataFile(filepath.Join(tempDir, "library"+embedded.FileExtension)),
	}
	engine := embedded.NewEngine(append(defaultOptions, options...)...)

	handler := NewHandler(engine,
		catalog.NewLifecycle(engine, catalog.IndexScheme(appCatalog)),
		catalog.NewLifecycle(engine, catalog.GenreScheme(userCatalog)),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router.PathPrefix("/api").Subrouter())
	router.HandleFunc("/health", handler.HandleHealth).Methods("GET")

	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		TempDir: tempDir,
		Engine:  engine,
		Handler: handler,
		BaseURL: server.URL,
	}
}

// Close cleans up the test server and temporary files
func (ts *TestServer) Close(t *testing.T) {
	ts.Server.Close()
	ts.Engine.StopBackgroundWorkers()
	err := os.RemoveAll(ts.TempDir)
	require.NoError(t, err)
}

// RegisterApp seeds an application catalog document, as the external registration flow would
func (ts *TestServer) RegisterApp(t *testing.T, appID string) {
	require.NoError(t, ts.Engine.IndexDocument(context.Background(), appCatalog, appID, domain.Document{"indexes": []string{}}))
}

// RegisterUser seeds a user catalog document
func (ts *TestServer) RegisterUser(t *testing.T, userID string) {
	require.NoError(t, ts.Engine.IndexDocument(context.Background(), userCatalog, userID, domain.Document{"genres": []string{}}))
}

// Helper methods for making HTTP requests

func (ts *TestServer) POST(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return http.Post(ts.BaseURL+path, "application/json", bytes.NewBuffer(jsonData))
}

func (ts *TestServer) GET(path string) (*http.Response, error) {
	return http.Get(ts.BaseURL + path)
}

func (ts *TestServer) PUT(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("PUT", ts.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	return client.Do(req)
}

func (ts *TestServer) DELETE(path string) (*http.Response, error) {
	req, err := http.NewRequest("DELETE", ts.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{}
	return client.Do(req)
}

// ReadResponseBody reads and returns the response body as a string
func ReadResponseBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAPI_Integration_IndexLifecycle(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)
	ts.RegisterApp(t, "app1")

	// Create
	resp, err := ts.POST("/api/index/app1", map[string]interface{}{"index": "Movies"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Duplicate
	resp, err = ts.POST("/api/index/app1", map[string]interface{}{"index": "movies"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, "index 'movies' already exists", errResp.Error)

	// List
	resp, err = ts.GET("/api/index/list/app1")
	require.NoError(t, err)
	var names []string
	decodeBody(t, resp, &names)
	assert.Equal(t, []string{"movies"}, names)

	// Stats
	resp, err = ts.GET("/api/index/app1?index=movies")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []domain.IndexStats
	decodeBody(t, resp, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, "app1.movies", stats[0].Index)
	assert.Equal(t, "1", stats[0].Primaries)

	// Delete
	resp, err = ts.DELETE("/api/index/app1/movies")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.GET("/api/index/list/app1")
	require.NoError(t, err)
	names = nil
	decodeBody(t, resp, &names)
	assert.Empty(t, names)

	exists, err := ts.Engine.IndexExists(context.Background(), "app1.movies")
	require.NoError(t, err)
	assert.False(t, exists)

	// Second delete
	resp, err = ts.DELETE("/api/index/app1/movies")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Integration_DocumentsAndSearch(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)
	ts.RegisterApp(t, "app1")

	resp, err := ts.POST("/api/index/app1", map[string]interface{}{"index": "books"})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.PUT("/api/index/mappings", map[string]interface{}{
		"app_id": "app1",
		"index":  "books",
		"mappings": map[string]interface{}{"properties": map[string]interface{}{
			"title":  map[string]interface{}{"type": "text"},
			"author": map[string]interface{}{"type": "keyword"},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	docs := make([]map[string]interface{}, 0, 12)
	for i := 1; i <= 12; i++ {
		docs = append(docs, map[string]interface{}{
			"_id":    fmt.Sprintf("b%02d", i),
			"title":  fmt.Sprintf("Volume %d of the Dune saga", i),
			"author": "Herbert",
		})
	}
	docs = append(docs, map[string]interface{}{"_id": "other", "title": "Neuromancer", "author": "Gibson"})

	resp, err = ts.POST("/api/document/app1/books", docs)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bulk domain.BulkResult
	decodeBody(t, resp, &bulk)
	assert.Equal(t, 13, bulk.Indexed)

	// Default window
	resp, err = ts.GET("/api/search/app1/books?search_term=dune&search_in=title")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	decodeBody(t, resp, &result)
	hits := result["hits"].(map[string]interface{})
	assert.EqualValues(t, 12, hits["total"].(map[string]interface{})["value"])
	assert.Len(t, hits["hits"], domain.DefaultSearchSize)

	// Paged with return fields
	resp, err = ts.POST("/api/search/app1/books", map[string]interface{}{
		"search_term":   "dune",
		"search_in":     []string{"title"},
		"return_fields": "author",
		"from":          10,
		"count":         5,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = nil
	decodeBody(t, resp, &result)
	page := result["hits"].(map[string]interface{})["hits"].([]interface{})
	require.Len(t, page, 2)
	first := page[0].(map[string]interface{})
	assert.Equal(t, "b11", first["_id"])
	assert.Equal(t, map[string]interface{}{"author": "Herbert"}, first["_source"])

	// Document round trip
	resp, err = ts.PUT("/api/document/app1/books/other", map[string]interface{}{"year": 1984})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.GET("/api/document/app1/books/other?return_fields=title,year")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]interface{}
	decodeBody(t, resp, &doc)
	assert.Equal(t, map[string]interface{}{"title": "Neuromancer", "year": float64(1984)}, doc)

	resp, err = ts.DELETE("/api/document/app1/books/other")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.GET("/api/document/app1/books/other")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Integration_ErrorHandling(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)
	ts.RegisterApp(t, "app1")

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{"create for unregistered app", "POST", "/api/index/ghost", map[string]interface{}{"index": "x"}, http.StatusNotFound},
		{"search unknown index", "GET", "/api/search/app1/none", nil, http.StatusNotFound},
		{"mapping of unknown index", "GET", "/api/index/mappings/app1/none", nil, http.StatusNotFound},
		{"document of unknown index", "GET", "/api/document/app1/none/1", nil, http.StatusNotFound},
		{"invalid index name", "POST", "/api/index/app1", map[string]interface{}{"index": "bad*name"}, http.StatusBadRequest},
		{"unknown route", "GET", "/api/nothing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			var err error
			switch tt.method {
			case "POST":
				resp, err = ts.POST(tt.path, tt.body)
			default:
				resp, err = ts.GET(tt.path)
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPI_Integration_ConcurrentCreates(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)
	ts.RegisterApp(t, "app1")

	const workers = 8
	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := ts.POST("/api/index/app1", map[string]interface{}{"index": "shared"})
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", status)
		}
	}
	assert.Equal(t, 1, created)
}

func TestAPI_Integration_GenresPersistAcrossRestart(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)
	ts.RegisterUser(t, "reader")

	for _, genre := range []string{"Science Fiction", "Poésie"} {
		resp, err := ts.POST("/api/genre/reader", map[string]interface{}{"genre": genre})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	require.NoError(t, ts.Engine.Close())

	restored := embedded.NewEngine()
	defer restored.StopBackgroundWorkers()
	require.NoError(t, restored.LoadFromFile(ts.Engine.DataFile()))

	genres := catalog.NewLifecycle(restored, catalog.GenreScheme(userCatalog))
	names, err := genres.List(context.Background(), "reader")
	require.NoError(t, err)
	assert.Equal(t, catalog.ResourceSet{"po_sie", "science_fiction"}, names)

	exists, err := restored.IndexExists(context.Background(), "reader.po_sie")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAPI_Integration_Health(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)

	resp, err := ts.GET("/health")
	require.NoError(t, err)
	body, err := ReadResponseBody(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy","backend":true}`, body)

	ts.Engine.StopBackgroundWorkers()

	resp, err = ts.GET("/health")
	require.NoError(t, err)
	body, err = ReadResponseBody(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"degraded","backend":false}`, body)
}
