package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// Config holds the connection settings of the Elasticsearch cluster
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// Timeout bounds every backend call; zero leaves it to the transport
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client implements domain.SearchBackend on top of the official Elasticsearch client.
// It is stateless apart from the connection pool and safe for concurrent use.
type Client struct {
	es      *elasticsearch.Client
	timeout time.Duration
}

var _ domain.SearchBackend = (*Client)(nil)

// New creates a client. Automatic retries are disabled: failed calls are
// reported to the caller as-is.
func New(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{es: es, timeout: cfg.Timeout}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("ping", res)
	}
	return nil
}

func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError("index exists "+name, res)
	}
}

func (c *Client) CreateIndex(ctx context.Context, name string, settings domain.IndexSettings) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := jsonBody(map[string]interface{}{"settings": settings})
	if err != nil {
		return err
	}
	res, err := c.es.Indices.Create(name,
		c.es.Indices.Create.WithBody(body),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index "+name, res)
	}
	return nil
}

func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Delete([]string{name}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("delete index "+name, res)
	}
	return nil
}

func (c *Client) IndexStats(ctx context.Context, pattern string) ([]domain.IndexStats, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Cat.Indices(
		c.es.Cat.Indices.WithIndex(pattern),
		c.es.Cat.Indices.WithFormat("json"),
		c.es.Cat.Indices.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("cat indices "+pattern, res)
	}

	stats := make([]domain.IndexStats, 0)
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode cat indices: %w", err)
	}
	return stats, nil
}

// GetMapping returns the mapping entry of the index, {"mappings": {...}}
func (c *Client) GetMapping(ctx context.Context, name string) (map[string]interface{}, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithIndex(name),
		c.es.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("get mapping "+name, res)
	}

	var body map[string]map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	mapping, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("mapping of %s: %w", name, domain.ErrNotFound)
	}
	return mapping, nil
}

func (c *Client) PutMapping(ctx context.Context, name string, mapping map[string]interface{}) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := jsonBody(mapping)
	if err != nil {
		return err
	}
	res, err := c.es.Indices.PutMapping([]string{name}, body, c.es.Indices.PutMapping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("put mapping "+name, res)
	}
	return nil
}

// GetDocument returns the _source of a document
func (c *Client) GetDocument(ctx context.Context, index, id string, fields []string) (domain.Document, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	opts := []func(*esapi.GetRequest){c.es.Get.WithContext(ctx)}
	if len(fields) > 0 {
		opts = append(opts, c.es.Get.WithSourceIncludes(fields...))
	}
	res, err := c.es.Get(index, id, opts...)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("get document "+index+"/"+id, res)
	}

	var body struct {
		Found  bool            `json:"found"`
		Source domain.Document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if !body.Found {
		return nil, fmt.Errorf("document %s in index %s: %w", id, index, domain.ErrNotFound)
	}
	if body.Source == nil {
		body.Source = domain.Document{}
	}
	return body.Source, nil
}

func (c *Client) IndexDocument(ctx context.Context, index, id string, doc domain.Document) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := jsonBody(doc)
	if err != nil {
		return err
	}
	opts := []func(*esapi.IndexRequest){c.es.Index.WithContext(ctx)}
	if id != "" {
		opts = append(opts, c.es.Index.WithDocumentID(id))
	}
	res, err := c.es.Index(index, body, opts...)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index document "+index, res)
	}
	return nil
}

func (c *Client) UpdateDocument(ctx context.Context, index, id string, partial domain.Document) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := jsonBody(map[string]interface{}{"doc": partial})
	if err != nil {
		return err
	}
	res, err := c.es.Update(index, id, body, c.es.Update.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("update document "+index+"/"+id, res)
	}
	return nil
}

func (c *Client) DeleteDocument(ctx context.Context, index, id string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("delete document "+index+"/"+id, res)
	}
	return nil
}

// BulkIndex sends docs as one _bulk request. A string "_id" field becomes the document id.
func (c *Client) BulkIndex(ctx context.Context, index string, docs []domain.Document) (domain.BulkResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]interface{}{}
		source := domain.Document{}
		for k, v := range doc {
			source[k] = v
		}
		if id, ok := source["_id"].(string); ok && id != "" {
			action["_id"] = id
		}
		delete(source, "_id")
		if err := enc.Encode(map[string]interface{}{"index": action}); err != nil {
			return domain.BulkResult{}, err
		}
		if err := enc.Encode(source); err != nil {
			return domain.BulkResult{}, err
		}
	}

	res, err := c.es.Bulk(&buf, c.es.Bulk.WithIndex(index), c.es.Bulk.WithContext(ctx))
	if err != nil {
		return domain.BulkResult{}, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return domain.BulkResult{}, responseError("bulk "+index, res)
	}

	var body struct {
		Items []map[string]struct {
			ID     string          `json:"_id"`
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error,omitempty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return domain.BulkResult{}, fmt.Errorf("decode bulk response: %w", err)
	}

	result := domain.BulkResult{IDs: make([]string, 0, len(body.Items))}
	for _, item := range body.Items {
		for _, op := range item {
			if op.Status >= 300 || len(op.Error) > 0 {
				result.Failed++
				continue
			}
			result.Indexed++
			result.IDs = append(result.IDs, op.ID)
		}
	}
	return result, nil
}

func (c *Client) Search(ctx context.Context, index string, req domain.SearchRequest) (domain.SearchResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := jsonBody(req.Body)
	if err != nil {
		return nil, err
	}
	res, err := c.es.Search(
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(body),
		c.es.Search.WithFrom(req.Page.From),
		c.es.Search.WithSize(req.Page.Size),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search "+index, res)
	}

	var result domain.SearchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return result, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// errorBody is the error envelope of the Elasticsearch REST API
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// responseError converts an error response into the domain sentinels
func responseError(op string, res *esapi.Response) error {
	cause := readCause(res.Body)

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", op, cause.describe(), domain.ErrNotFound)
	case cause.Type == "resource_already_exists_exception":
		return fmt.Errorf("%s: %s: %w", op, cause.describe(), domain.ErrAlreadyExists)
	case res.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s: %s: %w", op, cause.describe(), domain.ErrBadRequest)
	}
	return &domain.BackendError{Op: op, Status: res.StatusCode, Reason: cause.describe()}
}

func readCause(r io.Reader) errorCause {
	var body errorBody
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return errorCause{}
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Error) == 0 {
		return errorCause{Reason: strings.TrimSpace(string(data))}
	}

	var cause errorCause
	if err := json.Unmarshal(body.Error, &cause); err == nil {
		return cause
	}
	var reason string
	if err := json.Unmarshal(body.Error, &reason); err == nil {
		return errorCause{Reason: reason}
	}
	return errorCause{}
}

func (c errorCause) describe() string {
	switch {
	case c.Type != "" && c.Reason != "":
		return c.Type + ": " + c.Reason
	case c.Reason != "":
		return c.Reason
	case c.Type != "":
		return c.Type
	}
	return "no reason given"
}
