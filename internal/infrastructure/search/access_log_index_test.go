package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
)

type capturedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeNode answers like a single Elasticsearch node.
type fakeNode struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
	queue    []int // per-request statuses, consumed before status
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b)})
	status, body := f.status, f.body
	if len(f.queue) > 0 {
		status, f.queue = f.queue[0], f.queue[1:]
	}
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestIndex(t *testing.T, node *fakeNode) *AccessLogIndex {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewAccessLogIndex(es, "access-logs")
}

func TestAccessLogIndex_Index(t *testing.T) {
	node := &fakeNode{status: http.StatusCreated, body: `{"result":"created"}`}
	ix := newTestIndex(t, node)
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	err := ix.Index(context.Background(), entity.AccessLog{
		ID: "l1", Timestamp: ts, Email: "ghost@x.com", IPAddress: "10.0.0.1", Status: entity.AccessFailed,
	})
	require.NoError(t, err)

	require.Len(t, node.requests, 1)
	req := node.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/access-logs/_doc/l1", req.Path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &doc))
	assert.Equal(t, "ghost@x.com", doc["email"])
	assert.Equal(t, "failed", doc["status"])
	assert.Equal(t, "2025-02-03T04:05:06Z", doc["timestamp"])
	assert.NotContains(t, doc, "user_id")
}

func TestAccessLogIndex_IndexErrorStatus(t *testing.T) {
	node := &fakeNode{status: http.StatusBadRequest, body: `{"error":"mapper_parsing_exception"}`}
	ix := newTestIndex(t, node)

	err := ix.Index(context.Background(), entity.AccessLog{ID: "l1", IPAddress: "x", Status: entity.AccessFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestAccessLogIndex_Search(t *testing.T) {
	node := &fakeNode{body: `{"hits":{"hits":[
		{"_id":"l2","_source":{"id":"l2","timestamp":"2025-02-03T05:00:00Z","user_id":"u1","ip_address":"10.0.0.2","status":"success"}},
		{"_id":"l1","_source":{"id":"l1","timestamp":"2025-02-03T04:00:00Z","email":"ghost@x.com","ip_address":"10.0.0.1","status":"failed"}}
	]}}`}
	ix := newTestIndex(t, node)

	hits, err := ix.Search(context.Background(), "10.0.0", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "l2", hits[0].ID)
	assert.Equal(t, entity.AccessSuccess, hits[0].Status)
	assert.Equal(t, "ghost@x.com", hits[1].Email)

	require.Len(t, node.requests, 1)
	assert.True(t, strings.HasSuffix(node.requests[0].Path, "/access-logs/_search"))
	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(node.requests[0].Body), &q))
	assert.EqualValues(t, 5, q["size"])
}

func TestAccessLogIndex_SearchErrorStatus(t *testing.T) {
	node := &fakeNode{status: http.StatusNotFound, body: `{"error":"index_not_found_exception"}`}
	ix := newTestIndex(t, node)

	_, err := ix.Search(context.Background(), "x", 5)
	require.Error(t, err)
}

func TestAccessLogIndex_EnsureIndexExisting(t *testing.T) {
	node := &fakeNode{}
	ix := newTestIndex(t, node)

	require.NoError(t, ix.EnsureIndex(context.Background()))
	require.Len(t, node.requests, 1)
	assert.Equal(t, http.MethodHead, node.requests[0].Method)
}

func TestAccessLogIndex_EnsureIndexCreates(t *testing.T) {
	node := &fakeNode{queue: []int{http.StatusNotFound, http.StatusOK}, body: `{"acknowledged":true}`}
	ix := newTestIndex(t, node)

	require.NoError(t, ix.EnsureIndex(context.Background()))
	require.Len(t, node.requests, 2)
	assert.Equal(t, http.MethodPut, node.requests[1].Method)
	assert.Equal(t, "/access-logs", node.requests[1].Path)
	assert.Contains(t, node.requests[1].Body, `"timestamp":  {"type": "date"}`)
}

func TestAccessLogIndex_EnsureIndexFailure(t *testing.T) {
	node := &fakeNode{status: http.StatusServiceUnavailable}
	ix := newTestIndex(t, node)

	require.Error(t, ix.EnsureIndex(context.Background()))
}
