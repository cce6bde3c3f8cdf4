package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
)

// AccessLogIndex mirrors audit rows into Elasticsearch for free-text search.
// The Postgres table stays the record of truth.
type AccessLogIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewAccessLogIndex(es *elasticsearch.Client, index string) *AccessLogIndex {
	return &AccessLogIndex{es: es, index: index}
}

type accessLogDoc struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty"`
	Status    string    `json:"status"`
}

func toDoc(l entity.AccessLog) accessLogDoc {
	return accessLogDoc{
		ID:        l.ID,
		Timestamp: l.Timestamp.UTC(),
		UserID:    l.UserID,
		Email:     l.Email,
		IPAddress: l.IPAddress,
		UserAgent: l.UserAgent,
		Status:    string(l.Status),
	}
}

func (d accessLogDoc) entity() entity.AccessLog {
	return entity.AccessLog{
		ID:        d.ID,
		Timestamp: d.Timestamp,
		UserID:    d.UserID,
		Email:     d.Email,
		IPAddress: d.IPAddress,
		UserAgent: d.UserAgent,
		Status:    entity.AccessStatus(d.Status),
	}
}

// Index writes one document keyed by the audit row id, so retries are idempotent.
func (ix *AccessLogIndex) Index(ctx context.Context, l entity.AccessLog) error {
	b, err := json.Marshal(toDoc(l))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: ix.index, DocumentID: l.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.es)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over the text fields, newest hits first.
func (ix *AccessLogIndex) Search(ctx context.Context, q string, size int) ([]entity.AccessLog, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":   q,
				"fields":  []string{"email^2", "ip_address", "user_agent", "status", "user_id"},
				"lenient": true,
			},
		},
		"sort": []any{map[string]any{"timestamp": map[string]any{"order": "desc"}}},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := ix.es.Search(
		ix.es.Search.WithContext(c),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source accessLogDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.AccessLog, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.entity())
	}
	return out, nil
}

const accessLogMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "timestamp":  {"type": "date"},
      "user_id":    {"type": "keyword"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "ip_address": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "user_agent": {"type": "text"},
      "status":     {"type": "keyword"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (ix *AccessLogIndex) EnsureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.index}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es exists: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	if res.StatusCode != 404 {
		return fmt.Errorf("es exists: %s", res.Status())
	}

	res, err = ix.es.Indices.Create(ix.index,
		ix.es.Indices.Create.WithContext(ctx),
		ix.es.Indices.Create.WithBody(strings.NewReader(accessLogMapping)),
	)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	// 400 here means another instance created it first
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}
