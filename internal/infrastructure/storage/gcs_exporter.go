package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

const exportPrefix = "access-logs"

// GCSExporter writes audit snapshots to a bucket as newline-delimited JSON.
type GCSExporter struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewGCSExporter(client *storage.Client, bucket string) *GCSExporter {
	return &GCSExporter{client: client, bucket: bucket, now: time.Now}
}

func (e *GCSExporter) Export(ctx context.Context, logs []entity.AccessLog) (string, error) {
	if e.client == nil || e.bucket == "" {
		return "", errors.New("gcs not configured")
	}
	body, err := EncodeNDJSON(logs)
	if err != nil {
		return "", err
	}
	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return helpers.UploadObject(c, e.client, e.bucket, ObjectName(e.now(), uuid.NewString()), "application/x-ndjson", bytes.NewReader(body))
}

// ObjectName lays exports out by UTC date: access-logs/2006/01/02/<unix>-<id>.ndjson
func ObjectName(at time.Time, id string) string {
	at = at.UTC()
	return path.Join(exportPrefix, at.Format("2006/01/02"), fmt.Sprintf("%d-%s.ndjson", at.Unix(), id))
}

// EncodeNDJSON writes one JSON object per line, keeping the joined user view when present.
func EncodeNDJSON(logs []entity.AccessLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range logs {
		if err := enc.Encode(&logs[i]); err != nil {
			return nil, fmt.Errorf("encode access log %s: %w", logs[i].ID, err)
		}
	}
	return buf.Bytes(), nil
}
