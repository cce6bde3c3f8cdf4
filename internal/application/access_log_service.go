package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

// ErrInvalidAccessLog is returned by Record for entries that could never be stored.
var ErrInvalidAccessLog = errors.New("invalid access log entry")

// Page bounds a listing. The zero Page returns everything.
type Page struct {
	Limit  int
	Offset int
}

// AccessLogIndexer mirrors audit rows into a search index.
type AccessLogIndexer interface {
	Index(ctx context.Context, l entity.AccessLog) error
	Search(ctx context.Context, q string, size int) ([]entity.AccessLog, error)
}

// AccessLogExporter writes a snapshot of audit rows to object storage and returns its location.
type AccessLogExporter interface {
	Export(ctx context.Context, logs []entity.AccessLog) (string, error)
}

type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type AccessLogService struct {
	Repo     repo.AccessLogRepository
	Logger   *logrus.Logger
	Indexer  AccessLogIndexer
	Exporter AccessLogExporter

	now func() time.Time
}

type AccessLogOption func(*AccessLogService)

func WithIndexer(ix AccessLogIndexer) AccessLogOption {
	return func(s *AccessLogService) { s.Indexer = ix }
}

func WithExporter(ex AccessLogExporter) AccessLogOption {
	return func(s *AccessLogService) { s.Exporter = ex }
}

func WithClock(now func() time.Time) AccessLogOption {
	return func(s *AccessLogService) { s.now = now }
}

func NewAccessLogService(r repo.AccessLogRepository, logger *logrus.Logger, opts ...AccessLogOption) *AccessLogService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	s := &AccessLogService{Repo: r, Logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one entry. The timestamp is taken from the service clock, never from the caller.
// The search index is updated afterwards on a best-effort basis.
func (s *AccessLogService) Record(ctx context.Context, in entity.AccessLogInput) (*entity.AccessLog, error) {
	if in.IPAddress == "" {
		return nil, fmt.Errorf("%w: ip address is required", ErrInvalidAccessLog)
	}
	if in.Status != entity.AccessSuccess && in.Status != entity.AccessFailed {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidAccessLog, in.Status)
	}

	l := &entity.AccessLog{
		Timestamp: s.now().UTC(),
		UserID:    in.UserID,
		Email:     in.Email,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		Status:    in.Status,
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}

	if s.Indexer != nil {
		if err := s.Indexer.Index(ctx, *l); err != nil {
			s.Logger.WithError(err).WithField("access_log_id", l.ID).Warn("index access log failed")
		}
	}
	return l, nil
}

// ListAll returns entries newest first, joined with their user when known.
func (s *AccessLogService) ListAll(ctx context.Context, p Page) ([]entity.AccessLog, error) {
	return s.Repo.List(ctx, repo.AccessLogFilter{Limit: p.Limit, Offset: p.Offset})
}

// ListByUser returns one user's entries newest first.
func (s *AccessLogService) ListByUser(ctx context.Context, userID string, p Page) ([]entity.AccessLog, error) {
	if userID == "" {
		return []entity.AccessLog{}, nil
	}
	return s.Repo.List(ctx, repo.AccessLogFilter{UserID: userID, Limit: p.Limit, Offset: p.Offset})
}

// Search queries the secondary index. Results may lag behind the store.
func (s *AccessLogService) Search(ctx context.Context, q string, size int) ([]entity.AccessLog, error) {
	if s.Indexer == nil {
		return nil, ErrSearchDisabled
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.Indexer.Search(ctx, q, size)
}

// Export snapshots the whole log, newest first.
func (s *AccessLogService) Export(ctx context.Context) (*ExportResult, error) {
	if s.Exporter == nil {
		return nil, ErrExportDisabled
	}
	logs, err := s.Repo.List(ctx, repo.AccessLogFilter{})
	if err != nil {
		return nil, err
	}
	url, err := s.Exporter.Export(ctx, logs)
	if err != nil {
		s.Logger.WithError(err).Error("export access logs failed")
		return nil, fmt.Errorf("export access logs: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"url": url, "count": len(logs)}).Info("access logs exported")
	return &ExportResult{URL: url, Count: len(logs)}, nil
}
