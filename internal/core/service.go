package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultImportTimeout bounds a single import run.
const DefaultImportTimeout = 5 * time.Minute

// Recorder receives domain events for metrics.
type Recorder interface {
	SaleRecorded(total decimal.Decimal, items int)
	SaleFailed(reason string)
	ImportFinished(entity string, imported, failed int)
}

type nopRecorder struct{}

func (nopRecorder) SaleRecorded(decimal.Decimal, int) {}
func (nopRecorder) SaleFailed(string) {}
func (nopRecorder) ImportFinished(string, int, int) {}

// Service provides the business operations over a Store.
type Service struct {
	store         Store
	limiter       *ImportLimiter
	recorder      Recorder
	now           func() time.Time
	newID         func() string
	receipts      *ReceiptGenerator
	importTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder routes domain events to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid generator, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithImportLimits sets the import concurrency, slot wait and run timeout.
func WithImportLimits(maxConcurrent int, maxWait, timeout time.Duration) Option {
	return func(s *Service) {
		s.limiter = NewImportLimiter(maxConcurrent, maxWait)
		if timeout > 0 {
			s.importTimeout = timeout
		}
	}
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		limiter:       NewImportLimiter(DefaultMaxConcurrentImports, DefaultImportWait),
		recorder:      nopRecorder{},
		now:           time.Now,
		newID:         uuid.NewString,
		importTimeout: DefaultImportTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.receipts == nil {
		s.receipts = NewReceiptGenerator(s.now)
	}
	return s
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ImportStatus reports the import limiter state.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// DrainImports waits for running imports to finish.
func (s *Service) DrainImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// stamp returns a fresh id and the creation time in epoch milliseconds.
func (s *Service) stamp() (string, int64) {
	return s.newID(), s.now().UnixMilli()
}
