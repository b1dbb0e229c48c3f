package verify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "bisaathi/pkg/domain-errors"
	"bisaathi/pkg/platform/sentinel"
)

// ProductStore answers registry lookups by canonical CM/L code.
type ProductStore interface {
	FindByCode(ctx context.Context, code string) (Product, error)
}

// Service resolves CM/L codes against the certification registry.
type Service struct {
	products   ProductStore
	recognizer Recognizer
	scanWait   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the expiry reference time, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecognizer enables label image scanning through the given backend.
func WithRecognizer(r Recognizer) Option {
	return func(s *Service) { s.recognizer = r }
}

// WithScanTimeout bounds a single Recognize call.
func WithScanTimeout(d time.Duration) Option {
	return func(s *Service) { s.scanWait = d }
}

func New(products ProductStore, opts ...Option) (*Service, error) {
	if products == nil {
		return nil, errors.New("product store is required")
	}
	svc := &Service{products: products, scanWait: 10 * time.Second, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Lookup normalizes the code and resolves it. A code absent from the registry
// is a successful lookup with a not_found outcome, not an error; only a
// malformed code fails.
func (s *Service) Lookup(ctx context.Context, rawCode string) (Result, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return Result{}, err
	}

	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Result{CMLCode: code, Status: OutcomeNotFound}, nil
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query registry")
	}

	status := product.Status
	// A registered product past its expiry date reads as expired even when the
	// registry row has not been updated yet.
	if status == OutcomeValid && product.Expiry != nil && product.Expiry.Before(s.now()) {
		status = OutcomeExpired
	}

	return Result{
		CMLCode:      product.CMLCode,
		ProductName:  product.ProductName,
		Manufacturer: product.Manufacturer,
		Expiry:       product.Expiry,
		Status:       status,
	}, nil
}

// Scan extracts a CM/L code from a label image and resolves it. The recognizer
// call is bounded by the scan timeout on top of the caller's context.
func (s *Service) Scan(ctx context.Context, image []byte) (Result, error) {
	if s.recognizer == nil {
		return Result{}, dErrors.New(dErrors.CodeInternal, "image scanning is not configured")
	}
	if len(image) == 0 {
		return Result{}, dErrors.New(dErrors.CodeInvalidInput, "image is required")
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.scanWait)
	defer cancel()

	raw, err := s.recognizer.Recognize(scanCtx, image)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, dErrors.Wrap(err, dErrors.CodeTimeout, "label recognition timed out")
		}
		return Result{}, err
	}
	return s.Lookup(ctx, raw)
}
