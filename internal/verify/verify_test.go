package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bisaathi/pkg/domain-errors"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "canonical", in: "CM/L-1234567", want: "CM/L-1234567"},
		{name: "lowercase", in: "cm/l-1234567", want: "CM/L-1234567"},
		{name: "missing slash", in: "CML-1234567", want: "CM/L-1234567"},
		{name: "missing hyphen", in: "CM/L1234567", want: "CM/L-1234567"},
		{name: "missing both", in: "CML1234567", want: "CM/L-1234567"},
		{name: "surrounding whitespace", in: "  CM/L-1234567  ", want: "CM/L-1234567"},
		{name: "internal spaces", in: "CM/L - 1234567", want: "CM/L-1234567"},
		{name: "minimum digits", in: "CM/L-12345", want: "CM/L-12345"},
		{name: "maximum digits", in: "CM/L-1234567890", want: "CM/L-1234567890"},
		{name: "too few digits", in: "CM/L-1234", wantErr: true},
		{name: "too many digits", in: "CM/L-12345678901", wantErr: true},
		{name: "letters in number", in: "CM/L-12A4567", wantErr: true},
		{name: "wrong prefix", in: "ISI-1234567", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(1, 0, 0)
	past := now.AddDate(-1, 0, 0)

	store := NewMemoryStore()
	store.Put(Product{CMLCode: "CM/L-1234567", ProductName: "Steel Water Bottle 1L", Expiry: &future, Status: OutcomeValid})
	store.Put(Product{CMLCode: "CM/L-7654321", ProductName: "Pressure Cooker 5L", Expiry: &past, Status: OutcomeValid})
	store.Put(Product{CMLCode: "CM/L-2468013", ProductName: "Electric Kettle", Expiry: &future, Status: OutcomeSuspended})

	svc, err := New(store, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	t.Run("valid product", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "CM/L-1234567")
		require.NoError(t, err)
		assert.Equal(t, OutcomeValid, result.Status)
		assert.Equal(t, "Steel Water Bottle 1L", result.ProductName)
		assert.False(t, result.Status.IsViolation())
	})

	t.Run("registered but past expiry reads as expired", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "CM/L-7654321")
		require.NoError(t, err)
		assert.Equal(t, OutcomeExpired, result.Status)
		assert.True(t, result.Status.IsViolation())
	})

	t.Run("suspended licence", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "CM/L-2468013")
		require.NoError(t, err)
		assert.Equal(t, OutcomeSuspended, result.Status)
	})

	t.Run("unknown code is a successful not_found lookup", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "CM/L-0000000")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, result.Status)
		assert.Equal(t, "CM/L-0000000", result.CMLCode)
		assert.True(t, result.Status.IsViolation())
	})

	t.Run("normalization applies before lookup", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "cml1234567")
		require.NoError(t, err)
		assert.Equal(t, OutcomeValid, result.Status)
	})

	t.Run("malformed code fails validation", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "not-a-code")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

type stuckRecognizer struct{}

func (stuckRecognizer) Recognize(ctx context.Context, _ []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	future := time.Now().AddDate(1, 0, 0)

	store := NewMemoryStore()
	store.Put(Product{CMLCode: "CM/L-1234567", ProductName: "Steel Water Bottle 1L", Expiry: &future, Status: OutcomeValid})

	t.Run("extracts a code buried in label text", func(t *testing.T) {
		svc, err := New(store, WithRecognizer(TextRecognizer{}))
		require.NoError(t, err)

		result, err := svc.Scan(ctx, []byte("BIS mark. Lic. cml-1234567 mfg 2025"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeValid, result.Status)
		assert.Equal(t, "CM/L-1234567", result.CMLCode)
	})

	t.Run("label without a code fails validation", func(t *testing.T) {
		svc, err := New(store, WithRecognizer(TextRecognizer{}))
		require.NoError(t, err)

		_, err = svc.Scan(ctx, []byte("no licence printed here"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty image is rejected", func(t *testing.T) {
		svc, err := New(store, WithRecognizer(TextRecognizer{}))
		require.NoError(t, err)

		_, err = svc.Scan(ctx, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("slow recognizer times out", func(t *testing.T) {
		svc, err := New(store, WithRecognizer(stuckRecognizer{}), WithScanTimeout(10*time.Millisecond))
		require.NoError(t, err)

		_, err = svc.Scan(ctx, []byte("anything"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("unconfigured scanning fails cleanly", func(t *testing.T) {
		svc, err := New(store)
		require.NoError(t, err)

		_, err = svc.Scan(ctx, []byte("anything"))
		require.Error(t, err)
	})
}
