package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	setError error
	setTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	m.setTTL = ttl
	return nil
}

// MockCompletionClient answers prompts by product name
type MockCompletionClient struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	prompts []string
}

func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{
		answers: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (m *MockCompletionClient) SubmitQuery(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	for product, err := range m.errs {
		if strings.Contains(prompt, product) {
			return "", err
		}
	}
	for product, answer := range m.answers {
		if strings.Contains(prompt, product) {
			return answer, nil
		}
	}
	return "", nil
}

func (m *MockCompletionClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

const (
	projector  = "Xiaomi Smart Projector L1 PRO Full HD Noir"
	microphone = "TONOR Cardioïde Dynamique USB/XLR"
)

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ProductConfig{
		{
			Name:           projector,
			Competitors:    []string{"Fnac", "Amazon"},
			TargetPrice:    decimal.NewFromInt(350),
			AlertThreshold: decimal.NewFromInt(15),
		},
		{
			Name:           microphone,
			Competitors:    []string{"Thomann", "Woodbrass"},
			TargetPrice:    decimal.NewFromInt(60),
			AlertThreshold: decimal.NewFromInt(8),
		},
	})
	require.NoError(t, err)
	return catalog
}

func newTestService(t *testing.T, cache *MockCacheRepository, client domain.CompletionClient) *MonitorService {
	t.Helper()
	svc := NewMonitorService(testCatalog(t), cache, client, MonitorServiceConfig{})
	svc.now = func() time.Time { return captureTime }
	return svc
}

func TestNewMonitorService(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		svc := NewMonitorService(testCatalog(t), NewMockCacheRepository(), nil, MonitorServiceConfig{})
		assert.Equal(t, time.Hour, svc.cacheTTL)
		assert.Equal(t, 2, svc.concurrency)
	})

	t.Run("keeps custom values", func(t *testing.T) {
		svc := NewMonitorService(testCatalog(t), NewMockCacheRepository(), nil, MonitorServiceConfig{
			CacheTTL:    5 * time.Minute,
			Concurrency: 4,
		})
		assert.Equal(t, 5*time.Minute, svc.cacheTTL)
		assert.Equal(t, 4, svc.concurrency)
	})
}

func TestCheckPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts and aggregates the answer", func(t *testing.T) {
		cache := NewMockCacheRepository()
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		svc := newTestService(t, cache, client)

		result, err := svc.CheckPrices(ctx, projector)

		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)
		assert.Equal(t, projector, result.Product)
		assert.Equal(t, []string{"Fnac", "Amazon"}, result.Competitors)
		assert.True(t, result.TargetPrice.Equal(decimal.NewFromInt(350)))
		assert.Equal(t, scenarioAnswer, result.RawAnswer)
		assert.Equal(t, captureTime, result.CapturedAt)
		require.Len(t, result.Observations, 2)
		assert.Equal(t, projector, result.Observations[0].Product)
		require.True(t, result.Metrics.HasPrices())
		assert.True(t, result.Metrics.MinPrice.Equal(decimal.RequireFromString("349.99")))
		assert.Equal(t, 0.5, result.Metrics.AvailabilityRatio)

		require.Len(t, client.prompts, 1)
		assert.Contains(t, client.prompts[0], "Fnac, Amazon")
	})

	t.Run("caches the snapshot with the configured ttl", func(t *testing.T) {
		cache := NewMockCacheRepository()
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		svc := newTestService(t, cache, client)

		result, err := svc.CheckPrices(ctx, projector)
		require.NoError(t, err)

		_, err = cache.Get(ctx, svc.generateCacheKey(projector))
		assert.NoError(t, err)
		assert.Equal(t, time.Hour, cache.setTTL)

		latest, err := svc.LatestResult(ctx, projector)
		require.NoError(t, err)
		assert.Equal(t, result.ID, latest.ID)
		require.Len(t, latest.Observations, 2)
		assert.True(t, latest.Observations[1].Price.Equal(decimal.RequireFromString("355")))
		assert.True(t, latest.Metrics.MeanPrice.Equal(*result.Metrics.MeanPrice))
	})

	t.Run("answer without price lines is not an error", func(t *testing.T) {
		client := NewMockCompletionClient()
		client.answers[projector] = "Je n'ai trouvé aucun prix pour ce produit."
		svc := newTestService(t, NewMockCacheRepository(), client)

		result, err := svc.CheckPrices(ctx, projector)

		require.NoError(t, err)
		assert.NotNil(t, result.Observations)
		assert.Empty(t, result.Observations)
		assert.False(t, result.Metrics.HasPrices())
		assert.Equal(t, 0.0, result.Metrics.AvailabilityRatio)
	})

	t.Run("blank product name", func(t *testing.T) {
		client := NewMockCompletionClient()
		svc := newTestService(t, NewMockCacheRepository(), client)

		_, err := svc.CheckPrices(ctx, "   ")

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Equal(t, 0, client.calls())
	})

	t.Run("unknown product", func(t *testing.T) {
		client := NewMockCompletionClient()
		svc := newTestService(t, NewMockCacheRepository(), client)

		_, err := svc.CheckPrices(ctx, "Unknown")

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Equal(t, 0, client.calls())
	})

	t.Run("no completion client configured", func(t *testing.T) {
		svc := newTestService(t, NewMockCacheRepository(), nil)

		_, err := svc.CheckPrices(ctx, projector)

		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("unauthorized passes through", func(t *testing.T) {
		client := NewMockCompletionClient()
		client.errs[projector] = domain.ErrUnauthorized
		svc := newTestService(t, NewMockCacheRepository(), client)

		_, err := svc.CheckPrices(ctx, projector)

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.NotErrorIs(t, err, domain.ErrCompletionFailure)
	})

	t.Run("other client errors become completion failures", func(t *testing.T) {
		client := NewMockCompletionClient()
		client.errs[projector] = errors.New("connection reset")
		svc := newTestService(t, NewMockCacheRepository(), client)

		_, err := svc.CheckPrices(ctx, projector)

		assert.ErrorIs(t, err, domain.ErrCompletionFailure)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("failed query leaves previous snapshot", func(t *testing.T) {
		cache := NewMockCacheRepository()
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		svc := newTestService(t, cache, client)

		first, err := svc.CheckPrices(ctx, projector)
		require.NoError(t, err)

		client.errs[projector] = domain.ErrCompletionFailure
		_, err = svc.CheckPrices(ctx, projector)
		require.Error(t, err)

		latest, err := svc.LatestResult(ctx, projector)
		require.NoError(t, err)
		assert.Equal(t, first.ID, latest.ID)
	})

	t.Run("cache failure does not fail the check", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.setError = errors.New("cache down")
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		svc := newTestService(t, cache, client)

		result, err := svc.CheckPrices(ctx, projector)

		require.NoError(t, err)
		assert.Len(t, result.Observations, 2)
	})
}

func TestLatestResult(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown product", func(t *testing.T) {
		svc := newTestService(t, NewMockCacheRepository(), nil)

		_, err := svc.LatestResult(ctx, "Unknown")

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("blank product name", func(t *testing.T) {
		svc := newTestService(t, NewMockCacheRepository(), nil)

		_, err := svc.LatestResult(ctx, "")

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		svc := newTestService(t, NewMockCacheRepository(), nil)

		_, err := svc.LatestResult(ctx, projector)

		assert.ErrorIs(t, err, domain.ErrNoSnapshot)
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc := newTestService(t, cache, nil)
		cache.data[svc.generateCacheKey(projector)] = []byte("{not json")

		_, err := svc.LatestResult(ctx, projector)

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNoSnapshot)
	})
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()

	t.Run("returns results in catalog order", func(t *testing.T) {
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		client.answers[microphone] = "Site: Thomann | Prix: 59,00€ | Stock: Disponible"
		svc := newTestService(t, NewMockCacheRepository(), client)

		results, err := svc.CheckAll(ctx)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, projector, results[0].Product)
		assert.Equal(t, microphone, results[1].Product)
		assert.Len(t, results[1].Observations, 1)
		assert.Equal(t, 2, client.calls())
	})

	t.Run("fails when one product fails", func(t *testing.T) {
		client := NewMockCompletionClient()
		client.answers[projector] = scenarioAnswer
		client.errs[microphone] = domain.ErrUnauthorized
		svc := newTestService(t, NewMockCacheRepository(), client)

		results, err := svc.CheckAll(ctx)

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, results)
	})
}

func TestLatestResult_KeysOnExactName(t *testing.T) {
	ctx := context.Background()
	catalog, err := domain.NewCatalog([]domain.ProductConfig{
		{Name: "Micro USB/XLR", TargetPrice: decimal.NewFromInt(60)},
		{Name: "micro usbxlr", TargetPrice: decimal.NewFromInt(40)},
		{Name: "MICRO USB/XLR", TargetPrice: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)

	client := NewMockCompletionClient()
	client.answers["Micro USB/XLR"] = "Site: Thomann | Prix: 59,00€ | Stock: Disponible"
	svc := NewMonitorService(catalog, NewMockCacheRepository(), client, MonitorServiceConfig{})

	checked, err := svc.CheckPrices(ctx, "Micro USB/XLR")
	require.NoError(t, err)

	latest, err := svc.LatestResult(ctx, "Micro USB/XLR")
	require.NoError(t, err)
	assert.Equal(t, checked.ID, latest.ID)

	for _, other := range []string{"micro usbxlr", "MICRO USB/XLR"} {
		_, err := svc.LatestResult(ctx, other)
		assert.ErrorIs(t, err, domain.ErrNoSnapshot, "product %q", other)
	}
}

func TestGenerateCacheKey(t *testing.T) {
	svc := newTestService(t, NewMockCacheRepository(), nil)

	assert.Equal(t, "prices:latest:"+microphone, svc.generateCacheKey(microphone))
	assert.NotEqual(t, svc.generateCacheKey("Micro USB/XLR"), svc.generateCacheKey("micro usbxlr"))
}
