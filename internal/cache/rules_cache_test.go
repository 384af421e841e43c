package cache

import (
	"context"
	"testing"
	"time"

	"agromonitor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRuleSource struct {
	rules []models.Rule
	calls int
}

func (f *fakeRuleSource) GetActiveRulesForPlot(ctx context.Context, plotID uuid.UUID) ([]models.Rule, error) {
	f.calls++
	return f.rules, nil
}

func setupCache(t *testing.T, source RuleSource, ttl time.Duration) (*CachedRuleStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCachedRuleStore(source, client, ttl, zap.NewNop()), mr
}

func sampleRule() models.Rule {
	return models.Rule{
		ID:         uuid.New(),
		ProducerID: uuid.New(),
		Name:       "High temperature",
		Field:      models.FieldTemperature,
		Operator:   models.OperatorGreaterThan,
		Threshold:  decimal.NewFromInt(40),
		AlertType:  models.AlertTypeTemperature,
		Severity:   models.SeverityHigh,
		Active:     true,
	}
}

func TestCachedRuleStore_SecondReadHitsCache(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{sampleRule()}}
	store, _ := setupCache(t, source, time.Minute)

	plotID := uuid.New()
	ctx := context.Background()

	first, err := store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, 1, source.calls, "second read must be served from cache")
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].Threshold.Equal(decimal.NewFromInt(40)))
}

func TestCachedRuleStore_TTLExpiryReloads(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{sampleRule()}}
	store, mr := setupCache(t, source, 30*time.Second)

	plotID := uuid.New()
	ctx := context.Background()

	_, err := store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	_, err = store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedRuleStore_InvalidateForcesReload(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{sampleRule()}}
	store, _ := setupCache(t, source, time.Minute)

	plotID := uuid.New()
	ctx := context.Background()

	_, err := store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx, plotID))

	_, err = store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedRuleStore_CorruptEntryFallsBackToSource(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{sampleRule()}}
	store, mr := setupCache(t, source, time.Minute)

	plotID := uuid.New()
	require.NoError(t, mr.Set(ruleCacheKey(plotID), "{not json"))

	rules, err := store.GetActiveRulesForPlot(context.Background(), plotID)

	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, source.calls)
}

func TestCachedRuleStore_RedisDownDegradesToSource(t *testing.T) {
	source := &fakeRuleSource{rules: []models.Rule{sampleRule()}}
	store, mr := setupCache(t, source, time.Minute)

	mr.Close()

	rules, err := store.GetActiveRulesForPlot(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, source.calls)
}

func TestCachedRuleStore_EmptyRuleSetIsCached(t *testing.T) {
	source := &fakeRuleSource{}
	store, _ := setupCache(t, source, time.Minute)

	plotID := uuid.New()
	ctx := context.Background()

	_, err := store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)
	_, err = store.GetActiveRulesForPlot(ctx, plotID)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "empty result must be cached too")
}
