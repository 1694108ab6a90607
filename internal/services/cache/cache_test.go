package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger("error"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestCache(t *testing.T) (*RecommendationCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, 5*time.Minute), mr
}

func sampleResult() *models.RecommendationResult {
	return &models.RecommendationResult{
		Schemes: []models.ScoredScheme{
			{
				Scheme:         models.Scheme{ID: "pm-kisan", Name: "PM-KISAN"},
				RelevanceScore: 87.5,
				Origin:         models.OriginCentral,
			},
		},
		TotalMatches: 12,
	}
}

func TestCacheSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	profile := &models.Profile{Age: 30, State: "rajasthan"}

	assert.Nil(t, c.Get(ctx, profile, 10))

	c.Set(ctx, profile, 10, sampleResult())

	got := c.Get(ctx, profile, 10)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.TotalMatches)
	require.Len(t, got.Schemes, 1)
	assert.Equal(t, "pm-kisan", got.Schemes[0].Scheme.ID)
	assert.Equal(t, models.OriginCentral, got.Schemes[0].Origin)
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	c, _ := newTestCache(t)

	income := 50000
	a := &models.Profile{Age: 30, AnnualIncome: &income, State: "up"}
	b := &models.Profile{Age: 30, AnnualIncome: &income, State: "up"}

	keyA, err := c.Key(a, 10)
	require.NoError(t, err)
	keyB, err := c.Key(b, 10)
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)

	// Different top-K means a different entry.
	keyC, err := c.Key(a, 5)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyC)

	// Any profile difference changes the key.
	different := &models.Profile{Age: 31, AnnualIncome: &income, State: "up"}
	keyD, err := c.Key(different, 10)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyD)
}

func TestCacheTopKIsPartOfTheKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	profile := &models.Profile{Age: 30}

	c.Set(ctx, profile, 10, sampleResult())

	assert.NotNil(t, c.Get(ctx, profile, 10))
	assert.Nil(t, c.Get(ctx, profile, 5))
}

func TestCacheCorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	profile := &models.Profile{Age: 30}

	key, err := c.Key(profile, 10)
	require.NoError(t, err)
	require.NoError(t, mr.Set(key, "not json"))

	assert.Nil(t, c.Get(ctx, profile, 10))
	assert.False(t, mr.Exists(key))
}

func TestCacheEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	profile := &models.Profile{Age: 30}

	c.Set(ctx, profile, 10, sampleResult())
	mr.FastForward(10 * time.Minute)

	assert.Nil(t, c.Get(ctx, profile, 10))
}

func TestCacheFlush(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	first := &models.Profile{Age: 30}
	second := &models.Profile{Age: 40}
	c.Set(ctx, first, 10, sampleResult())
	c.Set(ctx, second, 10, sampleResult())

	require.NoError(t, c.Flush(ctx))

	assert.Nil(t, c.Get(ctx, first, 10))
	assert.Nil(t, c.Get(ctx, second, 10))
}

func TestCacheDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	profile := &models.Profile{Age: 30}

	mr.Close()

	// Reads and writes degrade to misses, never errors or panics.
	assert.Nil(t, c.Get(ctx, profile, 10))
	c.Set(ctx, profile, 10, sampleResult())
	assert.Error(t, c.Ping(ctx))
}
