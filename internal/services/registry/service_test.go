package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/models"
)

// fakeProvider is a scripted universe source with a fetch counter.
type fakeProvider struct {
	name       string
	securities []models.Security
	err        error
	calls      atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchUniverse(context.Context) ([]models.Security, error) {
	f.calls.Add(1)
	return f.securities, f.err
}

var testUniverse = []models.Security{
	{Name: "삼성전자", Ticker: "005930", Market: models.MarketKOSPI},
	{Name: "에코프로", Ticker: "086520", Market: models.MarketKOSDAQ},
}

func TestLoad_FirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", securities: testUniverse}
	secondary := &fakeProvider{name: "secondary", securities: testUniverse}
	s := NewService(arbor.NewLogger(), primary, secondary)

	snap := s.Load(context.Background())

	assert.Len(t, snap, 2)
	assert.EqualValues(t, 1, primary.calls.Load())
	assert.EqualValues(t, 0, secondary.calls.Load(), "secondary must not be consulted when primary succeeds")
}

func TestLoad_FallsThroughOnErrorAndEmpty(t *testing.T) {
	failing := &fakeProvider{name: "failing", err: errors.New("unavailable")}
	empty := &fakeProvider{name: "empty"}
	working := &fakeProvider{name: "working", securities: testUniverse}
	s := NewService(arbor.NewLogger(), failing, empty, working)

	snap := s.Load(context.Background())

	require.Len(t, snap, 2)
	assert.Equal(t, "005930", snap[0].Ticker)
	assert.EqualValues(t, 1, failing.calls.Load())
	assert.EqualValues(t, 1, empty.calls.Load())
	assert.EqualValues(t, 1, working.calls.Load())
}

func TestLoad_AllProvidersExhaustedYieldsEmptySnapshot(t *testing.T) {
	s := NewService(arbor.NewLogger(),
		&fakeProvider{name: "a", err: errors.New("down")},
		&fakeProvider{name: "b", err: errors.New("down")},
	)

	snap := s.Load(context.Background())

	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestSnapshot_LoadsOnceAndCaches(t *testing.T) {
	provider := &fakeProvider{name: "primary", securities: testUniverse}
	s := NewService(arbor.NewLogger(), provider)

	first := s.Snapshot(context.Background())
	second := s.Snapshot(context.Background())

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, provider.calls.Load())
}

func TestSnapshot_EmptyLoadIsNotCached(t *testing.T) {
	provider := &fakeProvider{name: "flaky", err: errors.New("down")}
	s := NewService(arbor.NewLogger(), provider)

	first := s.Snapshot(context.Background())
	assert.Empty(t, first)

	// The source recovers; the next call must retry instead of serving the
	// cached failure.
	provider.err = nil
	provider.securities = testUniverse

	second := s.Snapshot(context.Background())
	assert.Len(t, second, 2)
}

func TestSnapshot_ConcurrentFirstCallersShareOneFetch(t *testing.T) {
	provider := &fakeProvider{name: "primary", securities: testUniverse}
	s := NewService(arbor.NewLogger(), provider)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]models.Snapshot, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Snapshot(context.Background())
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, provider.calls.Load())
	for i := range results {
		assert.Len(t, results[i], 2)
	}
}

func TestSnapshot_ByTickerLookup(t *testing.T) {
	s := NewService(arbor.NewLogger(), &fakeProvider{name: "primary", securities: testUniverse})

	snap := s.Snapshot(context.Background())
	byTicker := snap.ByTicker()

	sec, ok := byTicker["086520"]
	require.True(t, ok)
	assert.Equal(t, "에코프로", sec.Name)
	assert.Equal(t, models.MarketKOSDAQ, sec.Market)
}
