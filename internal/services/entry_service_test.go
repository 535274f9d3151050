package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadprices/internal/core"
	"nomadprices/internal/entries"
	"nomadprices/internal/entries/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.PriceEntry
	err    error
	closed bool
}

func (p *recordingPublisher) PublishPriceSubmitted(_ context.Context, e core.PriceEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, core.PriceEntry) error  { return f.err }
func (f failingStore) All(context.Context) ([]core.PriceEntry, error) { return nil, f.err }
func (f failingStore) Len(context.Context) (int, error)               { return 0, f.err }

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, pub EventPublisher) (*EntryService, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewEntryService(store, pub, WithClock(func() time.Time { return fixedNow })), store
}

func draft(location, category, item, price string) core.Draft {
	return core.Draft{Location: location, Category: category, ItemName: item, Price: price, Currency: "USD"}
}

func TestSubmitEntry(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, store := newService(t, pub)

	res, err := svc.SubmitEntry(ctx, draft("Mexico City, Mexico", "Food", "Street Tacos", "2.50"))
	require.NoError(t, err)
	require.True(t, res.Accepted())
	assert.NotEmpty(t, res.Entry.ID)
	assert.Equal(t, fixedNow, res.Entry.SubmittedAt)
	assert.Equal(t, core.DefaultSubmitter, res.Entry.SubmittedBy)

	all, _ := store.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, res.Entry.ID, all[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, res.Entry.ID, pub.events[0].ID)
}

func TestSubmitEntryRejectionLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, store := newService(t, pub)
	require.NoError(t, entries.Seed(ctx, store, entries.DefaultSeed()))
	before, _ := store.All(ctx)

	d := draft("Lisbon, Portugal", "Food", "", "3")
	res, err := svc.SubmitEntry(ctx, d)
	require.NoError(t, err)
	assert.False(t, res.Accepted())
	assert.Equal(t, core.FieldItemName, res.Rejection.Field)
	assert.ErrorIs(t, res.Rejection, core.ErrEmptyItemName)

	after, _ := store.All(ctx)
	assert.Equal(t, before, after)
	assert.Empty(t, pub.events)
}

func TestSubmitEntryPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, store := newService(t, pub)

	res, err := svc.SubmitEntry(context.Background(), draft("Bangkok, Thailand", "Transport", "Taxi", "8"))
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	n, _ := store.Len(context.Background())
	assert.Equal(t, 1, n)
}

func TestSubmitEntryStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewEntryService(failingStore{err: boom}, nil)

	_, err := svc.SubmitEntry(context.Background(), draft("Bangkok, Thailand", "Transport", "Taxi", "8"))
	assert.ErrorIs(t, err, boom)

	_, err = svc.Locations(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Error(t, svc.Ready(context.Background()))
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	for _, d := range []core.Draft{
		draft("Mexico City, Mexico", "Food", "Street Tacos", "2.50"),
		draft("Bangkok, Thailand", "Transport", "Taxi (10km)", "8.00"),
		draft("Mexico City, Mexico", "Food", "Elote", "1.50"),
		draft("Bangkok, Thailand", "Food", "Pad Thai", "2"),
	} {
		res, err := svc.SubmitEntry(ctx, d)
		require.NoError(t, err)
		require.True(t, res.Accepted(), "%v", res.Rejection)
	}

	facets, err := svc.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Transport"}, facets.Categories)
	assert.Equal(t, []string{"Mexico City, Mexico", "Bangkok, Thailand"}, facets.Locations)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Stats{TotalEntries: 4, Locations: 2, Categories: 2}, stats)

	transport, err := svc.Entries(ctx, core.NewSelection("Transport", core.AllSelector))
	require.NoError(t, err)
	require.Len(t, transport, 1)
	assert.Equal(t, "Taxi (10km)", transport[0].ItemName)

	avgs, err := svc.Averages(ctx, core.NewSelection("Food", core.AllSelector))
	require.NoError(t, err)
	require.Len(t, avgs, 2)
	assert.Equal(t, "Bangkok, Thailand", avgs[0].Location)
	assert.Equal(t, "Mexico City, Mexico", avgs[1].Location)
	require.Len(t, avgs[1].Categories, 1)
	assert.True(t, avgs[1].Categories[0].AveragePrice.Equal(decimal.NewFromInt(2)))

	summary, err := svc.Locations(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Bangkok, Thailand", summary[0].Location)
	assert.Equal(t, 2, summary[0].EntryCount)
	assert.Equal(t, []string{"Food", "Transport"}, summary[0].Categories)

	assert.NoError(t, svc.Ready(ctx))
}

func TestClose(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewEntryService(memory.New(), pub)
	assert.NoError(t, svc.Close())
	assert.True(t, pub.closed)

	assert.NoError(t, NewEntryService(failingStore{}, nil).Close())
}
