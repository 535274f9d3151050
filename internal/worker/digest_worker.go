package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"nomadprices/internal/amqp"
	"nomadprices/internal/core"
	"nomadprices/internal/entries"
)

// DigestWorker mirrors submitted entries from the event stream into its own
// store and periodically logs a per-location digest of them.
type DigestWorker struct {
	store  entries.Store
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDigestWorker(store entries.Store, logger *slog.Logger) *DigestWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigestWorker{
		store:  store,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// HandlePriceSubmitted stores the entry carried by msg. Redelivered
// messages are ignored.
func (w *DigestWorker) HandlePriceSubmitted(ctx context.Context, msg *amqp.PriceSubmittedMessage) error {
	e := msg.ToEntry()
	if err := e.Validate(); err != nil {
		// Requeueing an invalid entry would loop forever.
		w.logger.WarnContext(ctx, "Dropping invalid price event", "id", msg.ID, "error", err)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.seen[e.ID]; dup {
		w.logger.DebugContext(ctx, "Ignoring duplicate price event", "id", e.ID)
		return nil
	}
	if err := w.store.Insert(ctx, e); err != nil {
		return fmt.Errorf("store event entry: %w", err)
	}
	w.seen[e.ID] = struct{}{}
	return nil
}

// Digest summarizes every stored entry by location.
func (w *DigestWorker) Digest(ctx context.Context) ([]core.LocationSummary, error) {
	all, err := w.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return core.SummarizeByLocation(all), nil
}

// LogDigest writes the current digest, one line per location.
func (w *DigestWorker) LogDigest(ctx context.Context) error {
	digest, err := w.Digest(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, s := range digest {
		total += s.EntryCount
	}
	w.logger.InfoContext(ctx, "Price digest", "locations", len(digest), "entries", total)
	for _, s := range digest {
		w.logger.InfoContext(ctx, "Location prices",
			"location", s.Location,
			"country", s.Country,
			"entries", s.EntryCount,
			"average", core.FormatPrice(s.AveragePrice, s.Currency),
			"mixed_currency", s.MixedCurrency,
			"categories", s.Categories)
	}
	return nil
}
