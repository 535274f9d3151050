package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"nomadprices/internal/core"
	"nomadprices/internal/entries"
)

// EventPublisher announces accepted entries to other processes.
type EventPublisher interface {
	PublishPriceSubmitted(ctx context.Context, e core.PriceEntry) error
}

// Facets are the values offered by the filter bar.
type Facets struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// EntryService orchestrates submissions and the read-only views over one
// entry store.
type EntryService struct {
	store     entries.Store
	publisher EventPublisher
	now       func() time.Time
}

type Option func(*EntryService)

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *EntryService) { s.now = now }
}

// NewEntryService wires a store and an optional publisher (nil disables
// events).
func NewEntryService(store entries.Store, publisher EventPublisher, opts ...Option) *EntryService {
	s := &EntryService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitEntry validates d, stores the resulting entry and publishes an
// event. An invalid draft is reported through the result, not the error,
// and leaves the store untouched. The error is reserved for store failures.
func (s *EntryService) SubmitEntry(ctx context.Context, d core.Draft) (core.SubmitResult, error) {
	res := core.NewEntry(d, s.now().UTC())
	if !res.Accepted() {
		slog.InfoContext(ctx, "Price submission rejected",
			"field", res.Rejection.Field,
			"reason", res.Rejection.Err.Error())
		return res, nil
	}

	if err := s.store.Insert(ctx, res.Entry); err != nil {
		return core.SubmitResult{}, fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Price entry stored",
		"id", res.Entry.ID,
		"location", res.Entry.Location,
		"category", res.Entry.Category,
		"price", res.Entry.Price.String(),
		"currency", res.Entry.Currency)

	// The entry is stored; a failed publish must not fail the submission.
	if err := s.publish(ctx, res.Entry); err != nil {
		slog.ErrorContext(ctx, "Failed to publish price submitted event",
			"id", res.Entry.ID, "error", err)
	}

	return res, nil
}

func (s *EntryService) publish(ctx context.Context, e core.PriceEntry) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event")
		return nil
	}
	return s.publisher.PublishPriceSubmitted(ctx, e)
}

// All returns every entry, most recent first.
func (s *EntryService) All(ctx context.Context) ([]core.PriceEntry, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return all, nil
}

// Entries returns the entries matching sel, most recent first.
func (s *EntryService) Entries(ctx context.Context, sel core.Selection) ([]core.PriceEntry, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(all, sel), nil
}

// Facets lists the distinct categories and locations of all entries.
func (s *EntryService) Facets(ctx context.Context) (Facets, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Facets{}, err
	}
	return Facets{
		Categories: core.DistinctCategories(all),
		Locations:  core.DistinctLocations(all),
	}, nil
}

func (s *EntryService) Stats(ctx context.Context) (core.Stats, error) {
	all, err := s.All(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	return core.StatsOf(all), nil
}

// Averages returns per (location, category) averages of the entries
// matching sel, grouped under their location.
func (s *EntryService) Averages(ctx context.Context, sel core.Selection) ([]core.LocationAverages, error) {
	matched, err := s.Entries(ctx, sel)
	if err != nil {
		return nil, err
	}
	return core.GroupByLocation(core.AveragesByLocationAndCategory(matched)), nil
}

// Locations summarizes every entry by location. Filters never apply.
func (s *EntryService) Locations(ctx context.Context) ([]core.LocationSummary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByLocation(all), nil
}

// Ready reports whether the store answers.
func (s *EntryService) Ready(ctx context.Context) error {
	if _, err := s.store.Len(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// Close releases the store and publisher when they hold resources.
func (s *EntryService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close entry service: %w", err)
	}
	return nil
}
