// Package entries defines the entry store ports and seed data loading.
package entries

import (
	"context"

	"nomadprices/internal/core"
)

// Ports for entry storage adapters.
type (
	EntryWriter interface {
		// Insert prepends e. Stores never validate; callers do.
		Insert(ctx context.Context, e core.PriceEntry) error
	}

	EntryLister interface {
		// All returns a copy of every entry, most recent first.
		All(ctx context.Context) ([]core.PriceEntry, error)
		Len(ctx context.Context) (int, error)
	}

	Store interface {
		EntryWriter
		EntryLister
	}
)
