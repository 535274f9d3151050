package entries

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"nomadprices/internal/core"
)

type seedFile struct {
	Entries []seedRecord `yaml:"entries"`
}

type seedRecord struct {
	ID          string    `yaml:"id"`
	Category    string    `yaml:"category"`
	ItemName    string    `yaml:"itemName"`
	Price       string    `yaml:"price"`
	Currency    string    `yaml:"currency"`
	Location    string    `yaml:"location"`
	Country     string    `yaml:"country"`
	Comment     string    `yaml:"comment"`
	SubmittedAt time.Time `yaml:"submittedAt"`
	SubmittedBy string    `yaml:"submittedBy"`
}

// LoadSeed reads entries from a YAML file. Entries are listed most recent
// first, the same order All returns them in.
func LoadSeed(path string) ([]core.PriceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data and checks every entry. Each entry must
// carry its submittedAt time.
func ParseSeed(data []byte) ([]core.PriceEntry, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]core.PriceEntry, 0, len(f.Entries))
	for i, r := range f.Entries {
		price, err := core.ParsePrice(r.Price)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		e := core.PriceEntry{
			ID:          r.ID,
			Category:    r.Category,
			ItemName:    r.ItemName,
			Price:       price,
			Currency:    r.Currency,
			Location:    r.Location,
			Country:     r.Country,
			Comment:     r.Comment,
			SubmittedAt: r.SubmittedAt,
			SubmittedBy: r.SubmittedBy,
		}
		if e.Country == "" {
			e.Country = core.InferCountry(e.Location)
		}
		if e.SubmittedBy == "" {
			e.SubmittedBy = core.DefaultSubmitter
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// DefaultSeed returns the demo entries shown on a fresh start.
func DefaultSeed() []core.PriceEntry {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	return []core.PriceEntry{
		{
			ID:          "1",
			Category:    "Food",
			ItemName:    "Street Tacos",
			Price:       decimal.RequireFromString("2.50"),
			Currency:    "USD",
			Location:    "Mexico City, Mexico",
			Country:     "Mexico",
			Comment:     "Amazing al pastor tacos from street vendor",
			SubmittedAt: day(15),
			SubmittedBy: "Alex",
		},
		{
			ID:          "2",
			Category:    "Transport",
			ItemName:    "Taxi (10km)",
			Price:       decimal.RequireFromString("8.00"),
			Currency:    "USD",
			Location:    "Bangkok, Thailand",
			Country:     "Thailand",
			Comment:     "Meter taxi, no traffic",
			SubmittedAt: day(10),
			SubmittedBy: "Sarah",
		},
		{
			ID:          "3",
			Category:    "Food",
			ItemName:    "Coffee",
			Price:       decimal.RequireFromString("1.20"),
			Currency:    "USD",
			Location:    "Lisbon, Portugal",
			Country:     "Portugal",
			Comment:     "Espresso at local cafe",
			SubmittedAt: day(12),
			SubmittedBy: "Marco",
		},
	}
}

// Seed inserts list into store, preserving its most-recent-first order.
// Entries are inserted oldest first because Insert prepends.
func Seed(ctx context.Context, store EntryWriter, list []core.PriceEntry) error {
	for i := len(list) - 1; i >= 0; i-- {
		if err := store.Insert(ctx, list[i]); err != nil {
			return fmt.Errorf("seed entry %s: %w", list[i].ID, err)
		}
	}
	return nil
}
