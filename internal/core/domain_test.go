package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validDraft() Draft {
	return Draft{
		Location:    "Bangkok, Thailand",
		Category:    "Transport",
		ItemName:    "Taxi (10km)",
		Price:       "8.00",
		Currency:    "USD",
		Comment:     "Meter taxi, no traffic",
		SubmittedBy: "Sarah",
	}
}

func TestDraftNormalizeDefaults(t *testing.T) {
	d := Draft{Location: " Bangkok, Thailand ", Category: "Food", ItemName: "Pad thai", Price: "2"}.Normalize()
	if d.SubmittedBy != DefaultSubmitter {
		t.Fatalf("expected %q, got %q", DefaultSubmitter, d.SubmittedBy)
	}
	if d.Currency != "THB" {
		t.Fatalf("expected currency from curated location, got %q", d.Currency)
	}
	if d.Country != "Thailand" {
		t.Fatalf("expected inferred country, got %q", d.Country)
	}
	if d.Location != "Bangkok, Thailand" {
		t.Fatalf("expected trimmed location, got %q", d.Location)
	}

	d = Draft{Location: "Somewhere, Nowhere", Currency: " eur "}.Normalize()
	if d.Currency != "EUR" {
		t.Fatalf("expected explicit currency to win, got %q", d.Currency)
	}
	d = Draft{Location: "Somewhere, Nowhere"}.Normalize()
	if d.Currency != DefaultCurrency {
		t.Fatalf("expected default currency for unknown location, got %q", d.Currency)
	}
}

func TestDraftValidate(t *testing.T) {
	if err := validDraft().Normalize().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		edit  func(*Draft)
		field string
		err   error
	}{
		{"missing location", func(d *Draft) { d.Location = "" }, FieldLocation, ErrEmptyLocation},
		{"missing category", func(d *Draft) { d.Category = "  " }, FieldCategory, ErrEmptyCategory},
		{"missing item", func(d *Draft) { d.ItemName = "" }, FieldItemName, ErrEmptyItemName},
		{"missing price", func(d *Draft) { d.Price = "" }, FieldPrice, ErrEmptyPrice},
		{"unknown category", func(d *Draft) { d.Category = "Nightlife" }, FieldCategory, ErrUnknownCategory},
		{"unsupported currency", func(d *Draft) { d.Currency = "XYZ" }, FieldCurrency, ErrUnsupportedCurrency},
		{"non-numeric price", func(d *Draft) { d.Price = "abc" }, FieldPrice, ErrInvalidPrice},
		{"negative price", func(d *Draft) { d.Price = "-3" }, FieldPrice, ErrNegativePrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.edit(&d)
			verr := d.Normalize().Validate()
			if verr == nil {
				t.Fatalf("expected error")
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
			if !errors.Is(verr, tc.err) {
				t.Errorf("err = %v, want %v", verr, tc.err)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	res := NewEntry(validDraft(), now)
	if !res.Accepted() {
		t.Fatalf("expected accepted, got %v", res.Rejection)
	}
	e := res.Entry
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !e.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt = %v, want %v", e.SubmittedAt, now)
	}
	if !e.Price.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("price = %s", e.Price)
	}
	if e.Country != "Thailand" {
		t.Fatalf("country = %q", e.Country)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("entry invariants: %v", err)
	}

	other := NewEntry(validDraft(), now)
	if other.Entry.ID == e.ID {
		t.Fatalf("ids must be unique")
	}

	d := validDraft()
	d.ItemName = ""
	res = NewEntry(d, now)
	if res.Accepted() {
		t.Fatalf("expected rejection")
	}
	if res.Rejection.Field != FieldItemName {
		t.Fatalf("rejection field = %q", res.Rejection.Field)
	}
}

func TestPriceEntryValidate(t *testing.T) {
	at := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	good := PriceEntry{ID: "1", Location: "Lisbon, Portugal", Category: "Food", ItemName: "Coffee", Currency: "EUR", Price: decimal.RequireFromString("1.20"), SubmittedAt: at}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []PriceEntry{
		{Location: "x", Category: "c", ItemName: "i", Currency: "USD"},
		{ID: "1", Category: "c", ItemName: "i", Currency: "USD"},
		{ID: "1", Location: "x", ItemName: "i", Currency: "USD"},
		{ID: "1", Location: "x", Category: "c", Currency: "USD"},
		{ID: "1", Location: "x", Category: "c", ItemName: "i"},
		{ID: "1", Location: "x", Category: "c", ItemName: "i", Currency: "USD", Price: decimal.NewFromInt(-1), SubmittedAt: at},
		{ID: "1", Location: "x", Category: "c", ItemName: "i", Currency: "USD"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDraftValidateCountsCharacters(t *testing.T) {
	d := validDraft()
	d.ItemName = strings.Repeat("麺", MaxItemNameLength)
	d.Comment = strings.Repeat("é", MaxCommentLength)
	if verr := d.Normalize().Validate(); verr != nil {
		t.Fatalf("expected multi-byte text within limits to pass, got %v", verr)
	}

	d.ItemName += "麺"
	verr := d.Normalize().Validate()
	if verr == nil || !errors.Is(verr, ErrItemNameTooLong) {
		t.Fatalf("err = %v, want %v", verr, ErrItemNameTooLong)
	}

	d = validDraft()
	d.Comment = strings.Repeat("é", MaxCommentLength+1)
	verr = d.Normalize().Validate()
	if verr == nil || !errors.Is(verr, ErrCommentTooLong) {
		t.Fatalf("err = %v, want %v", verr, ErrCommentTooLong)
	}
}
