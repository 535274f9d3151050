package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AllSelector disables a filter dimension.
	AllSelector = "all"

	// Length limits, counted in characters.
	MaxItemNameLength = 120
	MaxCommentLength  = 500

	DefaultSubmitter = "Anonymous"
	DefaultCurrency  = "USD"
)

type (
	// PriceEntry is one crowd-sourced price observation. Entries are never
	// mutated once created.
	PriceEntry struct {
		ID          string
		Category    string
		ItemName    string
		Price       decimal.Decimal
		Currency    string
		Location    string // "City, Country" as typed, never normalized
		Country     string
		Comment     string
		SubmittedAt time.Time
		SubmittedBy string
	}

	// Draft carries a submission as entered in the form. Price is kept as
	// text until validation.
	Draft struct {
		Location    string
		Country     string
		Category    string
		ItemName    string
		Price       string
		Currency    string
		Comment     string
		SubmittedBy string
	}

	// SubmitResult reports the outcome of a submission. Exactly one of Entry
	// (accepted) or Rejection is meaningful.
	SubmitResult struct {
		Entry     PriceEntry
		Rejection *ValidationError
	}
)

// Draft field names, as used in forms and validation errors.
const (
	FieldLocation    = "location"
	FieldCountry     = "country"
	FieldCategory    = "category"
	FieldItemName    = "itemName"
	FieldPrice       = "price"
	FieldCurrency    = "currency"
	FieldComment     = "comment"
	FieldSubmittedBy = "submittedBy"
)

var (
	ErrEmptyLocation       = errors.New("location is required")
	ErrEmptyCategory       = errors.New("category is required")
	ErrEmptyItemName       = errors.New("item name is required")
	ErrEmptyPrice          = errors.New("price is required")
	ErrInvalidPrice        = errors.New("price is not a number")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrItemNameTooLong     = errors.New("item name too long (max 120 characters)")
	ErrCommentTooLong      = errors.New("comment too long (max 500 characters)")
	ErrMissingSubmittedAt  = errors.New("submission time is required")
)

// ValidationError names the draft field that made a submission invalid.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Accepted reports whether the submission produced an entry.
func (r SubmitResult) Accepted() bool {
	return r.Rejection == nil
}

// Normalize trims every field and applies defaults: a blank submitter
// becomes Anonymous, a blank currency is taken from the curated location
// list (USD otherwise) and a blank country is inferred from the location.
func (d Draft) Normalize() Draft {
	d.Location = strings.TrimSpace(d.Location)
	d.Country = strings.TrimSpace(d.Country)
	d.Category = strings.TrimSpace(d.Category)
	d.ItemName = strings.TrimSpace(d.ItemName)
	d.Price = strings.TrimSpace(d.Price)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	d.Comment = strings.TrimSpace(d.Comment)
	d.SubmittedBy = strings.TrimSpace(d.SubmittedBy)

	if d.SubmittedBy == "" {
		d.SubmittedBy = DefaultSubmitter
	}
	if d.Currency == "" {
		if c, ok := DefaultCurrencyFor(d.Location); ok {
			d.Currency = c
		} else {
			d.Currency = DefaultCurrency
		}
	}
	if d.Country == "" {
		d.Country = InferCountry(d.Location)
	}
	return d
}

// Validate checks the required fields in form order (location, category,
// item name, price) and then the enumerated values. It expects a
// normalized draft.
func (d Draft) Validate() *ValidationError {
	if d.Location == "" {
		return invalid(FieldLocation, ErrEmptyLocation)
	}
	if d.Category == "" {
		return invalid(FieldCategory, ErrEmptyCategory)
	}
	if d.ItemName == "" {
		return invalid(FieldItemName, ErrEmptyItemName)
	}
	if d.Price == "" {
		return invalid(FieldPrice, ErrEmptyPrice)
	}
	if !IsCategory(d.Category) {
		return invalid(FieldCategory, ErrUnknownCategory)
	}
	if utf8.RuneCountInString(d.ItemName) > MaxItemNameLength {
		return invalid(FieldItemName, ErrItemNameTooLong)
	}
	if utf8.RuneCountInString(d.Comment) > MaxCommentLength {
		return invalid(FieldComment, ErrCommentTooLong)
	}
	if !IsSupportedCurrency(d.Currency) {
		return invalid(FieldCurrency, ErrUnsupportedCurrency)
	}
	if _, err := ParsePrice(d.Price); err != nil {
		return invalid(FieldPrice, err)
	}
	return nil
}

// NewEntry turns a draft into an entry with a fresh ID and the given
// submission time. The returned result carries the rejection when the draft
// is invalid.
func NewEntry(d Draft, now time.Time) SubmitResult {
	d = d.Normalize()
	if verr := d.Validate(); verr != nil {
		return SubmitResult{Rejection: verr}
	}
	price, _ := ParsePrice(d.Price)
	return SubmitResult{Entry: PriceEntry{
		ID:          uuid.NewString(),
		Category:    d.Category,
		ItemName:    d.ItemName,
		Price:       price,
		Currency:    d.Currency,
		Location:    d.Location,
		Country:     d.Country,
		Comment:     d.Comment,
		SubmittedAt: now,
		SubmittedBy: d.SubmittedBy,
	}}
}

// Validate checks the stored-entry invariants. Stores do not call it; it is
// used when entries arrive from outside a draft (seed files, events).
func (e PriceEntry) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("entry id is required")
	case strings.TrimSpace(e.Location) == "":
		return ErrEmptyLocation
	case strings.TrimSpace(e.Category) == "":
		return ErrEmptyCategory
	case strings.TrimSpace(e.ItemName) == "":
		return ErrEmptyItemName
	case strings.TrimSpace(e.Currency) == "":
		return ErrUnsupportedCurrency
	case e.Price.IsNegative():
		return ErrNegativePrice
	case e.SubmittedAt.IsZero():
		return ErrMissingSubmittedAt
	}
	return nil
}
