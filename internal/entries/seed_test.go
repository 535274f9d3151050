package entries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadprices/internal/core"
)

const seedYAML = `
entries:
  - id: "b"
    category: Food
    itemName: Pad Thai
    price: "60"
    currency: THB
    location: Bangkok, Thailand
    submittedAt: 2024-02-01T10:00:00Z
  - id: "a"
    category: Transport
    itemName: Metro ticket
    price: "1,80"
    currency: EUR
    location: Lisbon, Portugal
    country: Portugal
    comment: single ride
    submittedAt: 2024-01-20T08:30:00Z
    submittedBy: Marco
`

func TestParseSeed(t *testing.T) {
	got, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "Thailand", got[0].Country)
	assert.Equal(t, core.DefaultSubmitter, got[0].SubmittedBy)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(60)))

	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("1.8")))
	assert.Equal(t, "Marco", got[1].SubmittedBy)
	assert.Equal(t, 2024, got[1].SubmittedAt.Year())
}

func TestParseSeedRejectsBadEntries(t *testing.T) {
	_, err := ParseSeed([]byte("entries:\n  - id: x\n    category: Food\n    itemName: y\n    price: \"-2\"\n    currency: USD\n    location: Lima, Peru\n"))
	assert.ErrorIs(t, err, core.ErrNegativePrice)

	_, err = ParseSeed([]byte("entries:\n  - id: x\n    category: Food\n    price: \"2\"\n    currency: USD\n    location: Lima, Peru\n"))
	assert.ErrorIs(t, err, core.ErrEmptyItemName)

	_, err = ParseSeed([]byte("entries:\n  - id: x\n    category: Food\n    itemName: y\n    price: \"2\"\n    currency: USD\n    location: Lima, Peru\n"))
	assert.ErrorIs(t, err, core.ErrMissingSubmittedAt)

	_, err = ParseSeed([]byte("entries: [oops"))
	assert.Error(t, err)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	got, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultSeedIsValid(t *testing.T) {
	for _, e := range DefaultSeed() {
		assert.NoError(t, e.Validate(), e.ID)
	}
}
