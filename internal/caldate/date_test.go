package caldate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = Parse("2024-13-01")
	assert.Error(t, err)
	_, err = Parse("not-a-date")
	assert.Error(t, err)
}

func TestNewNormalizes(t *testing.T) {
	assert.Equal(t, MustParse("2024-02-29"), New(2024, time.March, 0))
	assert.Equal(t, MustParse("2025-01-01"), New(2024, time.December, 32))
}

// TestFromTimeKeepsLocalDay verifies that a late-evening timestamp in a
// negative-offset zone stays on its own calendar day instead of rolling
// forward to the UTC date.
func TestFromTimeKeepsLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	ts := time.Date(2024, time.March, 15, 23, 30, 0, 0, loc)
	assert.Equal(t, MustParse("2024-03-15"), FromTime(ts))
	assert.Equal(t, MustParse("2024-03-16"), FromTime(ts.UTC()))
}

func TestDaysUntil(t *testing.T) {
	a := MustParse("2024-01-01")
	assert.Equal(t, 60, a.DaysUntil(MustParse("2024-03-01")))
	assert.Equal(t, -1, a.DaysUntil(MustParse("2023-12-31")))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestBeforeAfter(t *testing.T) {
	a, b := MustParse("2024-01-01"), MustParse("2024-01-02")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(wrapper{D: MustParse("2024-07-04")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-07-04"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2023-11-30"}`), &w))
	assert.Equal(t, MustParse("2023-11-30"), w.D)

	require.Error(t, json.Unmarshal([]byte(`{"d":"30/11/2023"}`), &w))
}

func TestZeroDate(t *testing.T) {
	var d Date
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
	require.NoError(t, d.UnmarshalText(nil))
	assert.True(t, d.IsZero())
}
