package holidays

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_2025(t *testing.T) {
	hs := Fallback(2025)
	require.Len(t, hs, 20)

	byName := make(map[string]string, len(hs))
	for i, h := range hs {
		byName[h.Name] = h.Date.Format("2006-01-02")
		if i > 0 {
			assert.False(t, h.Date.Before(hs[i-1].Date), "not sorted at %d", i)
		}
		require.NotNil(t, h.Provenance)
		assert.Equal(t, SourceFallback, h.Provenance.Source)
	}

	assert.Equal(t, "2025-04-17", byName["Maundy Thursday"])
	assert.Equal(t, "2025-04-18", byName["Good Friday"])
	assert.Equal(t, "2025-04-19", byName["Black Saturday"])
	assert.Equal(t, "2025-04-20", byName["Easter Sunday"])
	assert.Equal(t, "2025-08-25", byName["National Heroes Day"])
	assert.Equal(t, "2025-01-01", byName["New Year's Day"])
	assert.Equal(t, "2025-12-30", byName["Rizal Day"])
}

func TestFallback_NoLunarHolidays(t *testing.T) {
	for _, h := range Fallback(2026) {
		switch h.Name {
		case "Chinese New Year", "Eid'l Fitr", "Eid'l Adha":
			t.Errorf("fallback must not guess %q", h.Name)
		}
	}
}

func TestFallback_FixedFlag(t *testing.T) {
	fixed := 0
	for _, h := range Fallback(2027) {
		if h.Provenance.Fixed {
			fixed++
		}
	}
	assert.Equal(t, 15, fixed)
}
