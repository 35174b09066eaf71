package fx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebaseBaseToForeign(t *testing.T) {
	// 100 ZMW at 20 ZMW/USD displays as 5 USD.
	lines, err := Rebase([]Line{{ItemCode: "ITM-1", UnitPrice: 100}}, "ZMW", 1, "USD", 20)
	require.NoError(t, err)
	assert.Equal(t, 5.0, lines[0].UnitPrice)
	require.NotNil(t, lines[0].BaseAmount)
	assert.Equal(t, 100.0, *lines[0].BaseAmount)
}

func TestRebaseRoundTripRestoresOriginal(t *testing.T) {
	lines := []Line{{ItemCode: "ITM-1", UnitPrice: 100}}

	usd, err := Rebase(lines, "ZMW", 1, "USD", 20)
	require.NoError(t, err)
	back, err := Rebase(usd, "USD", 20, "ZMW", 1)
	require.NoError(t, err)

	assert.Equal(t, 100.0, back[0].UnitPrice)
}

func TestRebaseReusesCachedBaseAcrossForeignSwitch(t *testing.T) {
	// ZMW -> USD @20, then USD -> EUR @0.9. The EUR price must come from
	// the cached 100 ZMW base, not from re-multiplying the USD price.
	usd, err := Rebase([]Line{{ItemCode: "ITM-1", UnitPrice: 100}}, "ZMW", 1, "USD", 20)
	require.NoError(t, err)

	eur, err := Rebase(usd, "USD", 20, "EUR", 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/0.9, eur[0].UnitPrice, 1e-9)
	assert.Equal(t, 100.0, *eur[0].BaseAmount)
}

func TestRebaseManySwitchesDoNotDrift(t *testing.T) {
	lines := []Line{{ItemCode: "ITM-1", UnitPrice: 100}}
	var err error
	for i := 0; i < 50; i++ {
		lines, err = Rebase(lines, "ZMW", 1, "USD", 17.31)
		require.NoError(t, err)
		lines, err = Rebase(lines, "USD", 17.31, "ZMW", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, lines[0].UnitPrice)
}

func TestRebaseSkipsPlaceholderRows(t *testing.T) {
	lines, err := Rebase([]Line{{ItemCode: "", UnitPrice: 42}}, "ZMW", 1, "USD", 20)
	require.NoError(t, err)
	assert.Equal(t, 42.0, lines[0].UnitPrice)
	assert.Nil(t, lines[0].BaseAmount)
}

func TestRebaseRejectsBadRates(t *testing.T) {
	orig := []Line{{ItemCode: "ITM-1", UnitPrice: 100}}
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Rebase(orig, "ZMW", 1, "USD", rate)
		assert.ErrorIs(t, err, ErrBadRate)
	}
	// Prior state untouched on failure.
	assert.Equal(t, 100.0, orig[0].UnitPrice)
	assert.Nil(t, orig[0].BaseAmount)
}

func TestRebaseIgnoresRateWhenBothSidesBase(t *testing.T) {
	// The base currency carries an implicit rate of 1; a garbage rate for
	// the base side must not matter.
	lines, err := Rebase([]Line{{ItemCode: "ITM-1", UnitPrice: 100}}, "zmw", 0, "ZMW", 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, lines[0].UnitPrice)
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(0.0001))
	assert.ErrorIs(t, ValidateRate(0), ErrBadRate)
	assert.ErrorIs(t, ValidateRate(math.Inf(-1)), ErrBadRate)
}
