package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		query   string
		want    []string
	}{
		{"lowercase matches ticker", ClassEquities.Candidates(), "go", []string{"GOOGL"}},
		{"empty keeps all", ClassEquities.Candidates(), "", []string{"AAPL", "MSFT", "GOOGL", "TSLA"}},
		{"blank keeps all", ClassFunds.Candidates(), "  ", []string{"SPY", "VOO", "QQQ"}},
		{"mixed case on names", ClassBonds.Candidates(), "tReAs", []string{"US 10Y Treasury"}},
		{"shared substring", ClassBonds.Candidates(), "10y", []string{"US 10Y Treasury", "EU 10Y Bond"}},
		{"no match", ClassFunds.Candidates(), "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filter(tt.options, tt.query))
		})
	}
}

func TestCandidates_ReturnsCopy(t *testing.T) {
	c := ClassEquities.Candidates()
	c[0] = "XXX"
	assert.Equal(t, "AAPL", ClassEquities.Candidates()[0])
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "AAPL", Resolve("aapl"))
	assert.Equal(t, "US 10Y Treasury", Resolve(" us 10y treasury "))
	assert.Equal(t, "NVDA", Resolve(" nvda"))
	assert.Equal(t, "", Resolve("   "))
}

func TestClassOf(t *testing.T) {
	c, ok := ClassOf("QQQ")
	require.True(t, ok)
	assert.Equal(t, ClassFunds, c)

	_, ok = ClassOf("qqq")
	assert.False(t, ok)
	assert.Len(t, AllSymbols(), 9)
}

func TestParseTabAndClass(t *testing.T) {
	tab, err := ParseTab("Macro Indicators")
	require.NoError(t, err)
	assert.Equal(t, TabMacro, tab)

	tab, err = ParseTab("WATCHLIST")
	require.NoError(t, err)
	assert.Equal(t, TabWatchlist, tab)

	_, err = ParseTab("history")
	assert.Error(t, err)

	class, err := ParseClass("Bonds")
	require.NoError(t, err)
	assert.Equal(t, ClassBonds, class)

	_, err = ParseClass("crypto")
	assert.Error(t, err)
}
