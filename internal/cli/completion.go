package cli

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"InvestmentHelper/internal/config"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

var styles = predict.Set{"auto", "dark", "light", "ascii", "notty"}

// Completion describes the command line for shell completion. Install it
// with COMP_INSTALL=1 helper.
func Completion(configPath func() string) *complete.Command {
	symbols := predict.Set(view.AllSymbols())
	saved := complete.PredictFunc(func(string) []string {
		return savedSymbols(configPath())
	})
	displayFlags := map[string]complete.Predictor{
		"style": styles,
		"width": predict.Something,
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
		},
		Sub: map[string]*complete.Command{
			"serve": {Flags: map[string]complete.Predictor{
				"addr":       predict.Something,
				"digest-now": predict.Nothing,
			}},
			"list":      {},
			"add":       {Args: symbols},
			"remove":    {Args: saved},
			"quote":     {Args: symbols, Flags: displayFlags},
			"recommend": {Args: symbols, Flags: displayFlags},
			"macro":     {Flags: displayFlags},
			"digest": {Flags: map[string]complete.Predictor{
				"send":  predict.Nothing,
				"style": styles,
				"width": predict.Something,
			}},
		},
	}
}

// savedSymbols reads the watchlist file named by the config at path.
// Errors yield no suggestions.
func savedSymbols(path string) []string {
	cfg, err := config.Load(path)
	if err != nil {
		return nil
	}
	items, err := watchlist.NewStore(cfg.Watchlist.File).Load()
	if err != nil {
		return nil
	}
	return items
}
