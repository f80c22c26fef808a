package dataset

import "findash/internal/config"

// OptionsFromConfig builds normalizer options from the Normalize config
// section. Unset lists keep the built-in rules.
func OptionsFromConfig(cfg config.NormalizeConfig) Options {
	opts := DefaultOptions()
	if len(cfg.CurrencySymbols) > 0 {
		opts.Coercion.CurrencySymbols = cfg.CurrencySymbols
	}
	if len(cfg.MissingMarkers) > 0 {
		opts.Coercion.MissingMarkers = cfg.MissingMarkers
	}
	if cfg.DateYearPivot > 0 {
		opts.Coercion.TwoDigitYearPivot = cfg.DateYearPivot
	}
	opts.PreserveText = cfg.PreserveText
	return opts
}
