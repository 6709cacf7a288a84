package model

// Settings are the display preferences handed in by the host.
type Settings struct {
	// DecimalSeparator is "." or ",". It only affects displayed numbers.
	DecimalSeparator string `yaml:"decimal_separator" json:"decimal_separator"`
	// Decimals is the number of fraction digits shown for hours.
	Decimals int `yaml:"decimals" json:"decimals"`
	// WeeklyNorms maps an employee group to its weekly hour norm.
	WeeklyNorms map[string]float64 `yaml:"weekly_norms" json:"weekly_norms"`
}

// DefaultSettings returns period decimals with two fraction digits and no norms.
func DefaultSettings() Settings {
	return Settings{
		DecimalSeparator: ".",
		Decimals:         2,
	}
}

// NormFor returns the weekly norm of an employee group.
func (s Settings) NormFor(group string) (float64, bool) {
	norm, ok := s.WeeklyNorms[group]
	return norm, ok
}
