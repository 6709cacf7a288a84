package worklog

import (
	"strings"

	"github.com/nao1215/worklog/domain/model"
	"github.com/shopspring/decimal"
)

const maxDisplayDecimals = 6

// MeasureFormatter renders hours for display according to the settings
// decimal preference. It never affects parsing or summation.
type MeasureFormatter struct {
	separator string
	decimals  int32
}

// NewMeasureFormatter builds a formatter from settings. Unknown separators
// fall back to a period and the decimals are limited to 0..6.
func NewMeasureFormatter(settings model.Settings) MeasureFormatter {
	f := MeasureFormatter{separator: ".", decimals: int32(settings.Decimals)}
	if settings.DecimalSeparator == "," {
		f.separator = ","
	}
	f.decimals = max(0, min(f.decimals, maxDisplayDecimals))
	return f
}

// Format renders d with a fixed number of decimals.
func (f MeasureFormatter) Format(d decimal.Decimal) string {
	s := d.StringFixed(f.decimals)
	if f.separator != "." {
		s = strings.Replace(s, ".", f.separator, 1)
	}
	return s
}

// Separator returns the decimal separator in use.
func (f MeasureFormatter) Separator() string {
	return f.separator
}
