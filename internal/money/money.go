// Package money renders and parses amounts at the display boundary.
//
// Values are kept as float64 with full precision everywhere else; rounding to
// two decimals only happens here, when a figure is shown.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned when an input string is not a number.
var ErrInvalidAmount = errors.New("invalid amount")

// DefaultCurrency is used when no currency is configured or the code is unknown.
const DefaultCurrency = "USD"

// Formatter renders amounts as locale-aware currency strings.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
// Unknown codes fall back to USD and unknown locales to English.
func NewFormatter(code, locale string) Formatter {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Formatter{unit: unit, printer: message.NewPrinter(tag)}
}

// Code returns the ISO code of the formatter's currency.
func (f Formatter) Code() string {
	return f.unit.String()
}

// Format renders v with the currency symbol, rounded to the currency's
// standard scale.
func (f Formatter) Format(v float64) string {
	if f.printer == nil {
		return Plain(v)
	}
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}

// Plain renders v the way the expense list shows it: a dollar sign and two
// decimals.
func Plain(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Parse reads a user-typed amount. It accepts an optional sign, a currency
// symbol or ISO code before or after the number, thousands separators and
// either a dot or a comma as the decimal separator. Anything else inside the
// number is an error. An empty string is zero.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	invalid := fmt.Errorf("%w: %q", ErrInvalidAmount, s)

	body, ok := stripAffixes(s)
	if !ok {
		return 0, invalid
	}
	sign := ""
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		sign = body[:1]
		if body, ok = stripAffixes(body[1:]); !ok {
			return 0, invalid
		}
	}

	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return 0, invalid
		}
	}

	n := normalizeSeparators(body)
	if n == "" || n == "." {
		return 0, invalid
	}

	v, err := strconv.ParseFloat(sign+n, 64)
	if err != nil {
		return 0, invalid
	}
	return v, nil
}

// stripAffixes removes currency symbols, ISO codes and spaces from both ends
// of s. A letter run that is not a known ISO 4217 code makes s invalid.
func stripAffixes(s string) (string, bool) {
head:
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		r, size := utf8.DecodeRuneInString(s)
		switch {
		case size == 0:
			return s, true
		case unicode.Is(unicode.Sc, r):
			s = s[size:]
			continue
		case unicode.IsLetter(r):
			end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
			if end < 0 {
				end = len(s)
			}
			if !isCurrencyCode(s[:end]) {
				return s, false
			}
			s = s[end:]
			continue
		}
		break head
	}
	for {
		s = strings.TrimRightFunc(s, unicode.IsSpace)
		r, size := utf8.DecodeLastRuneInString(s)
		switch {
		case size == 0:
			return s, true
		case unicode.Is(unicode.Sc, r):
			s = s[:len(s)-size]
			continue
		case unicode.IsLetter(r):
			start := strings.LastIndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) + 1
			if !isCurrencyCode(s[start:]) {
				return s, false
			}
			s = s[:start]
			continue
		}
		return s, true
	}
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	_, err := currency.ParseISO(strings.ToUpper(s))
	return err == nil
}

// normalizeSeparators rewrites s so the decimal separator is a dot and
// thousands separators are gone. When both separators appear, the last one
// is the decimal separator. A lone comma followed by exactly three digits is
// read as a thousands separator.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
