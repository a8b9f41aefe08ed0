package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnparseableDate marks a date phrase outside the "day [de] month [de year]"
// grammar. The extractor always converts it into a nil date; it never escapes
// an extraction call.
var ErrUnparseableDate = errors.New("unparseable date phrase")

var spanishMonths = map[string]int{
	"enero":      1,
	"febrero":    2,
	"marzo":      3,
	"abril":      4,
	"mayo":       5,
	"junio":      6,
	"julio":      7,
	"agosto":     8,
	"septiembre": 9,
	"setiembre":  9,
	"octubre":    10,
	"noviembre":  11,
	"diciembre":  12,
}

// NormalizeDate converts a Spanish date phrase such as "27 de noviembre" or
// "27 de noviembre de 2024" into a sortable YYYY-MM-DD string. Phrases without
// a year get defaultYear, the tournament season being extracted.
func NormalizeDate(phrase string, defaultYear int) (string, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(phrase)))

	parts := make([]string, 0, 3)
	for _, field := range fields {
		if field == "de" || field == "del" {
			continue
		}
		parts = append(parts, strings.Trim(field, ".,"))
	}

	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrUnparseableDate, phrase)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: bad day in %q", ErrUnparseableDate, phrase)
	}

	month, ok := spanishMonths[parts[1]]
	if !ok {
		return "", fmt.Errorf("%w: unknown month in %q", ErrUnparseableDate, phrase)
	}

	year := defaultYear
	if len(parts) == 3 {
		year, err = strconv.Atoi(parts[2])
		if err != nil || year < 1900 || year > 2999 {
			return "", fmt.Errorf("%w: bad year in %q", ErrUnparseableDate, phrase)
		}
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}
