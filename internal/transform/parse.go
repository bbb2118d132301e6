package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func parseID(s string) (int64, bool) {
	v, err := strconv.ParseInt(trim(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int, bool) {
	s = trim(s)
	if s == "" {
		return 0, false
	}
	// Exports sometimes render integers as "42.0".
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(v), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int(f), true
	}
	return 0, false
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = trim(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseDayFirstDate(s string) (time.Time, bool) {
	s = trim(s)
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
