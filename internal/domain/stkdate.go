package domain

import (
	"fmt"
	"time"
)

// STKDateLayout is the application's UTCG date format, e.g. "01 Jul 2026 12:00:00.000000".
const STKDateLayout = "02 Jan 2006 15:04:05.000000"

// stkParseLayout accepts one-digit days and any number of fractional digits.
const stkParseLayout = "2 Jan 2006 15:04:05"

func FormatSTKTime(t time.Time) string {
	return t.UTC().Format(STKDateLayout)
}

func ParseSTKTime(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(stkParseLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse STK time %q: %w", raw, err)
	}

	return parsed, nil
}
