// Package codes holds the persisted human-readable identifier format:
// PREFIX-YYYYMMDD-NNNNNN with the date in UTC and a 6-digit sequence.
package codes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixBooking = "BOOK"
	PrefixReview  = "REVIEW"

	dateLayout = "20060102"
	seqDigits  = 6
	MaxSeq     = 999999
)

var ErrMalformed = errors.New("malformed code")

// DayPrefix returns "PREFIX-YYYYMMDD-" for the UTC day of t.
func DayPrefix(prefix string, t time.Time) string {
	return prefix + "-" + t.UTC().Format(dateLayout) + "-"
}

func Format(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", DayPrefix(prefix, t), seqDigits, seq)
}

// ParseSeq extracts the trailing sequence of a code that starts with dayPrefix.
func ParseSeq(code, dayPrefix string) (int64, error) {
	if !strings.HasPrefix(code, dayPrefix) {
		return 0, ErrMalformed
	}
	tail := code[len(dayPrefix):]
	if len(tail) != seqDigits {
		return 0, ErrMalformed
	}
	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrMalformed
	}
	return n, nil
}

// Valid reports whether code matches PREFIX-YYYYMMDD-NNNNNN exactly.
func Valid(prefix, code string) bool {
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] != prefix {
		return false
	}
	if _, err := time.Parse(dateLayout, parts[1]); err != nil || len(parts[1]) != len(dateLayout) {
		return false
	}
	if len(parts[2]) != seqDigits {
		return false
	}
	for _, r := range parts[2] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
