package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document number prefixes
const (
	PrefixOrder   = "ORD"
	PrefixQuote   = "QUO"
	PrefixJob     = "JOB"
	PrefixInvoice = "INV"
)

// DayStamp renders the date part of a document number
func DayStamp(day time.Time) string {
	return day.Format("20060102")
}

// NumberPattern returns the SQL LIKE pattern matching every number of a prefix on a day
func NumberPattern(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-%%", prefix, DayStamp(day))
}

// FormatNumber builds PREFIX-YYYYMMDD-NNN with a suffix of at least three digits
func FormatNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, DayStamp(day), seq)
}

// ParseSequence extracts the numeric suffix of a document number for the given prefix and day.
func ParseSequence(number, prefix string, day time.Time) (int, bool) {
	head := prefix + "-" + DayStamp(day) + "-"
	if !strings.HasPrefix(number, head) {
		return 0, false
	}
	seq, err := strconv.Atoi(number[len(head):])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// NextSequence returns one past the largest suffix among numbers, or 1 when none match.
func NextSequence(numbers []string, prefix string, day time.Time) int {
	max := 0
	for _, n := range numbers {
		if seq, ok := ParseSequence(n, prefix, day); ok && seq > max {
			max = seq
		}
	}
	return max + 1
}
