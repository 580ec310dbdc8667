package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDateRe = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

func daysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NormalizeDate accepts harvest dates in DD-MM-YYYY or YYYY-MM-DD form and
// returns the ISO date-only form YYYY-MM-DD. Day and month ranges are
// validated strictly, so NormalizeDate(NormalizeDate(x)) == NormalizeDate(x)
// for any accepted x.
func NormalizeDate(input string) (string, error) {
	if m := isoDateRe.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return "", fmt.Errorf("invalid month in ISO date: %s", input)
		}
		if day < 1 || day > daysInMonth(year, month) {
			return "", fmt.Errorf("invalid day in ISO date: %s", input)
		}
		return input, nil
	}

	if m := dmyDateRe.FindStringSubmatch(input); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			// a two-digit "month" above 12 usually means MM-DD-YYYY input
			if day >= 1 && day <= 12 {
				return "", fmt.Errorf("invalid date format (looks like MM-DD-YYYY): %s. Expected DD-MM-YYYY or YYYY-MM-DD", input)
			}
			return "", fmt.Errorf("invalid month in DMY date: %s. Expected DD-MM-YYYY or YYYY-MM-DD", input)
		}
		if day < 1 || day > daysInMonth(year, month) {
			return "", fmt.Errorf("invalid day in DMY date: %s. Expected DD-MM-YYYY or YYYY-MM-DD", input)
		}
		return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1]), nil
	}

	return "", fmt.Errorf("invalid date format: %s. Expected DD-MM-YYYY or YYYY-MM-DD", input)
}
