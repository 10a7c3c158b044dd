package document

import (
	"fmt"
	"time"
)

const yymmdd = "060102"

// expiryWindow is how far in the past an expiry date may lie before it is
// read as belonging to the next century.
const expiryWindow = 30

func parseYYMMDD(dateStr string) (time.Time, error) {
	if len(dateStr) != 6 {
		return time.Time{}, fmt.Errorf("invalid date format: %s", dateStr)
	}
	parsedDate, err := time.Parse(yymmdd, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing date: %w", err)
	}
	return parsedDate, nil
}

// ResolveExpiryDate picks the century of a YYMMDD expiry date relative to now.
func ResolveExpiryDate(dateStr string, now time.Time) (time.Time, error) {
	parsedDate, err := parseYYMMDD(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	if parsedDate.Before(now.AddDate(-expiryWindow, 0, 0)) {
		parsedDate = parsedDate.AddDate(100, 0, 0)
	}
	return parsedDate, nil
}

// ResolveDateOfBirth picks the century of a YYMMDD birth date relative to
// now. A birth date can never lie in the future.
func ResolveDateOfBirth(dateStr string, now time.Time) (time.Time, error) {
	parsedDate, err := parseYYMMDD(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	if parsedDate.After(now) {
		parsedDate = parsedDate.AddDate(-100, 0, 0)
	}
	return parsedDate, nil
}

func ParseExpiryDate(dateStr string) (time.Time, error) {
	return ResolveExpiryDate(dateStr, time.Now())
}

func ParseDateOfBirth(dateStr string) (time.Time, error) {
	return ResolveDateOfBirth(dateStr, time.Now())
}
