package mrz

import (
	"fmt"
	"strconv"
	"time"

	mrtdDoc "go-mrz-scanner/document"
)

// Date is an MRZ date with a two-digit year. A component whose digits could
// not be read is -1.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// parseDate reads a YYMMDD value. Non-numeric components become -1 and make
// the date invalid instead of failing the parse.
func parseDate(s string) Date {
	if len(s) != 6 {
		return Date{Year: -1, Month: -1, Day: -1}
	}
	return Date{
		Year:  parseTwoDigits(s[0:2]),
		Month: parseTwoDigits(s[2:4]),
		Day:   parseTwoDigits(s[4:6]),
	}
}

func parseTwoDigits(s string) int {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return -1
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Valid reports whether the date exists on the calendar. 29 February is
// accepted for two-digit years divisible by 4.
func (d Date) Valid() bool {
	if d.Year < 0 || d.Year > 99 {
		return false
	}
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	if d.Day < 1 || d.Day > daysInMonth[d.Month] {
		return false
	}
	if d.Month == 2 && d.Day == 29 && d.Year%4 != 0 {
		return false
	}
	return true
}

// YYMMDD formats the date the way it is printed in the MRZ.
func (d Date) YYMMDD() string {
	return fmt.Sprintf("%02d%02d%02d", d.Year, d.Month, d.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("{%d/%d/%d}", d.Day, d.Month, d.Year)
}

// BirthTime resolves the century for a date of birth.
func (d Date) BirthTime() (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, fmt.Errorf("invalid date of birth: %s", d)
	}
	return mrtdDoc.ParseDateOfBirth(d.YYMMDD())
}

// ExpiryTime resolves the century for a date of expiry.
func (d Date) ExpiryTime() (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, fmt.Errorf("invalid date of expiry: %s", d)
	}
	return mrtdDoc.ParseExpiryDate(d.YYMMDD())
}
