package mrz

import "strings"

// Digits the OCR reader emits for look-alike letters in alphabetic fields.
var digitRepairs = strings.NewReplacer(
	"0", "O",
	"1", "I",
	"8", "B",
	"5", "S",
	"2", "Z",
	"3", "J",
)

// RepairDigits replaces digits that are illegal in an alphabetic MRZ field
// with the letter they are usually misread for.
func RepairDigits(s string) string {
	return digitRepairs.Replace(s)
}

// Repaired returns a copy of the record with the alphabetic fields repaired.
// Check digits are not recomputed.
func (r *Record) Repaired() *Record {
	c := r.Clone()
	c.Surname = RepairDigits(c.Surname)
	c.IssuingCountry = RepairDigits(c.IssuingCountry)
	c.Nationality = RepairDigits(c.Nationality)
	for i, name := range c.GivenNames {
		c.GivenNames[i] = RepairDigits(name)
	}
	return c
}
