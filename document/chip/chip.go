// Package chip links a scanned MRZ to the chip of the same document: it
// derives the BAC/PACE access seed and cross-checks DG1 read from the chip.
package chip

import (
	"fmt"
	"log/slog"
	"strings"

	"go-mrz-scanner/document/mrz"

	"github.com/gmrtd/gmrtd/document"
)

// AccessSeed holds the only MRZ fields that are handed to the chip reader.
type AccessSeed struct {
	DocumentNumber string `json:"document_number"`
	DateOfBirth    string `json:"date_of_birth"`
	DateOfExpiry   string `json:"date_of_expiry"`
}

// SeedFromRecord extracts the access seed of an acceptable record. The
// fields are taken from the canonical MRZ text, so fillers and unknown date
// parts reach the chip reader unchanged.
func SeedFromRecord(record *mrz.Record) (AccessSeed, error) {
	if record == nil {
		return AccessSeed{}, fmt.Errorf("no MRZ record")
	}
	if !record.Acceptable() {
		return AccessSeed{}, fmt.Errorf("MRZ record is not acceptable: %w", mrz.ErrInvalidCheckDigits)
	}
	number, birth, expiry, err := record.AccessFields()
	if err != nil {
		return AccessSeed{}, fmt.Errorf("failed to read access fields: %w", err)
	}
	return AccessSeed{
		DocumentNumber: number,
		DateOfBirth:    birth,
		DateOfExpiry:   expiry,
	}, nil
}

// MrzInformation is the key seed input of ICAO 9303 part 11: each field
// followed by its check digit. Document numbers shorter than nine
// characters are padded with fillers.
func (s AccessSeed) MrzInformation() string {
	number := s.DocumentNumber
	if len(number) < 9 {
		number += strings.Repeat(string(mrz.Filler), 9-len(number))
	}
	var sb strings.Builder
	for _, field := range []string{number, s.DateOfBirth, s.DateOfExpiry} {
		sb.WriteString(field)
		sb.WriteByte(byte('0' + mrz.ComputeCheckDigit(field)))
	}
	return sb.String()
}

const (
	dg1Tag  = 0x61
	mrzTag1 = 0x5F
	mrzTag2 = 0x1F
)

// EncodeDG1 wraps the canonical MRZ text of a record in a DG1 data group.
func EncodeDG1(record *mrz.Record) ([]byte, error) {
	data := strings.ReplaceAll(record.Raw, "\n", "")
	if len(data) != record.Format.Lines()*record.Format.Columns() {
		return nil, fmt.Errorf("MRZ of %d characters does not fit format %s", len(data), record.Format)
	}

	inner := append([]byte{mrzTag1, mrzTag2, byte(len(data))}, data...)
	return append([]byte{dg1Tag, byte(len(inner))}, inner...), nil
}

// Mismatch names a field that differs between the scanned MRZ and DG1.
type Mismatch struct {
	Field   string `json:"field"`
	Scanned string `json:"scanned"`
	Chip    string `json:"chip"`
}

// MatchDG1 decodes a DG1 data group and compares it with the scanned record.
// An empty result means the chip belongs to the scanned document.
func MatchDG1(record *mrz.Record, dg1 []byte) ([]Mismatch, error) {
	decoded, err := document.NewDG1(dg1)
	if err != nil {
		return nil, fmt.Errorf("failed to decode DG1: %w", err)
	}
	if decoded == nil {
		return nil, fmt.Errorf("DG1 contains no MRZ")
	}
	chipMrz := decoded.Mrz

	number, birth, expiry, err := record.AccessFields()
	if err != nil {
		return nil, fmt.Errorf("failed to read access fields: %w", err)
	}

	pairs := []struct {
		field   string
		scanned string
		chip    string
	}{
		{"document_number", number, chipMrz.DocumentNumber},
		{"date_of_birth", birth, chipMrz.DateOfBirth},
		{"date_of_expiry", expiry, chipMrz.DateOfExpiry},
		{"issuing_country", record.IssuingCountry, chipMrz.IssuingState},
		{"nationality", record.Nationality, chipMrz.Nationality},
		{"surname", record.Surname, chipMrz.NameOfHolder.Primary},
		{"given_names", record.GivenNamesString(), chipMrz.NameOfHolder.Secondary},
	}

	var mismatches []Mismatch
	for _, p := range pairs {
		if normalizeField(p.scanned) != normalizeField(p.chip) {
			mismatches = append(mismatches, Mismatch{Field: p.field, Scanned: p.scanned, Chip: p.chip})
		}
	}
	if len(mismatches) > 0 {
		slog.Info("Scanned MRZ does not match DG1", "mismatches", len(mismatches))
	}
	return mismatches, nil
}

func normalizeField(s string) string {
	s = strings.ReplaceAll(s, string(mrz.Filler), " ")
	return strings.Join(strings.Fields(s), " ")
}
