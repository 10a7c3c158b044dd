package mrz

import (
	"fmt"
	"log/slog"
	"strings"
)

// layout is the offset table of one MRZ format.
type layout struct {
	name                Range
	documentNumber      Range
	documentNumberCheck Range
	dateOfBirth         Range
	dateOfBirthCheck    Range
	sex                 Range
	expirationDate      Range
	expirationCheck     Range
	nationality         Range
	composite           []Range
	compositeCheck      Range
}

var passportLayout = layout{
	name:                Range{5, 44, 0},
	documentNumber:      Range{0, 9, 1},
	documentNumberCheck: at(9, 1),
	nationality:         Range{10, 13, 1},
	dateOfBirth:         Range{13, 19, 1},
	dateOfBirthCheck:    at(19, 1),
	sex:                 at(20, 1),
	expirationDate:      Range{21, 27, 1},
	expirationCheck:     at(27, 1),
	composite:           []Range{{0, 10, 1}, {13, 20, 1}, {21, 43, 1}},
	compositeCheck:      at(43, 1),
}

var (
	personalNumber      = Range{28, 42, 1}
	personalNumberCheck = at(42, 1)
)

var td1Layout = layout{
	documentNumber:      Range{5, 14, 0},
	documentNumberCheck: at(14, 0),
	dateOfBirth:         Range{0, 6, 1},
	dateOfBirthCheck:    at(6, 1),
	sex:                 at(7, 1),
	expirationDate:      Range{8, 14, 1},
	expirationCheck:     at(14, 1),
	nationality:         Range{15, 18, 1},
	composite:           []Range{{5, 30, 0}, {0, 7, 1}, {8, 15, 1}, {18, 29, 1}},
	compositeCheck:      at(29, 1),
	name:                Range{0, 30, 2},
}

var (
	td1Optional  = Range{15, 30, 0}
	td1Optional2 = Range{18, 29, 1}
)

var (
	documentCode   = Range{0, 2, 0}
	issuingCountry = Range{2, 5, 0}
)

// parser extracts fields from canonical MRZ text by position.
type parser struct {
	mrz    string
	lines  []string
	format Format
}

func newParser(format Format, mrz string) (*parser, error) {
	p := &parser{
		mrz:    mrz,
		lines:  strings.Split(mrz, "\n"),
		format: format,
	}
	if len(p.lines) < format.Lines() {
		return nil, newParseError(ErrTruncatedRecord, mrz, &Range{0, format.Columns(), len(p.lines)})
	}
	for i := 0; i < format.Lines(); i++ {
		if len(p.lines[i]) < format.Columns() {
			return nil, newParseError(ErrTruncatedRecord, mrz, &Range{len(p.lines[i]), format.Columns(), i})
		}
	}
	return p, nil
}

// rawValue concatenates the text of the given ranges. Callers guarantee the
// ranges are in bounds.
func (p *parser) rawValue(ranges ...Range) string {
	var sb strings.Builder
	for _, r := range ranges {
		sb.WriteString(p.lines[r.Line][r.Start:r.End])
	}
	return sb.String()
}

func (p *parser) char(r Range) byte {
	return p.lines[r.Line][r.Start]
}

// parseString drops trailing fillers, turns "<<" into ", " and the
// remaining fillers into spaces.
func (p *parser) parseString(r Range) string {
	s := strings.TrimRight(p.rawValue(r), string(Filler))
	s = strings.ReplaceAll(s, "<<", ", ")
	return strings.ReplaceAll(s, string(Filler), " ")
}

func (p *parser) checkDigit(check Range, fieldName string, ranges ...Range) bool {
	value := p.rawValue(ranges...)
	stored := p.char(check)
	if !VerifyCheckDigit(value, stored) {
		slog.Debug("Check digit verification failed",
			"field", fieldName,
			"expected", ComputeCheckDigit(value),
			"got", string(stored))
		return false
	}
	return true
}

func layoutFor(format Format) layout {
	if format == FormatTD1 {
		return td1Layout
	}
	return passportLayout
}

func (p *parser) parseRecord() *Record {
	l := layoutFor(p.format)

	record := &Record{
		Format:         p.format,
		DocumentCode:   p.parseString(documentCode),
		DocumentKind:   ParseDocumentKind(p.rawValue(documentCode)),
		IssuingCountry: p.parseString(issuingCountry),
		DocumentNumber: p.parseString(l.documentNumber),
		Nationality:    p.parseString(l.nationality),
		DateOfBirth:    parseDate(p.rawValue(l.dateOfBirth)),
		Sex:            parseSex(p.char(l.sex)),
		ExpirationDate: parseDate(p.rawValue(l.expirationDate)),
		Raw:            p.mrz,
	}
	record.Surname, record.GivenNames = SplitName(p.rawValue(l.name))

	record.ValidDocumentNumber = p.checkDigit(l.documentNumberCheck, "document number", l.documentNumber)
	record.ValidDateOfBirth = p.checkDigit(l.dateOfBirthCheck, "date of birth", l.dateOfBirth) &&
		record.DateOfBirth.Valid()
	record.ValidExpirationDate = p.checkDigit(l.expirationCheck, "expiration date", l.expirationDate) &&
		record.ExpirationDate.Valid()
	record.ValidComposite = p.checkDigit(l.compositeCheck, "composite", l.composite...)

	switch p.format {
	case FormatPassport:
		record.Passport = &PassportFields{
			PersonalNumber:      p.parseString(personalNumber),
			ValidPersonalNumber: p.checkDigit(personalNumberCheck, "personal number", personalNumber),
		}
	case FormatTD1:
		record.TD1 = &TD1Fields{
			Optional:  p.parseString(td1Optional),
			Optional2: p.parseString(td1Optional2),
		}
	}
	return record
}

// Parse cleans raw OCR text and extracts a record from it. The returned
// record may carry failing validity flags; see Record.Acceptable.
func Parse(raw string) (*Record, error) {
	format, text, err := clean(raw)
	if err != nil {
		return nil, err
	}

	p, err := newParser(format, text)
	if err != nil {
		return nil, err
	}
	return p.parseRecord(), nil
}

// AccessFields returns the document number, date of birth and expiration
// date exactly as printed in the MRZ, fillers included.
func (r *Record) AccessFields() (documentNumber, dateOfBirth, expirationDate string, err error) {
	if r.Format.Lines() == 0 {
		return "", "", "", fmt.Errorf("unknown MRZ format %q", r.Format)
	}
	p, err := newParser(r.Format, r.Raw)
	if err != nil {
		return "", "", "", err
	}
	l := layoutFor(r.Format)
	return p.rawValue(l.documentNumber), p.rawValue(l.dateOfBirth), p.rawValue(l.expirationDate), nil
}
