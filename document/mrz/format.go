package mrz

import "log/slog"

// Format is the physical MRZ layout of a document.
type Format string

const (
	// FormatPassport is the TD3 machine readable passport: 2 lines of 44 characters.
	FormatPassport Format = "PASSPORT"
	// FormatTD1 is the identity card layout: 3 lines of 30 characters.
	FormatTD1 Format = "MRTD_TD1"
)

func (f Format) Lines() int {
	switch f {
	case FormatPassport:
		return 2
	case FormatTD1:
		return 3
	}
	return 0
}

func (f Format) Columns() int {
	switch f {
	case FormatPassport:
		return 44
	case FormatTD1:
		return 30
	}
	return 0
}

// DocumentKind classifies the two-character document code.
type DocumentKind string

const (
	KindPassport    DocumentKind = "PASSPORT"
	KindTypeI       DocumentKind = "TYPE_I"
	KindTypeA       DocumentKind = "TYPE_A"
	KindCrewMember  DocumentKind = "CREW_MEMBER"
	KindTypeC       DocumentKind = "TYPE_C"
	KindTypeV       DocumentKind = "TYPE_V"
	KindMigrant     DocumentKind = "MIGRANT"
	KindUnsupported DocumentKind = "UNSUPPORTED"
)

// ParseDocumentKind maps the raw document code (first two MRZ characters)
// to its kind. Two-letter codes take precedence over the first letter.
// IV is not allowed by ICAO 9303 and yields KindUnsupported.
func ParseDocumentKind(code string) DocumentKind {
	if len(code) < 2 {
		code = (code + "<<")[:2]
	}
	switch code[:2] {
	case "IV":
		return KindUnsupported
	case "AC":
		return KindCrewMember
	case "ME", "TD":
		return KindMigrant
	case "IP":
		return KindPassport
	}

	switch code[0] {
	case 'T', 'P':
		return KindPassport
	case 'A':
		return KindTypeA
	case 'C':
		return KindTypeC
	case 'V':
		return KindTypeV
	case 'I':
		return KindTypeI
	case 'R':
		// Swedish '51 Convention travel document
		return KindMigrant
	}
	return KindUnsupported
}

// Sex as printed in the MRZ.
type Sex string

const (
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
	SexUnspecified Sex = "X"
)

func parseSex(c byte) Sex {
	switch c {
	case 'M':
		return SexMale
	case 'F':
		return SexFemale
	case '<', 'X':
		return SexUnspecified
	}
	slog.Debug("Unexpected MRZ sex character, treating as unspecified", "char", string(c))
	return SexUnspecified
}
