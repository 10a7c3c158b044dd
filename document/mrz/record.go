package mrz

import (
	"fmt"
	"strings"
)

// Record is the identity data read from an MRZ. The fields shared by all
// formats live on the record itself; format specific fields are in exactly
// one of Passport or TD1, selected by Format.
type Record struct {
	Format         Format       `json:"format"`
	DocumentCode   string       `json:"document_code"`
	DocumentKind   DocumentKind `json:"document_kind"`
	IssuingCountry string       `json:"issuing_country"`
	Surname        string       `json:"surname"`
	GivenNames     []string     `json:"given_names,omitempty"`
	DocumentNumber string       `json:"document_number"`
	Nationality    string       `json:"nationality"`
	DateOfBirth    Date         `json:"date_of_birth"`
	Sex            Sex          `json:"sex"`
	ExpirationDate Date         `json:"expiration_date"`

	ValidDocumentNumber bool `json:"valid_document_number"`
	ValidDateOfBirth    bool `json:"valid_date_of_birth"`
	ValidExpirationDate bool `json:"valid_expiration_date"`
	ValidComposite      bool `json:"valid_composite"`

	Passport *PassportFields `json:"passport,omitempty"`
	TD1      *TD1Fields      `json:"td1,omitempty"`

	// Raw is the canonical MRZ text the record was extracted from.
	Raw string `json:"raw"`
}

// PassportFields are the TD3 specific fields.
type PassportFields struct {
	// PersonalNumber may be used by the issuing country as it desires.
	PersonalNumber      string `json:"personal_number"`
	ValidPersonalNumber bool   `json:"valid_personal_number"`
}

// TD1Fields are the identity card specific fields.
type TD1Fields struct {
	// Optional is at the discretion of the issuing state and may contain an
	// extended document number.
	Optional  string `json:"optional"`
	Optional2 string `json:"optional2"`
}

// Acceptable reports whether the check digits reconcile: either all three
// field checks pass, or the composite check alone does.
func (r *Record) Acceptable() bool {
	return (r.ValidDocumentNumber && r.ValidDateOfBirth && r.ValidExpirationDate) || r.ValidComposite
}

// GivenNamesString joins the given names with spaces.
func (r *Record) GivenNamesString() string {
	return strings.Join(r.GivenNames, " ")
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.GivenNames != nil {
		c.GivenNames = append([]string(nil), r.GivenNames...)
	}
	if r.Passport != nil {
		p := *r.Passport
		c.Passport = &p
	}
	if r.TD1 != nil {
		t := *r.TD1
		c.TD1 = &t
	}
	return &c
}

func (r *Record) String() string {
	return fmt.Sprintf("%s{code=%s, issuingCountry=%s, documentNumber=%s, surname=%s, givenNames=%s, dateOfBirth=%s, sex=%s, expirationDate=%s, nationality=%s}",
		r.Format, r.DocumentCode, r.IssuingCountry, r.DocumentNumber, r.Surname, r.GivenNamesString(),
		r.DateOfBirth, r.Sex, r.ExpirationDate, r.Nationality)
}
