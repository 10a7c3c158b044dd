package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"go-mrz-scanner/document/chip"
	"go-mrz-scanner/document/mrz"

	"github.com/golang-jwt/jwt/v4"
)

// ReceiptSigner signs the chip access seed of an accepted scan, so the chip
// reading client can prove which document it was cleared to read.
type ReceiptSigner interface {
	CreateScanReceipt(sessionId string, record *mrz.Record) (receipt string, err error)
}

type ScanReceiptClaims struct {
	jwt.RegisteredClaims
	Format         mrz.Format       `json:"format"`
	DocumentKind   mrz.DocumentKind `json:"document_kind"`
	IssuingCountry string           `json:"issuing_country"`
	AccessSeed     chip.AccessSeed  `json:"access_seed"`
	MrzInformation string           `json:"mrz_information"`
}

const ReceiptValidity = 15 * time.Minute

func NewJwtReceiptSigner(privateKeyPath string, issuerId string) (*JwtReceiptSigner, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	return &JwtReceiptSigner{
		issuerId:   issuerId,
		privateKey: privateKey,
		now:        time.Now,
	}, nil
}

type JwtReceiptSigner struct {
	privateKey *rsa.PrivateKey
	issuerId   string
	now        func() time.Time
}

func (s *JwtReceiptSigner) CreateScanReceipt(sessionId string, record *mrz.Record) (string, error) {
	seed, err := chip.SeedFromRecord(record)
	if err != nil {
		return "", fmt.Errorf("failed to derive access seed: %w", err)
	}

	issuedAt := s.now()
	claims := ScanReceiptClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuerId,
			Subject:   sessionId,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ReceiptValidity)),
		},
		Format:         record.Format,
		DocumentKind:   record.DocumentKind,
		IssuingCountry: record.IssuingCountry,
		AccessSeed:     seed,
		MrzInformation: seed.MrzInformation(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}
