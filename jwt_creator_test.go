package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-mrz-scanner/document/mrz"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

// writeTestKey writes a fresh RSA key pair as PEM files and returns the paths.
func writeTestKey(t *testing.T) (privPath string, pub *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath = filepath.Join(t.TempDir(), "priv.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(block), 0o600))
	return privPath, &key.PublicKey
}

func parseReceipt(t *testing.T, receipt string, pub *rsa.PublicKey) *ScanReceiptClaims {
	t.Helper()
	claims := &ScanReceiptClaims{}
	parsed, err := jwt.ParseWithClaims(receipt, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Header["alg"])
		}
		return pub, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}

func TestCreateScanReceipt(t *testing.T) {
	privPath, pub := writeTestKey(t)
	signer, err := NewJwtReceiptSigner(privPath, "mrz_scanner")
	require.NoError(t, err)

	record, err := mrz.Parse(testTD3Mrz)
	require.NoError(t, err)

	receipt, err := signer.CreateScanReceipt("session-1", record)
	require.NoError(t, err)
	require.NotEmpty(t, receipt)

	claims := parseReceipt(t, receipt, pub)
	require.Equal(t, "mrz_scanner", claims.Issuer)
	require.Equal(t, "session-1", claims.Subject)
	require.Equal(t, mrz.FormatPassport, claims.Format)
	require.Equal(t, mrz.KindPassport, claims.DocumentKind)
	require.Equal(t, "UTO", claims.IssuingCountry)
	require.Equal(t, "L898902C3", claims.AccessSeed.DocumentNumber)
	require.Equal(t, "740812", claims.AccessSeed.DateOfBirth)
	require.Equal(t, "120415", claims.AccessSeed.DateOfExpiry)
	require.Equal(t, "L898902C3674081221204159", claims.MrzInformation)
	require.WithinDuration(t, time.Now().Add(ReceiptValidity), claims.ExpiresAt.Time, time.Minute)
}

func TestCreateScanReceiptExpired(t *testing.T) {
	privPath, pub := writeTestKey(t)
	signer, err := NewJwtReceiptSigner(privPath, "mrz_scanner")
	require.NoError(t, err)
	signer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	record, err := mrz.Parse(testTD3Mrz)
	require.NoError(t, err)
	receipt, err := signer.CreateScanReceipt("session-1", record)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(receipt, &ScanReceiptClaims{}, func(*jwt.Token) (interface{}, error) {
		return pub, nil
	})
	require.Error(t, err)
}

func TestCreateScanReceiptRefusesUnacceptableRecord(t *testing.T) {
	privPath, _ := writeTestKey(t)
	signer, err := NewJwtReceiptSigner(privPath, "mrz_scanner")
	require.NoError(t, err)

	record, err := mrz.Parse(testTD3Mrz)
	require.NoError(t, err)
	record.ValidComposite = false
	record.ValidDateOfBirth = false

	_, err = signer.CreateScanReceipt("session-1", record)
	require.ErrorIs(t, err, mrz.ErrInvalidCheckDigits)
}

func TestNewJwtReceiptSigner_ErrorCases(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		_, err := NewJwtReceiptSigner("./nonexistent.pem", "issuer")
		require.Error(t, err)
	})

	t.Run("invalid PEM format", func(t *testing.T) {
		tmpFile, err := os.CreateTemp("", "invalid-*.pem")
		require.NoError(t, err)
		defer func() { _ = os.Remove(tmpFile.Name()) }()

		_, err = tmpFile.Write([]byte("this is not a valid PEM file"))
		require.NoError(t, err)
		require.NoError(t, tmpFile.Close())

		_, err = NewJwtReceiptSigner(tmpFile.Name(), "issuer")
		require.Error(t, err)
	})
}

func TestCreateScanReceiptWithUnknownBirthDate(t *testing.T) {
	privPath, pub := writeTestKey(t)
	signer, err := NewJwtReceiptSigner(privPath, "mrz_scanner")
	require.NoError(t, err)

	record, err := mrz.Parse(testUnknownBirthMrz)
	require.NoError(t, err)
	require.False(t, record.ValidDateOfBirth)

	receipt, err := signer.CreateScanReceipt("session-1", record)
	require.NoError(t, err)

	claims := parseReceipt(t, receipt, pub)
	require.Equal(t, "7400<<", claims.AccessSeed.DateOfBirth)
	require.Equal(t, "L898902C367400<<11204159", claims.MrzInformation)
}
