package security

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// TOTPSkewSteps is the clock-skew tolerance in 30-second steps on each
	// side of the current step. Tightening it increases false rejects from
	// clock drift; loosening it widens the replay window.
	TOTPSkewSteps = 2

	// BackupCodeCount is how many single-use backup codes enrollment
	// generates.
	BackupCodeCount = 8

	mfaIssuer = "SwiftRide Admin"
)

// GenerateMFASecret generates a random Base32 string (compatible with TOTP secrets).
func GenerateMFASecret() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	// Authenticator apps require Base32, not Base64
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// GetMFAQRCodeURI returns the otpauth URI for QR code generation (compatible
// with Google Authenticator and friends).
func GetMFAQRCodeURI(email, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(mfaIssuer), url.PathEscape(email), secret, url.QueryEscape(mfaIssuer))
}

// VerifyMFACode checks if the provided 6-digit code is valid for the given
// secret, accepting codes up to TOTPSkewSteps steps either side of now.
func VerifyMFACode(code, secret string) bool {
	return VerifyMFACodeAt(code, secret, time.Now())
}

// VerifyMFACodeAt is VerifyMFACode against an explicit instant, for tests.
func VerifyMFACodeAt(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      TOTPSkewSteps,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// GenerateBackupCodes returns BackupCodeCount random single-use codes in the
// form "xxxx-xxxx" (hex).
func GenerateBackupCodes() ([]string, error) {
	codes := make([]string, BackupCodeCount)
	for i := range codes {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		s := hex.EncodeToString(buf)
		codes[i] = s[:4] + "-" + s[4:]
	}
	return codes, nil
}
