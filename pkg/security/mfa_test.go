package security

import (
	"encoding/base32"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMFASecret(t *testing.T) {
	secret, err := GenerateMFASecret()
	require.NoError(t, err)

	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, decoded, 20)

	second, err := GenerateMFASecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, second)
}

func TestGetMFAQRCodeURI(t *testing.T) {
	uri := GetMFAQRCodeURI("ops@swiftride.test", "JBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "issuer=")
}

func TestVerifyMFACodeWithinSkewWindow(t *testing.T) {
	secret, err := GenerateMFASecret()
	require.NoError(t, err)

	now := time.Now()

	// A code generated 45 seconds ago sits within the ±2-step window.
	code, err := totp.GenerateCode(secret, now.Add(-45*time.Second))
	require.NoError(t, err)
	assert.True(t, VerifyMFACodeAt(code, secret, now))

	// A code from 5 minutes ago is 10 steps stale and must be rejected.
	stale, err := totp.GenerateCode(secret, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, VerifyMFACodeAt(stale, secret, now))
}

func TestVerifyMFACodeRejectsMalformedInput(t *testing.T) {
	secret, err := GenerateMFASecret()
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		assert.False(t, VerifyMFACodeAt(code, secret, time.Now()), "code %q", code)
	}
}

func TestGenerateBackupCodes(t *testing.T) {
	codes, err := GenerateBackupCodes()
	require.NoError(t, err)
	require.Len(t, codes, BackupCodeCount)

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.Regexp(t, `^[0-9a-f]{4}-[0-9a-f]{4}$`, code)
		assert.False(t, seen[code], "duplicate backup code %q", code)
		seen[code] = true
	}
}
