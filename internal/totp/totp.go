// Package totp implements the time-based one-time password second factor:
// secret generation, authenticator enrollment URLs and code checks.
//
// Parameters are fixed for authenticator compatibility: HMAC-SHA1, 6 digits
// and a 30 second step.
package totp

import (
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// SecretSize is the number of random bytes behind a secret.
	SecretSize = 32
	// Period is the time step.
	Period = 30 * time.Second
	// Digits is the code length.
	Digits = 6

	DefaultIssuer  = "walletkeeper.io"
	DefaultAccount = "walletkeeper"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is a shared TOTP secret: 256 random bits, hex encoded. The ASCII
// bytes of the hex form are the HMAC key.
type Secret []byte

// NewSecret returns a fresh secret from the system CSPRNG.
func NewSecret() Secret {
	raw := common.GenerateRandByteArray(SecretSize)
	defer common.WipeByteArray(raw)

	s := make(Secret, hex.EncodedLen(len(raw)))
	hex.Encode(s, raw)
	return s
}

// Wipe zeroes the secret in place.
func (s Secret) Wipe() {
	common.WipeByteArray(s)
}

func (s Secret) encoded() string {
	return b32.EncodeToString(s)
}

// Engine checks codes and builds enrollment URLs with a fixed issuer and
// account label.
type Engine struct {
	Issuer  string
	Account string
	// Skew is the number of adjacent steps accepted on either side of the
	// current one. Zero means exact-window checks.
	Skew uint
}

// NewEngine returns an Engine with the default labels and no skew.
func NewEngine() *Engine {
	return &Engine{Issuer: DefaultIssuer, Account: DefaultAccount}
}

func (e *Engine) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(Period / time.Second),
		Skew:      e.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// ProvisioningURL returns the otpauth:// URL for enrolling secret.
func (e *Engine) ProvisioningURL(secret Secret) (string, error) {
	return ProvisioningURL(secret, e.Account, e.Issuer)
}

// Code returns the code for the step containing t.
func (e *Engine) Code(secret Secret, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret.encoded(), t, e.opts())
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "generate totp code", err)
	}
	return code, nil
}

// Check reports whether code matches secret at now. Malformed codes never
// match.
func (e *Engine) Check(secret Secret, code string, now time.Time) bool {
	if len(code) != Digits {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret.encoded(), now.UTC(), e.opts())
	return err == nil && ok
}

// ProvisioningURL builds the enrollment URL for secret.
func ProvisioningURL(secret Secret, label, issuer string) (string, error) {
	if len(secret) == 0 {
		return "", common.Errorf(common.KindCryptoError, "empty totp secret")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: label,
		Period:      uint(Period / time.Second),
		Secret:      secret,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", common.NewError(common.KindCryptoError, fmt.Sprintf("provisioning url for %s", label), err)
	}
	return key.URL(), nil
}

// Code returns the code for the step containing t with exact-window
// parameters.
func Code(secret Secret, t time.Time) (string, error) {
	return (&Engine{}).Code(secret, t)
}

// Check compares code against the step containing now with no leeway.
func Check(secret Secret, code string, now time.Time) bool {
	return (&Engine{}).Check(secret, code, now)
}
