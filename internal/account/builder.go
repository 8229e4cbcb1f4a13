package account

import (
	"os"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/mnemonic"
	"github.com/dmitrijs2005/walletkeeper/internal/totp"
	"github.com/dmitrijs2005/walletkeeper/internal/wallet"
)

// Sealer writes secrets to disk under a passphrase.
type Sealer interface {
	Seal(dir string, secret, passphrase []byte) (string, error)
	Path(dir, id string) string
}

// Totp is a staged second factor.
type Totp struct {
	Secret totp.Secret
	URL    string
}

func (t *Totp) wipe() {
	if t != nil {
		t.Secret.Wipe()
	}
}

// Built describes the files written by a successful Build.
type Built struct {
	Address    string
	KeystoreID string
	TotpID     string
}

// Builder stages the secrets of a new primary account. It is not safe for
// concurrent use; the owner serializes access.
type Builder struct {
	gen    *mnemonic.Generator
	sealer Sealer
	engine *totp.Engine
	now    func() time.Time

	passphrase []byte
	mnemonic   []byte
	totp       *Totp

	done     bool
	finished bool
}

// NewBuilder returns an empty Builder.
func NewBuilder(gen *mnemonic.Generator, sealer Sealer, engine *totp.Engine) *Builder {
	return &Builder{
		gen:    gen,
		sealer: sealer,
		engine: engine,
		now:    time.Now,
	}
}

// SetClock replaces the time source used by Verify.
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

func (b *Builder) usable() error {
	switch {
	case b.finished:
		return common.ErrSignupNotStarted
	case b.done:
		return common.ErrAlreadyBuilt
	}
	return nil
}

// Passphrase generates and stages a 12-word passphrase, replacing any
// previous one.
func (b *Builder) Passphrase() (string, error) {
	if err := b.usable(); err != nil {
		return "", err
	}
	phrase, err := b.gen.Generate(mnemonic.Short)
	if err != nil {
		return "", err
	}
	common.WipeByteArray(b.passphrase)
	b.passphrase = []byte(phrase)
	return phrase, nil
}

// Mnemonic generates and stages a 24-word recovery mnemonic.
func (b *Builder) Mnemonic() (string, error) {
	if err := b.usable(); err != nil {
		return "", err
	}
	phrase, err := b.gen.Generate(mnemonic.Long)
	if err != nil {
		return "", err
	}
	common.WipeByteArray(b.mnemonic)
	b.mnemonic = []byte(phrase)
	return phrase, nil
}

// Totp generates and stages a TOTP secret and returns its provisioning URL.
func (b *Builder) Totp() (string, error) {
	if err := b.usable(); err != nil {
		return "", err
	}
	secret := totp.NewSecret()
	url, err := b.engine.ProvisioningURL(secret)
	if err != nil {
		secret.Wipe()
		return "", err
	}
	b.totp.wipe()
	b.totp = &Totp{Secret: secret, URL: url}
	return url, nil
}

// Verify checks code against the staged TOTP secret at the current time.
// It never changes the builder.
func (b *Builder) Verify(code string) (bool, error) {
	if err := b.usable(); err != nil {
		return false, err
	}
	if b.totp == nil {
		return false, common.IncompleteBuilder("totp")
	}
	return b.engine.Check(b.totp.Secret, code, b.now()), nil
}

// Build derives the account key from the staged mnemonic, seals the TOTP
// secret into totpDir and the private key into keystoreDir, both under the
// staged passphrase. On success the staged secrets are wiped and the builder
// is spent.
func (b *Builder) Build(keystoreDir, totpDir string) (*Built, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	switch {
	case b.passphrase == nil:
		return nil, common.IncompleteBuilder("passphrase")
	case b.mnemonic == nil:
		return nil, common.IncompleteBuilder("mnemonic")
	case b.totp == nil:
		return nil, common.IncompleteBuilder("totp")
	}

	key, err := wallet.Derive(b.gen, b.mnemonic)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	totpID, err := b.sealer.Seal(totpDir, b.totp.Secret, b.passphrase)
	if err != nil {
		return nil, err
	}

	keyID, err := b.sealer.Seal(keystoreDir, key.Bytes(), b.passphrase)
	if err != nil {
		_ = os.Remove(b.sealer.Path(totpDir, totpID))
		return nil, err
	}

	b.done = true
	b.wipe()

	return &Built{
		Address:    key.Address(),
		KeystoreID: keyID,
		TotpID:     totpID,
	}, nil
}

// Finish zeroes every staged secret. It is idempotent.
func (b *Builder) Finish() {
	b.wipe()
	b.finished = true
}

func (b *Builder) wipe() {
	common.WipeByteArray(b.passphrase)
	common.WipeByteArray(b.mnemonic)
	b.totp.wipe()
}
