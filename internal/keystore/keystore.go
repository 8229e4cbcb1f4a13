package keystore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/filex"
	"github.com/google/uuid"
)

const (
	version    = 1
	cipherName = "aes-256-gcm"
	kdfName    = "argon2id"
)

type kdfParamsJSON struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory"`
	Threads   uint8  `json:"threads"`
	Salt      string `json:"salt"`
}

type cryptoJSON struct {
	Cipher     string        `json:"cipher"`
	Ciphertext string        `json:"ciphertext"`
	Nonce      string        `json:"nonce"`
	KDF        string        `json:"kdf"`
	KDFParams  kdfParamsJSON `json:"kdfparams"`
}

type fileJSON struct {
	ID      string     `json:"id"`
	Version int        `json:"version"`
	Crypto  cryptoJSON `json:"crypto"`
}

// Sealer encrypts secrets into a directory and decrypts them back.
// It holds no per-call state and is safe for concurrent use.
type Sealer struct {
	params cryptox.KDFParams
}

// NewSealer returns a Sealer deriving keys with params.
func NewSealer(params cryptox.KDFParams) (*Sealer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Sealer{params: params}, nil
}

// Path returns the file that holds identifier inside dir.
func (s *Sealer) Path(dir, id string) string {
	return filepath.Join(dir, id)
}

// Seal encrypts secret under passphrase, writes it to dir as a file named by
// a new identifier and returns that identifier.
func (s *Sealer) Seal(dir string, secret, passphrase []byte) (string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return "", common.NewError(common.KindIoError, "keystore directory", err)
	}
	if !fi.IsDir() {
		return "", common.Errorf(common.KindIoError, "keystore directory %s is not a directory", dir)
	}

	id := uuid.NewString()

	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey(passphrase, salt, s.params)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.Encrypt(secret, key, []byte(id))
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "encrypt secret", err)
	}

	doc := fileJSON{
		ID:      id,
		Version: version,
		Crypto: cryptoJSON{
			Cipher:     cipherName,
			Ciphertext: hex.EncodeToString(ciphertext),
			Nonce:      hex.EncodeToString(nonce),
			KDF:        kdfName,
			KDFParams: kdfParamsJSON{
				Time:      s.params.Time,
				MemoryKiB: s.params.MemoryKiB,
				Threads:   s.params.Threads,
				Salt:      hex.EncodeToString(salt),
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "encode keystore file", err)
	}

	if err := filex.WriteFileAtomic(s.Path(dir, id), data, filex.FilePerm); err != nil {
		return "", common.NewError(common.KindIoError, "write keystore file", err)
	}
	return id, nil
}

// Unseal reads identifier from dir and decrypts it with passphrase.
// The caller owns the returned slice and must wipe it.
func (s *Sealer) Unseal(dir, id string, passphrase []byte) ([]byte, error) {
	// Identifiers are UUIDs; anything else could escape dir.
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.Errorf(common.KindNotFound, "keystore entry %q not found", id)
	}

	data, err := os.ReadFile(s.Path(dir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.Errorf(common.KindNotFound, "keystore entry %s not found", id)
		}
		return nil, common.NewError(common.KindIoError, "read keystore file", err)
	}

	var doc fileJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, common.NewError(common.KindCryptoError, "decode keystore file", err)
	}
	if err := doc.check(id); err != nil {
		return nil, common.NewError(common.KindCryptoError, "unsupported keystore file", err)
	}

	salt, err1 := hex.DecodeString(doc.Crypto.KDFParams.Salt)
	nonce, err2 := hex.DecodeString(doc.Crypto.Nonce)
	ciphertext, err3 := hex.DecodeString(doc.Crypto.Ciphertext)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, common.NewError(common.KindCryptoError, "decode keystore fields", err)
	}

	params := cryptox.KDFParams{
		Time:      doc.Crypto.KDFParams.Time,
		MemoryKiB: doc.Crypto.KDFParams.MemoryKiB,
		Threads:   doc.Crypto.KDFParams.Threads,
	}
	if err := params.Validate(); err != nil {
		return nil, common.NewError(common.KindCryptoError, "keystore kdf params", err)
	}

	key := cryptox.DeriveKey(passphrase, salt, params)
	defer common.WipeByteArray(key)

	secret, err := cryptox.Decrypt(ciphertext, nonce, key, []byte(id))
	if err != nil {
		if errors.Is(err, cryptox.ErrDecrypt) {
			return nil, common.NewError(common.KindAuthenticationFailed, "wrong passphrase", err)
		}
		return nil, common.NewError(common.KindCryptoError, "decrypt keystore", err)
	}
	return secret, nil
}

func (f *fileJSON) check(id string) error {
	switch {
	case f.Version != version:
		return fmt.Errorf("version %d", f.Version)
	case f.ID != id:
		return fmt.Errorf("file id %q does not match %q", f.ID, id)
	case f.Crypto.Cipher != cipherName:
		return fmt.Errorf("cipher %q", f.Crypto.Cipher)
	case f.Crypto.KDF != kdfName:
		return fmt.Errorf("kdf %q", f.Crypto.KDF)
	}
	return nil
}
