package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/filex"
	"github.com/dmitrijs2005/walletkeeper/internal/mnemonic"
	"github.com/dmitrijs2005/walletkeeper/internal/totp"
)

// Config holds runtime settings.
//
// Fields:
//   - StorageDir: root of the account directory, keystore and totp files.
//   - Language: mnemonic wordlist name.
//   - TotpIssuer / TotpAccount / TotpSkew: provisioning labels and accepted
//     adjacent time steps (0 means the exact step only).
//   - ListenAddr: gRPC bind address of the server.
//   - ServerAddr: remote server for the cli; empty runs the store in-process.
//   - TokenSecret / TokenTTL: HS256 key and lifetime of transport access tokens.
//   - LoginRateInterval / LoginRateBurst: Account.login throttling.
//   - KDF: Argon2id parameters for newly sealed keystore entries.
//   - AuditDB: journal database, relative to StorageDir unless absolute.
//   - LogLevel / LogFormat: see logging.New.
type Config struct {
	StorageDir        string
	Language          string
	TotpIssuer        string
	TotpAccount       string
	TotpSkew          uint
	ListenAddr        string
	ServerAddr        string
	TokenSecret       string
	TokenTTL          time.Duration
	LoginRateInterval time.Duration
	LoginRateBurst    int
	KDF               cryptox.KDFParams
	AuditDB           string
	LogLevel          string
	LogFormat         string
}

// LoadDefaults populates Config with local-use defaults.
func (c *Config) LoadDefaults() {
	dir, err := filex.DefaultStorageDir()
	if err != nil {
		dir = ".walletkeeper"
	}
	c.StorageDir = dir
	c.Language = string(mnemonic.English)
	c.TotpIssuer = totp.DefaultIssuer
	c.TotpAccount = totp.DefaultAccount
	c.TotpSkew = 0
	c.ListenAddr = "127.0.0.1:50061"
	c.ServerAddr = ""
	c.TokenSecret = ""
	c.TokenTTL = 24 * time.Hour
	c.LoginRateInterval = 2 * time.Second
	c.LoginRateBurst = 3
	c.KDF = cryptox.DefaultKDFParams
	c.AuditDB = "audit.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// AuditPath resolves AuditDB against StorageDir.
func (c *Config) AuditPath() string {
	if c.AuditDB == "" || filepath.IsAbs(c.AuditDB) {
		return c.AuditDB
	}
	return filepath.Join(c.StorageDir, c.AuditDB)
}

// Validate reports settings the binaries cannot start with.
func (c *Config) Validate() error {
	if c.StorageDir == "" {
		return fmt.Errorf("storage dir is empty")
	}
	if _, err := mnemonic.ParseLanguage(c.Language); err != nil {
		return err
	}
	if err := c.KDF.Validate(); err != nil {
		return fmt.Errorf("kdf: %w", err)
	}
	if c.LoginRateBurst < 1 {
		return fmt.Errorf("login rate burst must be positive, got %d", c.LoginRateBurst)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Load builds a Config from defaults, the optional config file and flags
// found in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on unreadable files or bad flags.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
