package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/walletkeeper/internal/flagx"
	"github.com/dmitrijs2005/walletkeeper/internal/timex"
)

// FileConfig is the on-disk shape of a config file. Keys missing from the
// file keep the value the Config already had.
type FileConfig struct {
	StorageDir        string         `json:"storage_dir" yaml:"storage_dir"`
	Language          string         `json:"language" yaml:"language"`
	TotpIssuer        string         `json:"totp_issuer" yaml:"totp_issuer"`
	TotpAccount       string         `json:"totp_account" yaml:"totp_account"`
	TotpSkew          uint           `json:"totp_skew" yaml:"totp_skew"`
	ListenAddr        string         `json:"listen_addr" yaml:"listen_addr"`
	ServerAddr        string         `json:"server_addr" yaml:"server_addr"`
	TokenSecret       string         `json:"token_secret" yaml:"token_secret"`
	TokenTTL          timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	LoginRateInterval timex.Duration `json:"login_rate_interval" yaml:"login_rate_interval"`
	LoginRateBurst    int            `json:"login_rate_burst" yaml:"login_rate_burst"`
	KDFTime           uint32         `json:"kdf_time" yaml:"kdf_time"`
	KDFMemoryKiB      uint32         `json:"kdf_memory_kib" yaml:"kdf_memory_kib"`
	KDFThreads        uint8          `json:"kdf_threads" yaml:"kdf_threads"`
	AuditDB           string         `json:"audit_db" yaml:"audit_db"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogFormat         string         `json:"log_format" yaml:"log_format"`
}

func fromConfig(c *Config) *FileConfig {
	return &FileConfig{
		StorageDir:        c.StorageDir,
		Language:          c.Language,
		TotpIssuer:        c.TotpIssuer,
		TotpAccount:       c.TotpAccount,
		TotpSkew:          c.TotpSkew,
		ListenAddr:        c.ListenAddr,
		ServerAddr:        c.ServerAddr,
		TokenSecret:       c.TokenSecret,
		TokenTTL:          timex.Duration{Duration: c.TokenTTL},
		LoginRateInterval: timex.Duration{Duration: c.LoginRateInterval},
		LoginRateBurst:    c.LoginRateBurst,
		KDFTime:           c.KDF.Time,
		KDFMemoryKiB:      c.KDF.MemoryKiB,
		KDFThreads:        c.KDF.Threads,
		AuditDB:           c.AuditDB,
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.StorageDir = f.StorageDir
	c.Language = f.Language
	c.TotpIssuer = f.TotpIssuer
	c.TotpAccount = f.TotpAccount
	c.TotpSkew = f.TotpSkew
	c.ListenAddr = f.ListenAddr
	c.ServerAddr = f.ServerAddr
	c.TokenSecret = f.TokenSecret
	c.TokenTTL = f.TokenTTL.Duration
	c.LoginRateInterval = f.LoginRateInterval.Duration
	c.LoginRateBurst = f.LoginRateBurst
	c.KDF.Time = f.KDFTime
	c.KDF.MemoryKiB = f.KDFMemoryKiB
	c.KDF.Threads = f.KDFThreads
	c.AuditDB = f.AuditDB
	c.LogLevel = f.LogLevel
	c.LogFormat = f.LogFormat
}

// parseFile overlays the file named by -c/-config, if any. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := fromConfig(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
