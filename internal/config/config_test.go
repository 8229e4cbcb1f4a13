package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
)

func defaults(t *testing.T, home string) Config {
	t.Helper()
	return Config{
		StorageDir:        filepath.Join(home, ".walletkeeper"),
		Language:          "english",
		TotpIssuer:        "walletkeeper.io",
		TotpAccount:       "walletkeeper",
		ListenAddr:        "127.0.0.1:50061",
		TokenTTL:          24 * time.Hour,
		LoginRateInterval: 2 * time.Second,
		LoginRateBurst:    3,
		KDF:               cryptox.DefaultKDFParams,
		AuditDB:           "audit.db",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var c Config
	c.LoadDefaults()

	if diff := cmp.Diff(defaults(t, home), c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, c.Validate())
}

func TestLoad_JSONThenFlags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeFile(t, "wk.json", `{
		"storage_dir": "/var/lib/wk",
		"totp_skew": 1,
		"token_ttl": "1h",
		"login_rate_interval": 500000000,
		"kdf_memory_kib": 8192,
		"log_format": "json"
	}`)

	cfg, err := Load([]string{"-c", path, "-s", "/srv/wk", "-v", "debug", "-x", "ignored"})
	require.NoError(t, err)

	want := defaults(t, home)
	want.StorageDir = "/srv/wk"
	want.TotpSkew = 1
	want.TokenTTL = time.Hour
	want.LoginRateInterval = 500 * time.Millisecond
	want.KDF.MemoryKiB = 8192
	want.LogFormat = "json"
	want.LogLevel = "debug"

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeFile(t, "wk.yaml", "language: japanese\nserver_addr: wallet.example:50061\ntoken_secret: s3cret\nlogin_rate_burst: 10\n")

	cfg, err := Load([]string{"-config", path})
	require.NoError(t, err)

	want := defaults(t, home)
	want.Language = "japanese"
	want.ServerAddr = "wallet.example:50061"
	want.TokenSecret = "s3cret"
	want.LoginRateBurst = 10

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("missing file", func(t *testing.T) {
		_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "nope.json")})
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Load([]string{"-c", writeFile(t, "bad.json", `{ this is not json`)})
		assert.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := Load([]string{"-c", writeFile(t, "bad.yml", "token_ttl: tomorrow\n")})
		assert.Error(t, err)
	})
}

func TestLoadConfig_PanicsOnBadFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "missing.json")}
	require.Panics(t, func() { LoadConfig() })
}

func TestValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty storage", func(c *Config) { c.StorageDir = "" }},
		{"unknown language", func(c *Config) { c.Language = "klingon" }},
		{"zero kdf time", func(c *Config) { c.KDF.Time = 0 }},
		{"zero burst", func(c *Config) { c.LoginRateBurst = 0 }},
		{"negative ttl", func(c *Config) { c.TokenTTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults(t, home)
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestAuditPath(t *testing.T) {
	c := Config{StorageDir: "/data/wk", AuditDB: "audit.db"}
	assert.Equal(t, filepath.Join("/data/wk", "audit.db"), c.AuditPath())

	c.AuditDB = "/tmp/j.db"
	assert.Equal(t, "/tmp/j.db", c.AuditPath())

	c.AuditDB = ""
	assert.Empty(t, c.AuditPath())
}
