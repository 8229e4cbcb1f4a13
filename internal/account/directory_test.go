package account

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Insert(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Insert("a", View{Address: "0xaa", Kind: Primary}))
	require.NoError(t, d.Insert("b", View{Address: "0xbb", Kind: Imported}))

	err := d.Insert("c", View{Address: "0xcc", Kind: Primary})
	require.ErrorIs(t, err, common.ErrPrimaryAlreadyExists)

	err = d.Insert("b", View{Address: "0xdd", Kind: Imported})
	require.ErrorIs(t, err, common.ErrInvalidParams)

	err = d.Insert("e", View{Address: "0xee", Kind: "other"})
	require.ErrorIs(t, err, common.ErrInvalidParams)

	id, v, ok := d.Primary()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, "0xaa", v.Address)
	assert.Equal(t, 1, d.Imported())
}

func TestDirectory_Views(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Insert("3", View{Address: "0x03", Kind: Imported}))
	require.NoError(t, d.Insert("2", View{Address: "0x02", Kind: Imported}))
	require.NoError(t, d.Insert("9", View{Address: "0x09", Kind: Primary}))

	assert.Equal(t, []View{
		{Address: "0x09", Kind: Primary},
		{Address: "0x02", Kind: Imported},
		{Address: "0x03", Kind: Imported},
	}, d.Views())
}

func TestDirectory_NoPrimary(t *testing.T) {
	d := NewDirectory()
	assert.False(t, d.HasPrimary())
	assert.Empty(t, d.Views())
}

func TestSaveLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	d := NewDirectory()
	require.NoError(t, d.Insert("id-1", View{Address: "0x01", Kind: Primary}))
	require.NoError(t, d.Insert("id-2", View{Address: "0x02", Kind: Imported}))
	d.Totp = "totp/id-3"

	require.NoError(t, SaveDirectory(path, d))

	loaded, err := LoadDirectory(path)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// saving an unchanged directory reproduces the same bytes
	require.NoError(t, SaveDirectory(path, loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(first, &raw))
	assert.Equal(t, "totp/id-3", raw["totp"])
	accounts := raw["accounts"].(map[string]any)
	assert.Equal(t, map[string]any{"address": "0x01", "kind": "primary"}, accounts["id-1"])
}

func TestSaveDirectory_OmitsEmptyTotp(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	d := NewDirectory()
	require.NoError(t, d.Insert("id-1", View{Address: "0x01", Kind: Primary}))
	require.NoError(t, SaveDirectory(path, d))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "totp")
}

func TestLoadDirectory_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDirectory(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, common.ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadDirectory(bad)
	require.ErrorIs(t, err, common.ErrIO)

	unknown := filepath.Join(dir, "kind.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"accounts":{"a":{"address":"0x1","kind":"ledger"}}}`), 0o600))
	_, err = LoadDirectory(unknown)
	require.Error(t, err)

	two := filepath.Join(dir, "two.json")
	require.NoError(t, os.WriteFile(two, []byte(`{"accounts":{"a":{"address":"0x1","kind":"primary"},"b":{"address":"0x2","kind":"primary"}}}`), 0o600))
	_, err = LoadDirectory(two)
	require.ErrorIs(t, err, common.ErrIO)
}

func TestLoadDirectory_NullAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":null}`), 0o600))

	d, err := LoadDirectory(path)
	require.NoError(t, err)
	require.NotNil(t, d.Accounts)
	assert.False(t, d.HasPrimary())
}
