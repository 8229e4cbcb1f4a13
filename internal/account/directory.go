package account

import (
	"encoding/json"
	"errors"
	"os"
	"sort"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/filex"
)

// FileName is the account directory file under the storage root.
const FileName = "accounts.json"

// Directory maps keystore identifiers to account records. Totp is the
// storage-relative path of the sealed TOTP secret, empty when the wallet has
// no second factor.
type Directory struct {
	Accounts map[string]View `json:"accounts"`
	Totp     string          `json:"totp,omitempty"`
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{Accounts: make(map[string]View)}
}

// Primary returns the primary account and its identifier.
func (d *Directory) Primary() (string, View, bool) {
	for id, v := range d.Accounts {
		if v.Kind == Primary {
			return id, v, true
		}
	}
	return "", View{}, false
}

// HasPrimary reports whether a primary account exists.
func (d *Directory) HasPrimary() bool {
	_, _, ok := d.Primary()
	return ok
}

// Insert adds an account under id. A second primary is refused, as is
// reusing an identifier.
func (d *Directory) Insert(id string, v View) error {
	if !v.Kind.Valid() {
		return common.Errorf(common.KindInvalidParams, "unknown account kind %q", v.Kind)
	}
	if _, dup := d.Accounts[id]; dup {
		return common.Errorf(common.KindInvalidParams, "account %s already exists", id)
	}
	if v.Kind == Primary && d.HasPrimary() {
		return common.ErrPrimaryAlreadyExists
	}
	if d.Accounts == nil {
		d.Accounts = make(map[string]View)
	}
	d.Accounts[id] = v
	return nil
}

// Views returns all accounts, primary first, then by address.
func (d *Directory) Views() []View {
	out := make([]View, 0, len(d.Accounts))
	for _, v := range d.Accounts {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == Primary
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Imported counts the imported accounts.
func (d *Directory) Imported() int {
	n := 0
	for _, v := range d.Accounts {
		if v.Kind == Imported {
			n++
		}
	}
	return n
}

func (d *Directory) validate() error {
	primaries := 0
	for id, v := range d.Accounts {
		if !v.Kind.Valid() {
			return common.Errorf(common.KindIoError, "account %s has unknown kind %q", id, v.Kind)
		}
		if v.Kind == Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return common.Errorf(common.KindIoError, "account directory has %d primary accounts", primaries)
	}
	return nil
}

// LoadDirectory reads a directory file. A missing file is reported as
// NotFound.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewError(common.KindNotFound, "account directory not found", err)
		}
		return nil, common.NewError(common.KindIoError, "read account directory", err)
	}

	d := NewDirectory()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, common.NewError(common.KindIoError, "decode account directory", err)
	}
	if d.Accounts == nil {
		d.Accounts = make(map[string]View)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// SaveDirectory replaces the file at path with d in one atomic write.
func SaveDirectory(path string, d *Directory) error {
	if err := d.validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return common.NewError(common.KindIoError, "encode account directory", err)
	}

	if err := filex.WriteFileAtomic(path, data, filex.FilePerm); err != nil {
		return common.NewError(common.KindIoError, "write account directory", err)
	}
	return nil
}
