package account

import (
	"encoding/json"
	"fmt"
)

// Kind tags an account as the primary identity or an imported one.
type Kind string

const (
	Primary  Kind = "primary"
	Imported Kind = "imported"
)

func (k Kind) String() string { return string(k) }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == Primary || k == Imported
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := Kind(s)
	if !v.Valid() {
		return fmt.Errorf("unknown account kind %q", s)
	}
	*k = v
	return nil
}

// View is the public record of an account.
type View struct {
	Address string `json:"address"`
	Kind    Kind   `json:"kind"`
}
