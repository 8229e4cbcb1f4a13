package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

// decodeParams fills v from by-name params. Absent params leave v as is.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return common.NewError(common.KindInvalidParams, "invalid params", err)
	}
	return nil
}

// decodeString accepts a bare string, a one-element array or an object
// holding the value under key.
func decodeString(raw json.RawMessage, key string) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", common.Errorf(common.KindInvalidParams, "missing %s", key)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", common.NewError(common.KindInvalidParams, "invalid params", err)
		}
		return s, nil
	case '[':
		var arr []string
		if err := json.Unmarshal(raw, &arr); err != nil || len(arr) != 1 {
			return "", common.Errorf(common.KindInvalidParams, "expected [%s]", key)
		}
		return arr[0], nil
	case '{':
		var obj map[string]string
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", common.NewError(common.KindInvalidParams, "invalid params", err)
		}
		s, ok := obj[key]
		if !ok {
			return "", common.Errorf(common.KindInvalidParams, "missing %s", key)
		}
		return s, nil
	}
	return "", common.Errorf(common.KindInvalidParams, "expected %s string", key)
}

// LoginParams are the optional explicit credentials of Account.login.
type LoginParams struct {
	Passphrase string `json:"passphrase,omitempty"`
	Token      string `json:"token,omitempty"`
}

// AddParams import an account from its recovery mnemonic.
type AddParams struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase"`
}

// HistoryParams bound Account.history.
type HistoryParams struct {
	Limit int `json:"limit,omitempty"`
}
