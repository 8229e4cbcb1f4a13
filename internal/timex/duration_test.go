package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type holder struct {
	D Duration `json:"d" yaml:"d"`
}

func TestDuration_JSON(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{`{"d":"30s"}`, 30 * time.Second},
		{`{"d":"1h15m"}`, 75 * time.Minute},
		{`{"d":1000000000}`, time.Second},
	}
	for _, tc := range cases {
		var h holder
		require.NoError(t, json.Unmarshal([]byte(tc.in), &h), tc.in)
		assert.Equal(t, tc.want, h.D.Duration, tc.in)
	}

	out, err := json.Marshal(holder{D: Duration{2 * time.Minute}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2m0s"}`, string(out))
}

func TestDuration_JSONErrors(t *testing.T) {
	for _, in := range []string{`{"d":"soon"}`, `{"d":true}`, `{"d":[1]}`} {
		var h holder
		assert.Error(t, json.Unmarshal([]byte(in), &h), in)
	}
}

func TestDuration_YAML(t *testing.T) {
	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("d: 45s\n"), &h))
	assert.Equal(t, 45*time.Second, h.D.Duration)

	require.NoError(t, yaml.Unmarshal([]byte("d: 500\n"), &h))
	assert.Equal(t, 500*time.Nanosecond, h.D.Duration)

	assert.Error(t, yaml.Unmarshal([]byte("d: later\n"), &h))
}
