package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testKey = "GRIDSIM_ENVUTIL_TEST"

func TestBool(t *testing.T) {
	tests := []struct {
		raw      string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"true", false, true},
		{"True", false, true},
		{" TRUE ", false, true},
		{"yes", false, true},
		{"Yes", false, true},
		{"0", true, false},
		{"false", true, false},
		{"False", true, false},
		{"NO", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv(testKey, tt.raw)
			assert.Equal(t, tt.want, Bool(testKey, tt.fallback))
		})
	}
}

func TestString(t *testing.T) {
	t.Setenv(testKey, "  ")
	assert.Equal(t, "dflt", String(testKey, "dflt"))
	t.Setenv(testKey, " value ")
	assert.Equal(t, "value", String(testKey, "dflt"))
}

func TestFloat(t *testing.T) {
	t.Setenv(testKey, "0.25")
	assert.Equal(t, 0.25, Float(testKey, 1))
	t.Setenv(testKey, "lots")
	assert.Equal(t, 1.0, Float(testKey, 1))
	t.Setenv(testKey, "")
	assert.Equal(t, 1.0, Float(testKey, 1))
}
