package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "ab***@example.com",
		"a@x.io":               "a***@x.io",
		"@x.io":                "***",
		"no-at-sign":           "***",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestNewLevelFallback(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("DEBUG", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("nonsense", "json").GetLevel())

	_, isJSON := New("info", "json").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}
