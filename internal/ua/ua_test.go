package ua

import (
	"testing"

	surfer "github.com/avct/uasurfer"
	"github.com/stretchr/testify/assert"
)

func TestParseDesktopChrome(t *testing.T) {
	raw := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.6422.112 Safari/537.36"
	info := Parse(raw)

	assert.Equal(t, "Chrome", info.Browser)
	assert.Equal(t, "macOS", info.OS)
	assert.Equal(t, "Desktop", info.Device)
	assert.False(t, info.IsBot)
	assert.Equal(t, raw, info.Raw)
}

func TestVersionToString(t *testing.T) {
	assert.Equal(t, "", versionToString(surfer.Version{}))
	assert.Equal(t, "17", versionToString(surfer.Version{Major: 17}))
	assert.Equal(t, "17.3", versionToString(surfer.Version{Major: 17, Minor: 3}))
	assert.Equal(t, "17.3.1", versionToString(surfer.Version{Major: 17, Minor: 3, Patch: 1}))
}
