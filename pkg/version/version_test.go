package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := version
	version = v
	t.Cleanup(func() { version = old })
}

func TestGetVersion(t *testing.T) {
	withVersion(t, "v1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
	assert.False(t, IsDevelopment())

	withVersion(t, "0.1.0-dev")
	assert.Equal(t, "0.1.0-dev", GetVersion())
	assert.True(t, IsDevelopment())

	withVersion(t, "not-a-version")
	assert.Equal(t, "not-a-version", GetVersion())
	assert.True(t, IsDevelopment())
}

func TestBuildInfo(t *testing.T) {
	assert.NotEmpty(t, GetGitCommit())
	assert.NotEmpty(t, GetBuildDate())
}
