package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, sha, bt := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = v, sha, bt }()

	Version, GitSHA, BuildTime = "1.2.3", "abc123", "2026-01-02T03:04:05Z"
	assert.Equal(t, "bee-report 1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)", String())
}
