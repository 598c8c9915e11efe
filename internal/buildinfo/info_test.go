package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "1.2.0", "abc1234", "2024-02-01"
	assert.Equal(t, "1.2.0 (commit: abc1234, built: 2024-02-01)", String())
}
