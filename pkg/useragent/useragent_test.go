package useragent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandom(t *testing.T) {
	all := All()
	for i := 0; i < 50; i++ {
		ua := Random()
		assert.Contains(t, all, ua)
		assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0 "))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0] = "changed"
	assert.NotEqual(t, "changed", All()[0])
}
