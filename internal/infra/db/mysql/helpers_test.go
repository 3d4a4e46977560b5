package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "t1", stringOrDash("t1"))
	assert.Equal(t, "-", stringOrDash(""))
	assert.Equal(t, "-", stringOrDash("   "))
	// Write and read must normalize identically or a record written under
	// "-" could never be read back.
	assert.Equal(t, stringOrDash("  "), stringOrDash(""))
}
