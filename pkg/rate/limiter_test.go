package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinRate(t *testing.T) {
	l := New(2, time.Minute)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// other clients keep their own bucket
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestWindowReset(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", IP("10.0.0.1:8080"))
	assert.Equal(t, "10.0.0.1", IP("10.0.0.1"))
}
