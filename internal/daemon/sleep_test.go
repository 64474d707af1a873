package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextSleepSubtractsOverhead(t *testing.T) {
	assert.Equal(t, 70*time.Millisecond, nextSleep(100*time.Millisecond, 30*time.Millisecond))
	assert.Equal(t, 200*time.Millisecond, nextSleep(200*time.Millisecond, 0))
}

func TestNextSleepNeverNegative(t *testing.T) {
	assert.Equal(t, time.Duration(0), nextSleep(100*time.Millisecond, 150*time.Millisecond))
	assert.Equal(t, time.Duration(0), nextSleep(100*time.Millisecond, 100*time.Millisecond))
}
