package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDescending(t *testing.T) {
	vals := []float64{12.5, 99.0, 0.0, 45.2}
	sortDescending(vals)
	assert.Equal(t, []float64{99.0, 45.2, 12.5, 0.0}, vals)
}

func TestSortDescendingNaNOrdersLast(t *testing.T) {
	nan := math.NaN()
	vals := []float64{nan, 80.0, nan, 90.0, 10.0}
	sortDescending(vals)

	assert.Equal(t, 90.0, vals[0])
	assert.Equal(t, 80.0, vals[1])
	assert.Equal(t, 10.0, vals[2])
	assert.True(t, math.IsNaN(vals[3]))
	assert.True(t, math.IsNaN(vals[4]))
}

func TestCounterDelta(t *testing.T) {
	assert.Equal(t, int64(100), counterDelta(1100, 1000))
	assert.Equal(t, int64(0), counterDelta(1000, 1000))
	assert.Equal(t, int64(0), counterDelta(50, 1000), "counter wraparound reads as no traffic")
}

func TestCombineNet(t *testing.T) {
	assert.Equal(t, int64(-500), combineNet(NetModeDiff, 1000, 1500))
	assert.Equal(t, int64(2500), combineNet(NetModeTotal, 1000, 1500))
}

func TestNetModeValid(t *testing.T) {
	assert.True(t, NetModeDiff.Valid())
	assert.True(t, NetModeTotal.Valid())
	assert.False(t, NetMode("rx").Valid())
	assert.False(t, NetMode("").Valid())
}

func TestBlockDevicePattern(t *testing.T) {
	matches := []string{"nvme0n1", "nvme10n2", "sda", "sdb", "sdaa"}
	for _, name := range matches {
		assert.True(t, blockDevicePattern.MatchString(name), name)
	}

	rejects := []string{"nvme0n1p1", "sda1", "loop0", "dm-0", "md127", "sr0", "vda"}
	for _, name := range rejects {
		assert.False(t, blockDevicePattern.MatchString(name), name)
	}
}
