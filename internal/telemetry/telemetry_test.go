package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/verkko/gaugectl/internal/gauge"
	"codeberg.org/verkko/gaugectl/internal/telemetry"
)

func testSnapshot(ts time.Time) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{Timestamp: ts}
	for _, ch := range gauge.Channels {
		snapshot.Channels[ch] = telemetry.ChannelSample{
			Raw:  float64(10 * (int(ch) + 1)),
			PWM:  50 * (int(ch) + 1),
			Sent: uint8(40 * (int(ch) + 1)),
		}
	}
	return snapshot
}

func TestRecordAndReadBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	ts := time.Now().Truncate(time.Second)
	require.NoError(t, collector.Record(context.Background(), testSnapshot(ts)))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var stored int64
	var cpuRaw float64
	var memSent int
	row := db.QueryRow("SELECT timestamp, cpu_raw, mem_sent FROM samples")
	require.NoError(t, row.Scan(&stored, &cpuRaw, &memSent))

	assert.Equal(t, ts.Unix(), stored)
	assert.InDelta(t, 10.0, cpuRaw, 1e-9)
	assert.Equal(t, 160, memSent)
}

func TestRecordUpsertsSameTimestamp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	ts := time.Now().Truncate(time.Second)
	first := testSnapshot(ts)
	require.NoError(t, collector.Record(context.Background(), first))

	second := testSnapshot(ts)
	second.Channels[gauge.ChannelCPU].Raw = 99
	require.NoError(t, collector.Record(context.Background(), second))

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&count))
	assert.Equal(t, 1, count)

	var cpuRaw float64
	require.NoError(t, db.QueryRow("SELECT cpu_raw FROM samples").Scan(&cpuRaw))
	assert.InDelta(t, 99.0, cpuRaw, 1e-9)
}

func TestDisabledCollectorIsNoop(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, collector.Record(context.Background(), testSnapshot(time.Now())))
	assert.NoError(t, collector.Close())
}

func TestRecordNilSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}

func TestRecordCanceledContext(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, collector.Record(ctx, testSnapshot(time.Now())))
}

func TestEnabledRequiresDBPath(t *testing.T) {
	_, err := telemetry.NewService(telemetry.Config{Enabled: true})
	assert.Error(t, err)
}
