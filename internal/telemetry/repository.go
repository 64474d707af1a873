package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/verkko/gaugectl/internal/errors"
	"codeberg.org/verkko/gaugectl/internal/gauge"
	"codeberg.org/verkko/gaugectl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpu := snapshot.Channels[gauge.ChannelCPU]
	net := snapshot.Channels[gauge.ChannelNet]
	dsk := snapshot.Channels[gauge.ChannelDisk]
	mem := snapshot.Channels[gauge.ChannelMem]

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO samples (
            timestamp,
            cpu_raw, cpu_pwm, cpu_sent,
            net_raw, net_pwm, net_sent,
            disk_raw, disk_pwm, disk_sent,
            mem_raw, mem_pwm, mem_sent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            cpu_raw = excluded.cpu_raw,
            cpu_pwm = excluded.cpu_pwm,
            cpu_sent = excluded.cpu_sent,
            net_raw = excluded.net_raw,
            net_pwm = excluded.net_pwm,
            net_sent = excluded.net_sent,
            disk_raw = excluded.disk_raw,
            disk_pwm = excluded.disk_pwm,
            disk_sent = excluded.disk_sent,
            mem_raw = excluded.mem_raw,
            mem_pwm = excluded.mem_pwm,
            mem_sent = excluded.mem_sent
    `,
		snapshot.Timestamp.Unix(),
		cpu.Raw, cpu.PWM, cpu.Sent,
		net.Raw, net.PWM, net.Sent,
		dsk.Raw, dsk.PWM, dsk.Sent,
		mem.Raw, mem.PWM, mem.Sent,
	)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}
