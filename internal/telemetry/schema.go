package telemetry

import (
	"database/sql"

	"codeberg.org/verkko/gaugectl/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            timestamp INTEGER PRIMARY KEY,
            cpu_raw REAL,
            cpu_pwm INTEGER,
            cpu_sent INTEGER,
            net_raw REAL,
            net_pwm INTEGER,
            net_sent INTEGER,
            disk_raw REAL,
            disk_pwm INTEGER,
            disk_sent INTEGER,
            mem_raw REAL,
            mem_pwm INTEGER,
            mem_sent INTEGER
        )
    `)
	if err != nil {
		errFactory := errors.New()
		return errFactory.Wrap(ErrStorageInit, err)
	}

	return nil
}
