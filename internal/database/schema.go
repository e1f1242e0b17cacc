package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables used by the service.  bed_bookings carries a
// unique key on (event_id, bed_id): the upsert and the restriction
// inserts both rely on it to resolve concurrent writers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		slug       VARCHAR(64)  NOT NULL,
		name       VARCHAR(255) NOT NULL,
		starts_on  DATE NULL,
		ends_on    DATE NULL,
		is_active  TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_events_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		event_id   BIGINT UNSIGNED NOT NULL,
		code       VARCHAR(32)  NOT NULL,
		name       VARCHAR(255) NOT NULL,
		bed_count  INT UNSIGNED NOT NULL,
		floor      VARCHAR(32) NULL,
		notes      TEXT NULL,
		sort_order INT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_rooms_event_code (event_id, code),
		CONSTRAINT fk_rooms_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bed_bookings (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		event_id       BIGINT UNSIGNED NOT NULL,
		bed_id         VARCHAR(64)  NOT NULL,
		name           VARCHAR(255) NOT NULL,
		booked_at      DATETIME NOT NULL,
		status         ENUM('booked','blocked','women_only','men_only') NOT NULL,
		blocked_by     VARCHAR(64) NULL,
		arrival_date   VARCHAR(16) NULL,
		arrival_time   VARCHAR(16) NULL,
		departure_date VARCHAR(16) NULL,
		departure_time VARCHAR(16) NULL,
		transport      VARCHAR(32) NULL,
		needs_pickup   TINYINT(1) NOT NULL DEFAULT 0,
		offers_seats   INT NOT NULL DEFAULT 0,
		departure_city VARCHAR(128) NULL,
		train_station  VARCHAR(128) NULL,
		train_time     VARCHAR(16) NULL,
		train_number   VARCHAR(32) NULL,
		UNIQUE KEY uq_bed_bookings_event_bed (event_id, bed_id),
		KEY idx_bed_bookings_blocked_by (event_id, blocked_by),
		CONSTRAINT fk_bed_bookings_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS waitlist_entries (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		event_id   BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(255) NOT NULL,
		comment    TEXT NOT NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		KEY idx_waitlist_event_created (event_id, created_at),
		CONSTRAINT fk_waitlist_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
