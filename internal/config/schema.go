package config

import (
	"context"
	"database/sql"
	"fmt"
)

// Unique keys below carry the booking invariants: one active booking per
// (rider, date, slot pair), one seat holder per physical trip and one history
// row per (booking, trip type). NULLs never collide in MySQL unique keys.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reg_number VARCHAR(32) NOT NULL,
	operator_name VARCHAR(255) NOT NULL DEFAULT '',
	make_model VARCHAR(255) NOT NULL DEFAULT '',
	seating_capacity INT NOT NULL DEFAULT 0,
	seat_layout VARCHAR(16) NOT NULL DEFAULT '2x2',
	driver_name VARCHAR(255) NOT NULL DEFAULT '',
	driver_contact VARCHAR(64) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	qr_token VARCHAR(128) NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_reg_number (reg_number),
	UNIQUE KEY uniq_qr_token (qr_token)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_no VARCHAR(32) NOT NULL,
	start_point VARCHAR(255) NOT NULL,
	end_point VARCHAR(255) NOT NULL,
	distance_km DECIMAL(8,2) NOT NULL DEFAULT 0,
	pass_amount_15 BIGINT NOT NULL DEFAULT 0,
	pass_amount_30 BIGINT NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_route_no (route_no)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS route_stops (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	position INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	UNIQUE KEY uniq_route_position (route_id, position)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS route_trip_templates (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	slot VARCHAR(32) NOT NULL,
	trip_type VARCHAR(8) NOT NULL,
	seats INT NOT NULL DEFAULT 0,
	status VARCHAR(16) NOT NULL DEFAULT 'active',
	UNIQUE KEY uniq_route_slot (route_id, slot, trip_type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS bus_schedules (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	travel_date DATE NOT NULL,
	route_id BIGINT NOT NULL,
	slot VARCHAR(32) NOT NULL,
	trip_type VARCHAR(8) NOT NULL,
	bus_id BIGINT NOT NULL,
	society_id BIGINT NULL,
	total_seats INT NOT NULL DEFAULT 0,
	booked INT NOT NULL DEFAULT 0,
	status VARCHAR(32) NOT NULL DEFAULT 'Scheduled',
	start_time DATETIME NULL,
	end_time DATETIME NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_schedule_tuple (route_id, travel_date, slot, trip_type),
	KEY idx_schedule_date (travel_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS passes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	rider_id BIGINT NOT NULL,
	pickup_location VARCHAR(255) NOT NULL,
	drop_location VARCHAR(255) NOT NULL,
	pickup_slot VARCHAR(32) NOT NULL,
	drop_slot VARCHAR(32) NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	duration_days INT NOT NULL DEFAULT 30,
	price BIGINT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'Active',
	route_id BIGINT NOT NULL,
	route_no VARCHAR(32) NOT NULL,
	route_serial BIGINT NOT NULL,
	overall_serial BIGINT NOT NULL,
	ticket_id VARCHAR(64) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_ticket_id (ticket_id),
	KEY idx_pass_rider_status (rider_id, status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS counters (
	counter_key VARCHAR(64) PRIMARY KEY,
	value BIGINT NOT NULL DEFAULT 0
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS daily_bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	rider_id BIGINT NOT NULL,
	travel_date DATE NOT NULL,
	route_id BIGINT NOT NULL,
	route_no VARCHAR(32) NOT NULL DEFAULT '',
	pickup_location VARCHAR(255) NOT NULL DEFAULT '',
	drop_location VARCHAR(255) NOT NULL DEFAULT '',
	pickup_slot VARCHAR(32) NOT NULL DEFAULT '',
	drop_slot VARCHAR(32) NOT NULL DEFAULT '',
	pickup_bus_id BIGINT NULL,
	drop_bus_id BIGINT NULL,
	pickup_schedule_id BIGINT NULL,
	drop_schedule_id BIGINT NULL,
	pickup_seat_no INT NULL,
	drop_seat_no INT NULL,
	pickup_boarded TINYINT(1) NOT NULL DEFAULT 0,
	drop_boarded TINYINT(1) NOT NULL DEFAULT 0,
	pickup_completed TINYINT(1) NOT NULL DEFAULT 0,
	drop_completed TINYINT(1) NOT NULL DEFAULT 0,
	status VARCHAR(16) NOT NULL DEFAULT 'reserved',
	completed TINYINT(1) NOT NULL DEFAULT 0,
	active_flag TINYINT AS (IF(status IN ('reserved','boarded'), 1, NULL)) STORED,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_active_booking (rider_id, travel_date, pickup_slot, drop_slot, active_flag),
	UNIQUE KEY uniq_pickup_seat (travel_date, pickup_slot, pickup_bus_id, pickup_seat_no),
	UNIQUE KEY uniq_drop_seat (travel_date, drop_slot, drop_bus_id, drop_seat_no),
	KEY idx_booking_route_date (route_id, travel_date),
	KEY idx_booking_pickup_schedule (pickup_schedule_id),
	KEY idx_booking_drop_schedule (drop_schedule_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS ride_history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	rider_id BIGINT NOT NULL,
	travel_date DATE NOT NULL,
	slot VARCHAR(32) NOT NULL,
	trip_type VARCHAR(8) NOT NULL,
	pickup_location VARCHAR(255) NOT NULL DEFAULT '',
	drop_location VARCHAR(255) NOT NULL DEFAULT '',
	route_id BIGINT NOT NULL,
	route_no VARCHAR(32) NOT NULL DEFAULT '',
	bus_id BIGINT NOT NULL,
	bus_reg VARCHAR(32) NOT NULL DEFAULT '',
	seat_no INT NULL,
	booking_id BIGINT NOT NULL,
	schedule_id BIGINT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_booking_trip (booking_id, trip_type),
	KEY idx_history_rider (rider_id, travel_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
