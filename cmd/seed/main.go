// Command seed bootstraps the trips schema and loads the sample trip
// data when the table is empty.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trips/internal/app"
	"trips/internal/config"
)

const (
	schemaPath = "sql/schema.sql"
	seedPath   = "data/trips_seed.csv"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := applySchema(ctx, db); err != nil {
		log.WithError(err).Fatal("schema bootstrap failed")
	}
	log.Info("schema ensured")

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&count); err != nil {
		log.WithError(err).Fatal("failed to count trips")
	}

	if count > 0 {
		log.WithField("count", count).Info("trips table already has records, skipping seed")
		return
	}

	seeded, err := seedTrips(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	log.WithField("count", seeded).Info("seeded trip records")
}

// applySchema executes schema.sql statement by statement. The file
// holds plain DDL, so splitting on semicolons is sufficient.
func applySchema(ctx context.Context, db *sql.DB) error {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return err
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// seedTrips loads the CSV into the trips table. Lifecycle timestamps
// beyond requested_at are derived from the row's status so seeded rows
// satisfy the same invariants live rows do.
func seedTrips(ctx context.Context, db *sql.DB) (int, error) {
	f, err := os.Open(seedPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return 0, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	const insert = `
		INSERT INTO trips (id, rider_id, driver_id, pickup_zone, drop_zone, status,
			requested_at, assigned_at, accepted_at, completed_at, cancelled_at,
			distance_km, base_fare, surge_multiplier, total_fare, cancellation_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 0)
		ON CONFLICT (id) DO NOTHING
	`

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		requestedAt, err := time.Parse(time.RFC3339, record[col["requested_at"]])
		if err != nil {
			return count, err
		}

		status := record[col["status"]]
		driverID := nullString(record[col["driver_id"]])

		var assignedAt, acceptedAt, completedAt, cancelledAt sql.NullTime
		if driverID.Valid {
			assignedAt = sql.NullTime{Time: requestedAt.Add(2 * time.Minute), Valid: true}
		}
		switch status {
		case "ACCEPTED", "COMPLETED":
			acceptedAt = sql.NullTime{Time: requestedAt.Add(5 * time.Minute), Valid: true}
		}
		switch status {
		case "COMPLETED":
			completedAt = sql.NullTime{Time: requestedAt.Add(30 * time.Minute), Valid: true}
		case "CANCELLED":
			cancelledAt = sql.NullTime{Time: requestedAt.Add(10 * time.Minute), Valid: true}
		}

		_, err = db.ExecContext(ctx, insert,
			record[col["id"]],
			record[col["rider_id"]],
			driverID,
			record[col["pickup_zone"]],
			record[col["drop_zone"]],
			status,
			requestedAt,
			assignedAt,
			acceptedAt,
			completedAt,
			cancelledAt,
			nullFloat(record[col["distance_km"]]),
			nullFloat(record[col["base_fare"]]),
			nullFloat(record[col["surge_multiplier"]]),
			nullFloat(record[col["total_fare"]]),
		)
		if err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullFloat(v string) sql.NullFloat64 {
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
