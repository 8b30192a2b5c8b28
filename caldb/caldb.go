// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package caldb holds types to describe the calibration database of
// the PRACH detection bench (detection thresholds measured by
// calibration campaigns).
package caldb // import "github.com/go-nr/phytest/caldb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-nr/phytest/prach"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve calibration data
// from the bench database.
type DB struct {
	db   *sql.DB
	name string // name of the calibration database
}

// Open opens a connection to the calibration database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("caldb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("caldb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("caldb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastCampaign returns the name of the most recent calibration
// campaign stored in the database.
func (db *DB) LastCampaign(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM campaigns ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("caldb: could not query last campaign: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("caldb: could not get campaign name: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("caldb: could not scan db for campaign name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("caldb: context error while retrieving campaign name: %w", err)
	}

	return name, nil
}

// Thresholds retrieves the detection thresholds of the calibration
// campaign, overlaid on the built-in defaults so that uncalibrated
// working points keep their conservative values.
func (db *DB) Thresholds(ctx context.Context, campaign string) (prach.ThresholdTable, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tbl := prach.DefaultThresholds()

	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT thresholds.nant, thresholds.longfmt, thresholds.zczzero,
       thresholds.nocfo, thresholds.threshold, thresholds.margin
FROM thresholds
JOIN campaigns ON campaigns.identifier=thresholds.campaign
WHERE campaigns.name=?
`,
		campaign,
	)
	if err != nil {
		return tbl, fmt.Errorf("caldb: could not run thresholds query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var (
			key prach.ThresholdKey
			thr prach.Threshold
		)
		err = rows.Scan(
			&key.NumAnt, &key.Long, &key.ZCZZero, &key.NoCFO,
			&thr.Value, &thr.Margin,
		)
		if err != nil {
			return tbl, fmt.Errorf("caldb: could not scan row %d for thresholds: %w", i, err)
		}
		i++

		tbl[key] = thr
	}

	if err := rows.Err(); err != nil {
		return tbl, fmt.Errorf("caldb: could not scan db for thresholds: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return tbl, fmt.Errorf("caldb: context error while retrieving thresholds: %w", err)
	}

	return tbl, nil
}
