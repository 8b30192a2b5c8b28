// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command prach-sql inspects the content of the calibration database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-nr/phytest/caldb"
	_ "github.com/go-sql-driver/mysql"
)

const (
	dbname = "phytest"
)

func main() {
	log.SetPrefix("prach-sql: ")
	log.SetFlags(0)

	campaign := flag.String("campaign", "", "calibration campaign to inspect")

	flag.Parse()

	db, err := caldb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open calibration db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *campaign)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *caldb.DB, campaign string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if campaign == "" {
		v, err := db.LastCampaign(ctx)
		if err != nil {
			return fmt.Errorf("could not get last campaign name: %w", err)
		}
		campaign = v
	}
	log.Printf("campaign: %q", campaign)

	{
		rows, err := db.QueryContext(ctx, "SELECT name, datetime FROM campaigns ORDER BY datetime")
		if err != nil {
			return fmt.Errorf("could not get campaigns list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name string
				date string
			)
			err = rows.Scan(&name, &date)
			if err != nil {
				return fmt.Errorf("could not scan campaigns list: %w", err)
			}
			log.Printf(">>> campaign=%q date=%s", name, date)
		}
	}

	tbl, err := db.Thresholds(ctx, campaign)
	if err != nil {
		return fmt.Errorf("could not get thresholds (campaign=%q): %w",
			campaign, err,
		)
	}
	log.Printf("thresholds: %d", len(tbl))
	for key, thr := range tbl {
		log.Printf("row: nant=%d long=%v zcz0=%v nocfo=%v -> thr=%g margin=%d",
			key.NumAnt, key.Long, key.ZCZZero, key.NoCFO,
			thr.Value, thr.Margin,
		)
	}

	return nil
}
