// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// prach-sim runs Monte-Carlo detection campaigns described by a YAML
// configuration file and reports detection and false-alarm rates as
// CSV.
//
// Usage: prach-sim [OPTIONS] config.yml
//
// Example configuration:
//
//	trials: 1000
//	workers: 4
//	seed: 1
//	plot: metric.png
//	points:
//	  - format: "0"
//	    zcz: 1
//	    seq-idx: 22
//	    preamble: 7
//	    offset-us: 1.5
//	    ant: 2
//	    snr: [-30, -25, -20, -15, -10]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/go-nr/phytest/prach"
	"github.com/go-nr/phytest/sim"
)

func main() {
	log.SetPrefix("prach-sim: ")
	log.SetFlags(0)

	oname := flag.String("o", "", "path to output CSV file (default: stdout)")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("missing path to campaign configuration file")
	}

	err := run(*oname, flag.Arg(0))
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type configPoint struct {
	Format     string    `yaml:"format"`
	ZCZ        int       `yaml:"zcz"`
	SeqIdx     int       `yaml:"seq-idx"`
	Preamble   int       `yaml:"preamble"`
	OffsetUS   float64   `yaml:"offset-us"`
	Ant        int       `yaml:"ant"`
	Reps       int       `yaml:"reps"`
	CarrierSCS float64   `yaml:"carrier-scs"`
	IgnoreCFO  bool      `yaml:"ignore-cfo"`
	SNR        []float64 `yaml:"snr"`
}

type config struct {
	Trials  int           `yaml:"trials"`
	Workers int           `yaml:"workers"`
	Seed    int64         `yaml:"seed"`
	Plot    string        `yaml:"plot"`
	Points  []configPoint `yaml:"points"`
}

func loadConfig(fname string) (config, error) {
	var cfg config

	f, err := os.Open(fname)
	if err != nil {
		return cfg, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode %q: %w", fname, err)
	}

	if cfg.Trials < 1 {
		cfg.Trials = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if len(cfg.Points) == 0 {
		return cfg, fmt.Errorf("configuration %q holds no campaign point", fname)
	}

	return cfg, nil
}

func run(oname, cname string) error {
	cfg, err := loadConfig(cname)
	if err != nil {
		return fmt.Errorf("could not load campaign configuration: %w", err)
	}

	var w io.Writer = os.Stdout
	if oname != "" {
		o, err := os.Create(oname)
		if err != nil {
			return fmt.Errorf("could not create %q: %w", oname, err)
		}
		defer o.Close()
		w = o
	}

	var (
		det    = prach.New()
		metric = hbook.NewH1D(40, 0, 8)
	)

	fmt.Fprintf(w, "format,zcz,preamble,ant,snr_db,trials,pdet,pfa\n")
	for _, pt := range cfg.Points {
		occ, err := occasionOf(pt)
		if err != nil {
			return err
		}

		for _, snr := range pt.SNR {
			st, err := sim.Run(context.Background(), det, sim.Params{
				Occasion:  occ,
				Preamble:  pt.Preamble,
				OffsetUS:  pt.OffsetUS,
				SNRdB:     snr,
				IgnoreCFO: pt.IgnoreCFO,
				Trials:    cfg.Trials,
				Seed:      cfg.Seed,
				Workers:   cfg.Workers,
			})
			if err != nil {
				return fmt.Errorf("could not run campaign point (format=%v, snr=%g dB): %w",
					occ.Config.Format, snr, err,
				)
			}

			log.Printf("format=%v zcz=%d snr=%+6.1f dB: pdet=%5.3f pfa=%5.3f",
				occ.Config.Format, pt.ZCZ, snr, st.Pdet(), st.Pfa(),
			)
			fmt.Fprintf(w, "%v,%d,%d,%d,%g,%d,%g,%g\n",
				occ.Config.Format, pt.ZCZ, pt.Preamble, occ.NumAnt,
				snr, st.Trials, st.Pdet(), st.Pfa(),
			)

			metric = hbook.AddH1D(metric, st.Metric)
		}
	}

	if cfg.Plot != "" {
		err = plotMetric(cfg.Plot, metric)
		if err != nil {
			return fmt.Errorf("could not plot metric histogram: %w", err)
		}
		log.Printf("wrote %q", cfg.Plot)
	}

	return nil
}

func occasionOf(pt configPoint) (sim.Occasion, error) {
	f, err := prach.ParseFormat(pt.Format)
	if err != nil {
		return sim.Occasion{}, fmt.Errorf("invalid campaign point: %w", err)
	}

	carrier := pt.CarrierSCS
	if carrier == 0 {
		carrier = 15e3
	}

	scs := 1250.0
	switch {
	case f == prach.Format3:
		scs = 5e3
	case !f.Long():
		scs = carrier
	}

	ant := pt.Ant
	if ant < 1 {
		ant = 1
	}
	reps := pt.Reps
	if reps < 1 {
		reps = 1
	}

	return sim.Occasion{
		Carrier: prach.Carrier{SCS: carrier},
		Config: prach.Config{
			Format:        f,
			SCS:           scs,
			L:             f.SeqLen(),
			RestrictedSet: prach.Unrestricted,
			ZCZ:           pt.ZCZ,
			SequenceIndex: pt.SeqIdx,
		},
		Reps:   reps,
		NumAnt: ant,
	}, nil
}

func plotMetric(fname string, h *hbook.H1D) error {
	p := hplot.New()
	p.Title.Text = "Detection metric"
	p.X.Label.Text = "metric (dB)"
	p.Y.Label.Text = "detections"
	p.Add(hplot.NewH1D(h), hplot.NewGrid())

	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, fname)
}
