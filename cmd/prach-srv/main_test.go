// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"math"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-nr/phytest/internal/vecfmt"
	"github.com/go-nr/phytest/prach"
	"github.com/go-nr/phytest/sim"
)

func TestServe(t *testing.T) {
	tmp, err := os.MkdirTemp("", "phytest-prach-srv-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	occ := sim.Occasion{
		Carrier: prach.Carrier{SCS: 15e3},
		Config: prach.Config{
			Format:        prach.Format0,
			SCS:           1250,
			L:             839,
			RestrictedSet: prach.Unrestricted,
			ZCZ:           1,
			SequenceIndex: 22,
		},
		Reps:   1,
		NumAnt: 2,
	}
	grid, err := sim.Synthesize(occ, 7, 1.5, 300, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("could not synthesize occasion: %+v", err)
	}

	fname := filepath.Join(tmp, "fmt0-zcz1-pre7.prv")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create vector file: %+v", err)
	}
	defer f.Close()
	err = vecfmt.NewEncoder(f).Encode(&vecfmt.Vector{
		Carrier: occ.Carrier,
		Config:  occ.Config,
		Reps:    occ.Reps,
		Samples: grid,
	})
	if err != nil {
		t.Fatalf("could not encode vector: %+v", err)
	}
	err = f.Close()
	if err != nil {
		t.Fatalf("could not close vector file: %+v", err)
	}

	srv, err := newServer("127.0.0.1:0", tmp)
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	go func() { _ = srv.serve() }()
	defer srv.close()

	conn, err := net.DialTimeout("tcp", srv.ctl.Addr().String(), 5*time.Second)
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)
	send := func(name string, args interface{}) reply {
		t.Helper()
		req := struct {
			Name string      `json:"name"`
			Args interface{} `json:"args,omitempty"`
		}{Name: name, Args: args}
		if err := enc.Encode(req); err != nil {
			t.Fatalf("could not send %q request: %+v", name, err)
		}
		var rep reply
		if err := dec.Decode(&rep); err != nil {
			t.Fatalf("could not read %q reply: %+v", name, err)
		}
		return rep
	}

	rep := send("detect", detectArgs{Path: "fmt0-zcz1-pre7.prv"})
	if got, want := rep.Msg, "ok"; got != want {
		t.Fatalf("invalid detect reply: got=%q, want=%q", got, want)
	}
	if got, want := len(rep.Detections), 1; got != want {
		t.Fatalf("invalid number of detections: got=%d, want=%d", got, want)
	}
	if got, want := rep.Detections[0].Preamble, 7; got != want {
		t.Fatalf("invalid preamble: got=%d, want=%d", got, want)
	}
	if got, want := rep.Detections[0].OffsetUS, 1.5625; math.Abs(got-want) > 1e-9 {
		t.Fatalf("invalid timing offset: got=%v us, want=%v us", got, want)
	}
	if got, want := rep.RSSI, -29.24; math.Abs(got-want) > 0.01 {
		t.Fatalf("invalid rssi: got=%v dB, want=%v dB", got, want)
	}

	rep = send("detect", detectArgs{Path: "not-there.prv"})
	if !strings.Contains(rep.Msg, "could not open") {
		t.Fatalf("invalid missing-file reply: got=%q", rep.Msg)
	}

	rep = send("boo", nil)
	if !strings.Contains(rep.Msg, `unknown command "boo"`) {
		t.Fatalf("invalid unknown-command reply: got=%q", rep.Msg)
	}

	rep = send("quit", nil)
	if got, want := rep.Msg, "ok"; got != want {
		t.Fatalf("invalid quit reply: got=%q, want=%q", got, want)
	}
}
