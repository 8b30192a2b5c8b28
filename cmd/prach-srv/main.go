// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command prach-srv runs the preamble-detection service: it accepts
// JSON commands over TCP, decodes occasion vector files and replies
// with the detected preambles.
package main // import "github.com/go-nr/phytest/cmd/prach-srv"

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-nr/phytest/caldb"
	"github.com/go-nr/phytest/internal/vecfmt"
	"github.com/go-nr/phytest/prach"
)

func main() {
	log.SetPrefix("prach-srv: ")
	log.SetFlags(0)

	var (
		addr   = flag.String("addr", ":8867", "[ip]:port to listen on")
		dir    = flag.String("dir", "", "directory holding the occasion vector files")
		dbname = flag.String("caldb", "", "calibration database to load thresholds from (optional)")
	)

	flag.Parse()

	err := run(*addr, *dir, *dbname)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(addr, dir, dbname string) error {
	var opts []prach.Option
	if dbname != "" {
		tbl, err := loadThresholds(dbname)
		if err != nil {
			return fmt.Errorf("could not load calibration thresholds: %w", err)
		}
		opts = append(opts, prach.WithThresholds(tbl))
	}

	srv, err := newServer(addr, dir, opts...)
	if err != nil {
		return fmt.Errorf("could not create prach-srv server: %w", err)
	}
	log.Printf("serving detection requests on %q...", addr)
	return srv.serve()
}

func loadThresholds(dbname string) (prach.ThresholdTable, error) {
	db, err := caldb.Open(dbname)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	campaign, err := db.LastCampaign(ctx)
	if err != nil {
		return nil, err
	}
	return db.Thresholds(ctx, campaign)
}

// server serves preamble-detection requests over TCP.
type server struct {
	ctl net.Listener

	msg *log.Logger
	dir string
	det *prach.Detector
}

func newServer(addr, dir string, opts ...prach.Option) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %q: %w", addr, err)
	}

	msg := log.New(os.Stdout, "prach-srv: ", 0)
	opts = append([]prach.Option{prach.WithLogger(msg)}, opts...)

	return &server{
		ctl: ctl,
		msg: msg,
		dir: dir,
		det: prach.New(opts...),
	}, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not serve %v: %+v", conn.RemoteAddr(), err)
			continue
		}
	}
}

type detectArgs struct {
	Path      string `json:"path"`
	IgnoreCFO bool   `json:"ignore-cfo"`
}

type detection struct {
	Preamble int     `json:"preamble"`
	OffsetUS float64 `json:"offset_us"`
	SINR     float64 `json:"sinr_db"`
}

type reply struct {
	Msg        string      `json:"msg"`
	RSSI       float64     `json:"rssi_db,omitempty"`
	Detections []detection `json:"detections,omitempty"`
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err := json.NewDecoder(conn).Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, reply{}, err)
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		switch req.Name {
		case "detect":
			var args detectArgs
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, reply{}, err)
				continue
			}

			rep, err := srv.detect(args)
			if err != nil {
				srv.msg.Printf("could not run detection: %+v", err)
			}
			srv.reply(conn, rep, err)

		case "quit":
			srv.reply(conn, reply{}, nil)
			break loop

		default:
			err = fmt.Errorf("unknown command %q", req.Name)
			srv.msg.Printf("%+v", err)
			srv.reply(conn, reply{}, err)
		}
	}

	return nil
}

func (srv *server) detect(args detectArgs) (reply, error) {
	fname := args.Path
	if srv.dir != "" {
		fname = filepath.Join(srv.dir, filepath.Base(fname))
	}

	f, err := os.Open(fname)
	if err != nil {
		return reply{}, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var (
		rep reply
		dec = vecfmt.NewDecoder(f)
	)
	for {
		var vec vecfmt.Vector
		err := dec.Decode(&vec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return reply{}, fmt.Errorf("could not decode occasion from %q: %w", fname, err)
		}

		res, err := srv.det.Detect(vec.Carrier, vec.Config, vec.Samples, args.IgnoreCFO)
		if err != nil {
			return reply{}, fmt.Errorf("could not detect preambles in %q: %w", fname, err)
		}

		rep.RSSI = res.RSSI
		for i, hit := range res.Indices {
			if !hit {
				continue
			}
			rep.Detections = append(rep.Detections, detection{
				Preamble: i,
				OffsetUS: res.Offsets[i],
				SINR:     res.SINR[i],
			})
		}
	}

	return rep, nil
}

func (srv *server) reply(conn net.Conn, rep reply, err error) {
	rep.Msg = "ok"
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
