// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import (
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Detector detects random-access preambles in PRACH occasions.
//
// A Detector is a pure computation over one occasion at a time: it
// holds only read-only state (calibration tables, the sequence
// generator) and may be shared across goroutines, one occasion per
// call.
type Detector struct {
	msg  *log.Logger
	gen  RootSequencer
	thrs ThresholdTable
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for calibration warnings.
func WithLogger(msg *log.Logger) Option {
	return func(det *Detector) {
		det.msg = msg
	}
}

// WithSequencer sets the ideal root-sequence generator.
func WithSequencer(gen RootSequencer) Option {
	return func(det *Detector) {
		det.gen = gen
	}
}

// WithThresholds sets the detection-threshold calibration table.
func WithThresholds(tbl ThresholdTable) Option {
	return func(det *Detector) {
		det.thrs = tbl
	}
}

// New creates a preamble detector with the built-in calibration
// tables and the standards-based sequence generator.
func New(opts ...Option) *Detector {
	det := &Detector{
		msg:  log.New(os.Stderr, "prach: ", 0),
		gen:  zcSequencer{},
		thrs: builtinThresholds,
	}
	for _, opt := range opts {
		opt(det)
	}
	return det
}

// Detect scans the occasion grid for the 64 candidate preambles of
// cfg and returns, for each detected preamble, its timing offset and
// detection metric, together with the RSSI of the whole occasion.
//
// The grid holds LRA·replicas rows and one column per antenna port.
// With ignoreCFO, the replicas are coherently averaged per antenna
// before correlation.
func (det *Detector) Detect(carrier Carrier, cfg Config, grid *mat.CDense, ignoreCFO bool) (Result, error) {
	if cfg.RestrictedSet != Unrestricted {
		return Result{}, fmt.Errorf("%w (set=%v)", ErrRestrictedSet, cfg.RestrictedSet)
	}
	if cfg.Format < 0 || cfg.Format >= numFormats {
		return Result{}, fmt.Errorf("prach: unknown preamble format %v", cfg.Format)
	}

	wi, err := Windows(cfg, carrier.Mu())
	if err != nil {
		return Result{}, err
	}

	pre, err := preprocess(grid, cfg.L, ignoreCFO)
	if err != nil {
		return Result{}, err
	}

	_, nAnt := grid.Dims()
	thr := det.threshold(nAnt, cfg, ignoreCFO)

	var (
		nfft   = cfg.Format.DFTSize()
		fft    = fourier.NewCmplxFFT(nfft)
		ratio  = float64(nfft) / float64(cfg.L)
		res    = newResult()
		energy = make([]float64, nfft)
		winscl = make([]float64, nfft)
		dchirp = make([]complex128, nfft)
		coeff  = make([]complex128, nfft)
	)
	res.RSSI = rssi(grid, cfg.L)

	remaining := NumPreambles
	for seq := 0; seq < wi.NumSequences && remaining > 0; seq++ {
		scfg := cfg
		scfg.PreambleIndex = seq * wi.NumShifts

		root, err := det.gen.RootSequence(carrier, scfg)
		if err != nil {
			return Result{}, fmt.Errorf("prach: could not generate root sequence %d: %w", seq, err)
		}
		if len(root) != cfg.L {
			return Result{}, fmt.Errorf(
				"prach: root sequence %d has length %d, want %d",
				seq, len(root), cfg.L,
			)
		}

		det.profiles(fft, root, pre, dchirp, coeff, energy, winscl)

		nWin := wi.NumShifts
		if remaining < nWin {
			nWin = remaining
		}
		for win := 0; win < nWin; win++ {
			var (
				start = int(math.Round(float64(wi.Starts[win]) * ratio))
				width = int(math.Round(float64(wi.Widths[win]) * ratio))
			)
			metric, delay := det.windowMetric(energy, winscl, start, width, thr.Margin)

			// peaks in the last fifth of a window are leakage
			// from the neighbouring shift, not detections.
			if delay*5 >= width*4 {
				continue
			}
			if metric <= thr.Value {
				continue
			}

			idx := seq*wi.NumShifts + win
			res.Indices[idx] = true
			res.Offsets[idx] = float64(delay) / (float64(nfft) * cfg.SCS) * 1e6
			res.SINR[idx] = 10 * math.Log10(metric)
		}
		remaining -= wi.NumShifts
	}

	return res, nil
}

// profiles correlates the preprocessed occasion columns against the
// conjugated root sequence and accumulates, over all columns, the
// delay-domain energy profile and its sinc-equivalent copy.
func (det *Detector) profiles(fft *fourier.CmplxFFT, root []complex128, pre *mat.CDense, dchirp, coeff []complex128, energy, winscl []float64) {
	var (
		l      = len(root)
		nfft   = len(dchirp)
		invL   = complex(1/float64(l), 0)
		scale  = 1 / float64(nfft)
		mid    = (nfft - l) / 2
		sinceq = float64(nfft) / float64(l)
	)

	for i := range energy {
		energy[i] = 0
	}

	_, cols := pre.Dims()
	for c := 0; c < cols; c++ {
		for i := range dchirp {
			dchirp[i] = 0
		}
		// matched-filter multiply, centered in the transform so
		// that positive and negative delay bins surround DC.
		for k := 0; k < l; k++ {
			dchirp[mid+k] = cmplx.Conj(root[k]) * pre.At(k, c) * invL
		}
		coeff = fft.Coefficients(coeff, dchirp)
		for n, v := range coeff {
			re, im := real(v), imag(v)
			energy[n] += (re*re + im*im) * scale
		}
	}

	for n, e := range energy {
		winscl[n] = e * sinceq
	}
}

// windowMetric computes the detection statistic of one shift window:
// the ratio of the in-window energy of the sinc-equivalent profile to
// the residual energy of the margin-extended window. It returns the
// metric and the peak position relative to the window start.
func (det *Detector) windowMetric(energy, winscl []float64, start, width, margin int) (float64, int) {
	nfft := len(energy)

	var (
		sumWin float64
		peak   float64
		delay  int
	)
	for j := 0; j < width; j++ {
		v := winscl[(start+j)%nfft]
		sumWin += v
		if v > peak {
			peak = v
			delay = j
		}
	}

	var sumRef float64
	for j := -margin; j < width+margin; j++ {
		sumRef += energy[(start+j+nfft)%nfft]
	}

	den := math.Abs(sumRef - sumWin)
	switch {
	case sumWin == 0:
		return 0, delay
	case den == 0:
		return math.Inf(1), delay
	}
	return sumWin / den, delay
}

// threshold returns the calibrated threshold of the working point, or
// the conservative per-class default when the point is uncalibrated.
func (det *Detector) threshold(nAnt int, cfg Config, ignoreCFO bool) Threshold {
	key := ThresholdKey{
		NumAnt:  nAnt,
		Long:    cfg.Format.Long(),
		ZCZZero: cfg.ZCZ == 0,
		NoCFO:   ignoreCFO,
	}
	if thr, ok := det.thrs.Lookup(key); ok {
		return thr
	}
	thr := fallbackThresholds[key.Long]
	det.msg.Printf(
		"no threshold calibrated for nant=%d format=%v zcz=%d ignore-cfo=%v, using default %.2f",
		nAnt, cfg.Format, cfg.ZCZ, ignoreCFO, thr.Value,
	)
	return thr
}

// rssi measures the received signal strength over the whole occasion.
func rssi(grid *mat.CDense, l int) float64 {
	rows, cols := grid.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := grid.At(i, j)
			re, im := real(v), imag(v)
			sum += re*re + im*im
		}
	}
	mean := sum / float64(rows*cols)
	return 10 * math.Log10(mean/float64(l))
}
