// Package solver fits founder allele vectors to target dosage distributions,
// one marker at a time.
package solver

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pdemetci/SimBA/dosage"
)

// Fitter mutates a founder allele vector in place so that the dosage
// distribution it induces approaches the target, and returns the achieved L1
// distance. Implementations: Descent (greedy) and MIP (exact).
type Fitter interface {
	Fit(alts []uint8, target dosage.Distribution) (float64, error)
}

// Result aggregates one fitting pass over all markers.
type Result struct {
	Distances     []float64
	TotalDistance float64
	Elapsed       time.Duration
}

// FitAll runs the fitter over every marker in input order. Markers are
// processed strictly sequentially: the MIP fitter mutates and restores one
// shared model per marker.
func FitAll(fitter Fitter, alts [][]uint8, targets []dosage.Distribution) (*Result, error) {
	start := time.Now()
	res := &Result{Distances: make([]float64, len(targets))}
	for i := range targets {
		d, err := fitter.Fit(alts[i], targets[i])
		if err != nil {
			return nil, errors.Wrapf(err, "fitting marker %d", i)
		}
		log.Debugf("Marker %d: distance %f", i, d)
		res.Distances[i] = d
		res.TotalDistance += d
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Log reports the pass outcome: total and per-marker distance statistics and
// wall time.
func (r *Result) Log() {
	mean, err := stats.Mean(r.Distances)
	if err != nil {
		mean = 0
	}
	max, err := stats.Max(r.Distances)
	if err != nil {
		max = 0
	}
	log.Infof("Fitted %d markers in %.3fs: total distance %f, mean %f, max %f",
		len(r.Distances), r.Elapsed.Seconds(), r.TotalDistance, mean, max)
}
