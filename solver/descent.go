package solver

import (
	"math"

	"github.com/pdemetci/SimBA/dosage"
	"github.com/pdemetci/SimBA/hap"
)

// Descent is the greedy local-search fitter. Starting from the all-zero
// vector, each round probes every founder still at 0 by tentatively setting
// it to 1 and commits the flip with the smallest probed distance, lowest
// founder index on ties. A committed founder is never revisited. The descent
// stops as soon as the best probe is not strictly better than the current
// distance, so it terminates within nFounders rounds but is not guaranteed
// optimal.
type Descent struct {
	m      hap.Map
	probes []float64
}

func NewDescent(m hap.Map) *Descent {
	return &Descent{m: m}
}

func (d *Descent) Fit(alts []uint8, target dosage.Distribution) (float64, error) {
	for f := range alts {
		alts[f] = 0
	}
	if len(d.probes) != len(alts) {
		d.probes = make([]float64, len(alts))
	}
	distance := dosage.L1(target, hap.Dosages(d.m, alts))

	for ones := 0; ones < len(alts); ones++ {
		for f := range alts {
			if alts[f] == 1 {
				d.probes[f] = math.MaxFloat64
				continue
			}
			alts[f] = 1
			d.probes[f] = dosage.L1(target, hap.Dosages(d.m, alts))
			alts[f] = 0
		}
		best := 0
		for f := 1; f < len(d.probes); f++ {
			if d.probes[f] < d.probes[best] {
				best = f
			}
		}
		// A tie counts as no improvement.
		if d.probes[best] >= distance {
			break
		}
		distance = d.probes[best]
		alts[best] = 1
	}
	return distance, nil
}
