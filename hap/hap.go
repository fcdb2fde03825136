// Package hap simulates the assignment of sample haplotypes to founders and
// projects founder alleles back onto samples.
package hap

import (
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pdemetci/SimBA/dosage"
)

// Map assigns every haplotype slot of every sample to a founder:
// Map[sample][slot] is a founder index. Built once per run, read-only after.
type Map [][]int

func (m Map) NumSamples() int {
	return len(m)
}

func (m Map) Ploidy() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// SimulateMultiplicities assigns multiplicity 1 to every founder, then
// distributes the remaining nSamples*ploidy - nFounders haplotypes uniformly
// at random. Every founder ends up contributing at least one haplotype.
func SimulateMultiplicities(nFounders, nSamples, ploidy int, r *rand.Rand) ([]int, error) {
	if nFounders > nSamples*ploidy {
		return nil, errors.Errorf("%d founders cannot fit into %d samples with ploidy %d",
			nFounders, nSamples, ploidy)
	}
	multiplicities := make([]int, nFounders)
	for f := range multiplicities {
		multiplicities[f] = 1
	}
	for i := 0; i < nSamples*ploidy-nFounders; i++ {
		multiplicities[r.Intn(nFounders)]++
	}
	log.Debugf("Founder multiplicities: %v", multiplicities)
	return multiplicities, nil
}

// Simulate materializes the haplotype map: founder f appears exactly
// multiplicities[f] times in a flat array of length nSamples*ploidy, which is
// shuffled and reshaped into [sample][slot].
func Simulate(multiplicities []int, nSamples, ploidy int, r *rand.Rand) Map {
	flat := make([]int, 0, nSamples*ploidy)
	for f, count := range multiplicities {
		for i := 0; i < count; i++ {
			flat = append(flat, f)
		}
	}
	for i := len(flat) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		flat[i], flat[j] = flat[j], flat[i]
	}
	m := make(Map, nSamples)
	for s := 0; s < nSamples; s++ {
		m[s] = flat[s*ploidy : (s+1)*ploidy]
	}
	return m
}

// Dosages recomputes the dosage distribution that the founder alleles induce
// on the samples through the map.
func Dosages(m Map, alts []uint8) dosage.Distribution {
	d := dosage.NewDistribution(m.Ploidy())
	for _, slots := range m {
		dose := 0
		for _, f := range slots {
			if alts[f] == 1 {
				dose++
			}
		}
		d[dose]++
	}
	return d
}

// SampleAlts expands founder alleles into per-sample, per-slot allele values,
// the shape the output writer consumes.
func SampleAlts(m Map, alts []uint8) [][]uint8 {
	samples := make([][]uint8, m.NumSamples())
	for s, slots := range m {
		samples[s] = make([]uint8, len(slots))
		for h, f := range slots {
			samples[s][h] = alts[f]
		}
	}
	return samples
}
