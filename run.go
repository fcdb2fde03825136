package main

import (
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pdemetci/SimBA/dosage"
	"github.com/pdemetci/SimBA/hap"
	"github.com/pdemetci/SimBA/params"
	"github.com/pdemetci/SimBA/solver"
	"github.com/pdemetci/SimBA/vcf"
)

type config struct {
	inputVCF  string
	outputVCF string
	ploidy    int
	founders  int
	samples   int
	markers   int
	seed      int64
	mip       bool
}

func (c config) validate() error {
	if c.inputVCF == "" {
		return errors.New("an input VCF file is required")
	}
	if c.ploidy < params.MinPloidy || c.ploidy > params.MaxPloidy {
		return errors.Errorf("ploidy %d outside the supported range %d-%d",
			c.ploidy, params.MinPloidy, params.MaxPloidy)
	}
	if c.founders < 1 {
		return errors.New("at least one founder is required")
	}
	if c.samples < 0 || c.markers < 0 {
		return errors.New("sample and marker counts cannot be negative")
	}
	return nil
}

func run(cfg config) error {
	f, err := vcf.Read(cfg.inputVCF, cfg.ploidy, cfg.markers)
	if err != nil {
		return errors.Wrap(err, "loading markers")
	}
	log.Infof("Loaded %d markers over %d contigs from %s", len(f.Markers), len(f.Contigs), cfg.inputVCF)

	nSamples := cfg.samples
	if nSamples == 0 {
		nSamples = f.NumSamples
	}
	if cfg.founders > nSamples*cfg.ploidy {
		return errors.Errorf("%d founders cannot fit into %d samples with ploidy %d",
			cfg.founders, nSamples, cfg.ploidy)
	}

	// Make distributions from the input population comparable with the
	// simulated one.
	targets := make([]dosage.Distribution, len(f.Markers))
	for i, marker := range f.Markers {
		marker.Target.Normalize(nSamples)
		targets[i] = marker.Target
	}

	r := rand.New(rand.NewSource(cfg.seed))
	multiplicities, err := hap.SimulateMultiplicities(cfg.founders, nSamples, cfg.ploidy, r)
	if err != nil {
		return err
	}
	m := hap.Simulate(multiplicities, nSamples, cfg.ploidy, r)

	alts := make([][]uint8, len(f.Markers))
	for i := range alts {
		alts[i] = make([]uint8, cfg.founders)
	}

	var fitter solver.Fitter
	if cfg.mip {
		fitter = solver.NewMIP(m, cfg.founders)
	} else {
		fitter = solver.NewDescent(m)
	}
	res, err := solver.FitAll(fitter, alts, targets)
	if err != nil {
		return err
	}
	res.Log()

	sampleAlts := make([][][]uint8, len(f.Markers))
	for i := range alts {
		sampleAlts[i] = hap.SampleAlts(m, alts[i])
	}
	return vcf.WriteFile(cfg.outputVCF, f, sampleAlts)
}
