// SimBA simulates a genomic population: founder haplotype alleles are fitted
// per marker so that, projected through a random sample-to-founder haplotype
// map, the population reproduces the dosage distributions observed in a real
// VCF.
package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config{}
	flag.StringVar(&cfg.inputVCF, "input-vcf", "", "Input VCF file.")
	flag.StringVar(&cfg.outputVCF, "output-vcf", "", "Output VCF file. Default: stdout.")
	flag.IntVar(&cfg.ploidy, "ploidy", 4, "Organism ploidy.")
	flag.IntVar(&cfg.founders, "founders", 1, "Number of founders to simulate.")
	flag.IntVar(&cfg.samples, "samples", 0, "Number of samples to simulate. Default: all samples in the input VCF file.")
	flag.IntVar(&cfg.markers, "markers", 0, "Number of markers to use. Default: all markers in the input VCF file.")
	flag.Int64Var(&cfg.seed, "seed", 0, "Initial seed for pseudo-random number generation.")
	flag.BoolVar(&cfg.mip, "mip", false, "Compute optimal best-fit via Mixed-Integer Programming. Default: compute approximate fit via greedy descent.")
	verbose := flag.Bool("verbose", false, "Log per-marker fitting progress.")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.validate(); err != nil {
		log.Errorf("Invalid configuration: %s", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		log.Errorf("Error: %s", err)
		os.Exit(1)
	}
}
