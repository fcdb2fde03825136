package dosage

import (
	"math"

	"github.com/ericlagergren/decimal"
	"github.com/pdemetci/SimBA/params"
)

// Ctx is the decimal context shared by all normalization arithmetic.
var Ctx = decimal.Context{Precision: params.Precision}

// Distribution is a histogram over alternate-allele dosages: entry i holds
// the number of samples carrying exactly i alternate copies, i = 0..ploidy.
// After Normalize the entries are rational-valued rather than integral.
type Distribution []float64

func NewDistribution(ploidy int) Distribution {
	return make(Distribution, ploidy+1)
}

func (d Distribution) Ploidy() int {
	return len(d) - 1
}

func (d Distribution) Sum() float64 {
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	return sum
}

// Build counts dosage occurrences among the sample genotypes. Genotypes must
// already be filtered to known values of length ploidy.
func Build(genotypes [][]uint8, ploidy int) Distribution {
	d := NewDistribution(ploidy)
	for _, genotype := range genotypes {
		dose := 0
		for _, allele := range genotype {
			if allele == 1 {
				dose++
			}
		}
		d[dose]++
	}
	return d
}

// Normalize rescales every entry by targetN/sum so that distributions taken
// from differently sized populations are comparable. targetN/sum is rational,
// so the rescale runs through decimal arithmetic.
func (d Distribution) Normalize(targetN int) {
	sum := decimal.WithContext(Ctx)
	for _, v := range d {
		sum.Add(sum, decimal.WithContext(Ctx).SetFloat64(v))
	}
	if sum.Sign() == 0 {
		return
	}
	n := decimal.WithContext(Ctx).SetMantScale(int64(targetN), 0)
	for i, v := range d {
		e := decimal.WithContext(Ctx).SetFloat64(v)
		e.Mul(e, n)
		e.Quo(e, sum)
		f, _ := e.Float64()
		d[i] = f
	}
}

// L1 returns the elementwise absolute-difference sum between a and b, the
// fitting objective and fit-quality metric.
func L1(a, b Distribution) float64 {
	distance := 0.0
	for i := range a {
		distance += math.Abs(a[i] - b[i])
	}
	return distance
}
