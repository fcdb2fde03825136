package dosage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	genotypes := [][]uint8{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
		{0, 0},
	}
	d := Build(genotypes, 2)
	assert.Equal(t, Distribution{2, 2, 1}, d)
}

func TestBuildEmpty(t *testing.T) {
	d := Build(nil, 4)
	assert.Equal(t, 5, len(d))
	assert.Equal(t, 0.0, d.Sum())
}

func TestNormalize(t *testing.T) {
	d := Distribution{2, 2, 1}
	d.Normalize(10)
	assert.InDelta(t, 10.0, d.Sum(), 1e-9)
	assert.InDelta(t, 4.0, d[0], 1e-9)
	assert.InDelta(t, 4.0, d[1], 1e-9)
	assert.InDelta(t, 2.0, d[2], 1e-9)
}

// Normalizing an already-normalized distribution to the same sample count
// must be a no-op within numeric tolerance.
func TestNormalizeIdempotent(t *testing.T) {
	d := Distribution{3, 1, 0, 2}
	d.Normalize(7)
	want := append(Distribution{}, d...)
	d.Normalize(7)
	for i := range d {
		assert.InDelta(t, want[i], d[i], 1e-9)
	}
}

func TestNormalizeRational(t *testing.T) {
	d := Distribution{1, 1, 1}
	d.Normalize(2)
	assert.InDelta(t, 2.0/3.0, d[0], 1e-9)
	assert.InDelta(t, 2.0, d.Sum(), 1e-9)
}

func TestNormalizeZeroSum(t *testing.T) {
	d := Distribution{0, 0, 0}
	d.Normalize(5)
	assert.Equal(t, 0.0, d.Sum())
}

func TestL1(t *testing.T) {
	a := Distribution{1, 0, 1}
	b := Distribution{2, 0, 0}
	assert.Equal(t, 2.0, L1(a, b))
	assert.Equal(t, 0.0, L1(a, a))
	assert.Equal(t, L1(a, b), L1(b, a))
}

func BenchmarkNormalizeDecimal(b *testing.B) {
	for i := 0; i < b.N; i++ {
		d := Distribution{17, 5, 3, 1, 0}
		d.Normalize(1000)
	}
}

func BenchmarkNormalizeFloat(b *testing.B) {
	for i := 0; i < b.N; i++ {
		d := Distribution{17, 5, 3, 1, 0}
		sum := d.Sum()
		for j, v := range d {
			d[j] = 1000 * v / sum
		}
		_ = d // Avoid compiler optimization
	}
}
