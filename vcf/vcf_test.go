package vcf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdemetci/SimBA/dosage"
)

const testVCF = `##fileformat=VCFv4.2
##contig=<ID=chr1>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2	S3
chr1	100	.	A	T	50	PASS	.	GT:DP	0/0:12	0/1:9	1/1:30
chr1	200	.	G	C,A	.	.	.	GT	0/0	0/0	0/0
chr2	300	.	T	G	.	.	.	GT	./.	1|1	0|1
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(testVCF), 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, f.NumSamples)
	assert.Equal(t, []string{"chr1", "chr2"}, f.Contigs)
	// The multi-allelic record at chr1:200 is skipped.
	require.Len(t, f.Markers, 2)

	first := f.Markers[0]
	assert.Equal(t, "chr1", first.Contig)
	assert.Equal(t, 100, first.Pos)
	assert.Equal(t, "A", first.Ref)
	assert.Equal(t, "T", first.Alt)
	assert.Equal(t, dosage.Distribution{1, 1, 1}, first.Target)

	// The unknown genotype at chr2:300 is excluded from the distribution.
	second := f.Markers[1]
	assert.Equal(t, 300, second.Pos)
	assert.Equal(t, dosage.Distribution{0, 1, 1}, second.Target)
}

func TestParseMarkerCap(t *testing.T) {
	f, err := Parse(strings.NewReader(testVCF), 2, 1)
	require.NoError(t, err)
	assert.Len(t, f.Markers, 1)
}

func TestParsePloidyMismatch(t *testing.T) {
	in := `#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1
chr1	100	.	A	T	.	.	.	GT	0/1/1
`
	_, err := Parse(strings.NewReader(in), 2, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chr1:100")
	assert.Contains(t, err.Error(), "ploidy")
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := &File{
		Contigs: []string{"chr1", "chr2"},
		Markers: []*Marker{
			{Contig: "chr1", Pos: 100, Ref: "A", Alt: "T"},
			{Contig: "chr2", Pos: 300, Ref: "T", Alt: "G"},
		},
	}
	sampleAlts := [][][]uint8{
		{{0, 1}, {1, 1}},
		{{0, 0}, {1, 0}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, sampleAlts))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "##fileformat=VCFv4.2\n"))
	assert.Contains(t, out, "##FORMAT=<ID=GT,")
	assert.Contains(t, out, "##contig=<ID=chr1>")
	assert.Contains(t, out, "SAMPLE_0\tSAMPLE_1")
	assert.Contains(t, out, "\t0|1\t1|1")

	back, err := Parse(strings.NewReader(out), 2, 0)
	require.NoError(t, err)
	require.Len(t, back.Markers, 2)
	assert.Equal(t, f.Contigs, back.Contigs)
	assert.Equal(t, 2, back.NumSamples)
	for i, marker := range back.Markers {
		assert.Equal(t, f.Markers[i].Contig, marker.Contig)
		assert.Equal(t, f.Markers[i].Pos, marker.Pos)
		assert.Equal(t, f.Markers[i].Ref, marker.Ref)
		assert.Equal(t, f.Markers[i].Alt, marker.Alt)
		assert.Equal(t, dosage.Build(sampleAlts[i], 2), marker.Target)
	}
}

func TestWriteMismatchedMarkers(t *testing.T) {
	f := &File{Markers: []*Marker{{Contig: "chr1", Pos: 1}}}
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, f, nil))
}
