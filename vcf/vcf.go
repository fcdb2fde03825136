// Package vcf reads and writes the GT-only, biallelic subset of VCF that the
// simulator consumes and produces.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pdemetci/SimBA/dosage"
)

const (
	chromIdx  = 0
	posIdx    = 1
	idIdx     = 2
	refIdx    = 3
	altIdx    = 4
	formatIdx = 8
	sampleIdx = 9
)

// Marker is one biallelic variant together with the dosage distribution
// observed among the input samples. Immutable after load, except that the
// caller normalizes Target to the simulated sample count.
type Marker struct {
	Contig string
	Pos    int
	Ref    string
	Alt    string
	Target dosage.Distribution
}

// File is the loaded marker set.
type File struct {
	Contigs    []string
	Markers    []*Marker
	NumSamples int
}

// Read loads up to maxMarkers markers (0 = all) from path. Multi-allelic
// records are skipped with a log line; unknown genotypes are excluded from
// their marker's distribution; a genotype whose allele count differs from
// ploidy aborts the load.
func Read(path string, ploidy, maxMarkers int) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	f, err := Parse(in, ploidy, maxMarkers)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

func Parse(r io.Reader, ploidy, maxMarkers int) (*File, error) {
	f := &File{}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#") {
			fields := strings.Split(line, "\t")
			if len(fields) > sampleIdx {
				f.NumSamples = len(fields) - sampleIdx
			}
			continue
		}
		if line == "" {
			continue
		}
		if maxMarkers > 0 && len(f.Markers) == maxMarkers {
			break
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= formatIdx {
			return nil, errors.Errorf("record with %d fields, want at least %d", len(fields), formatIdx+1)
		}
		pos, err := strconv.Atoi(fields[posIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "position %q", fields[posIdx])
		}
		if strings.Contains(fields[altIdx], ",") {
			log.Infof("Skipping multi-allelic marker %s:%d", fields[chromIdx], pos)
			continue
		}

		target := dosage.NewDistribution(ploidy)
		for _, column := range fields[sampleIdx:] {
			genotype, unknown, err := parseGenotype(column)
			if err != nil {
				return nil, errors.Wrapf(err, "marker %s:%d", fields[chromIdx], pos)
			}
			if unknown {
				log.Debugf("Unknown genotype at %s:%d", fields[chromIdx], pos)
				continue
			}
			if len(genotype) != ploidy {
				return nil, errors.Errorf("marker %s:%d: genotype has %d alleles, configured ploidy is %d",
					fields[chromIdx], pos, len(genotype), ploidy)
			}
			dose := 0
			for _, allele := range genotype {
				if allele == 1 {
					dose++
				}
			}
			target[dose]++
		}

		if !seen[fields[chromIdx]] {
			seen[fields[chromIdx]] = true
			f.Contigs = append(f.Contigs, fields[chromIdx])
		}
		f.Markers = append(f.Markers, &Marker{
			Contig: fields[chromIdx],
			Pos:    pos,
			Ref:    fields[refIdx],
			Alt:    fields[altIdx],
			Target: target,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseGenotype reads the GT field (the first colon-separated field of a
// sample column) into allele values. Any '.' allele marks the genotype
// unknown.
func parseGenotype(column string) ([]uint8, bool, error) {
	gt := column
	if i := strings.IndexByte(column, ':'); i >= 0 {
		gt = column[:i]
	}
	parts := strings.FieldsFunc(gt, func(r rune) bool {
		return r == '/' || r == '|'
	})
	genotype := make([]uint8, 0, len(parts))
	for _, part := range parts {
		if part == "." {
			return nil, true, nil
		}
		allele, err := strconv.Atoi(part)
		if err != nil {
			return nil, false, errors.Wrapf(err, "allele %q", part)
		}
		genotype = append(genotype, uint8(allele))
	}
	return genotype, false, nil
}

// Write emits the simulated population: the fixed two-field header, one
// contig declaration per contig, and per marker one record whose genotype
// columns join each sample's slot-ordered alleles with '|'.
func Write(w io.Writer, f *File, sampleAlts [][][]uint8) error {
	if len(sampleAlts) != len(f.Markers) {
		return errors.Errorf("%d allele sets for %d markers", len(sampleAlts), len(f.Markers))
	}
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "##fileformat=VCFv4.2")
	fmt.Fprintln(out, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	for _, contig := range f.Contigs {
		fmt.Fprintf(out, "##contig=<ID=%s>\n", contig)
	}

	nSamples := 0
	if len(sampleAlts) > 0 {
		nSamples = len(sampleAlts[0])
	}
	out.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for s := 0; s < nSamples; s++ {
		fmt.Fprintf(out, "\tSAMPLE_%d", s)
	}
	out.WriteByte('\n')

	var sb strings.Builder
	for i, marker := range f.Markers {
		fmt.Fprintf(out, "%s\t%d\t%d\t%s\t%s\t.\t.\t.\tGT",
			marker.Contig, marker.Pos, i, marker.Ref, marker.Alt)
		for _, alleles := range sampleAlts[i] {
			sb.Reset()
			sb.WriteByte('\t')
			for h, allele := range alleles {
				if h > 0 {
					sb.WriteByte('|')
				}
				sb.WriteString(strconv.Itoa(int(allele)))
			}
			out.WriteString(sb.String())
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

// WriteFile writes to path, or to stdout when path is empty.
func WriteFile(path string, f *File, sampleAlts [][][]uint8) error {
	if path == "" {
		return Write(os.Stdout, f, sampleAlts)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, sampleAlts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
