package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/pdemetci/SimBA/dosage"
	"github.com/pdemetci/SimBA/hap"
)

const (
	intTol   = 1e-6
	boundTol = 1e-9
)

// MIP is the exact fitter. It formulates the per-marker assignment as a
// mixed-integer program and owns one persistent model shared across markers:
// founder columns f_j in {0,1}, per-sample per-dosage-level indicator columns
// i_sp in {0,1} with continuous errors e_sp >= 0, and integer dosage counts
// d_p = sum_s i_sp. Fitting a marker adds two temporary rows per dosage level
// linking an auxiliary z_p to |d_p - target_p|, minimizes sum z_p, and
// removes the rows again, so markers must be fitted sequentially.
//
// The integer search is a branch-and-bound over the LP relaxation, solved by
// gonum's simplex; branching fixes one fractional binary column per node.
type MIP struct {
	m         hap.Map
	nFounders int
	levels    int

	zOff, dOff, eOff, iOff, fOff int
	ncols                        int

	obj []float64

	eqRows [][]float64
	eqRHS  []float64
	leRows [][]float64
	leRHS  []float64

	// Columns required to be integral; d follows from i and is not branched.
	intCols []int
}

type colFix struct {
	col int
	val float64
}

func NewMIP(m hap.Map, nFounders int) *MIP {
	ploidy := m.Ploidy()
	nSamples := m.NumSamples()
	s := &MIP{m: m, nFounders: nFounders, levels: ploidy + 1}

	s.zOff = 0
	s.dOff = s.levels
	s.eOff = 2 * s.levels
	s.iOff = s.eOff + nSamples*s.levels
	s.fOff = s.iOff + nSamples*s.levels
	s.ncols = s.fOff + nFounders

	s.obj = make([]float64, s.ncols)
	for p := 0; p < s.levels; p++ {
		s.obj[s.zOff+p] = 1
	}

	// d_p = sum_s i_sp
	for p := 0; p < s.levels; p++ {
		row := make([]float64, s.ncols)
		row[s.dOff+p] = 1
		for sample := 0; sample < nSamples; sample++ {
			row[s.iOff+sample*s.levels+p] = -1
		}
		s.addEq(row, 0)
	}
	// sum_p i_sp = 1
	for sample := 0; sample < nSamples; sample++ {
		row := make([]float64, s.ncols)
		for p := 0; p < s.levels; p++ {
			row[s.iOff+sample*s.levels+p] = 1
		}
		s.addEq(row, 1)
	}
	// e_sp >= p - sum_h f, e_sp >= sum_h f - p, e_sp <= ploidy*(1 - i_sp)
	for sample, slots := range m {
		for p := 0; p < s.levels; p++ {
			e := s.eOff + sample*s.levels + p

			lower := make([]float64, s.ncols)
			lower[e] = -1
			for _, f := range slots {
				lower[s.fOff+f] -= 1
			}
			s.addLe(lower, float64(-p))

			upper := make([]float64, s.ncols)
			upper[e] = -1
			for _, f := range slots {
				upper[s.fOff+f] += 1
			}
			s.addLe(upper, float64(p))

			big := make([]float64, s.ncols)
			big[e] = 1
			big[s.iOff+sample*s.levels+p] = float64(ploidy)
			s.addLe(big, float64(ploidy))
		}
	}
	// Binary upper bounds.
	for sample := 0; sample < nSamples; sample++ {
		for p := 0; p < s.levels; p++ {
			col := s.iOff + sample*s.levels + p
			bound := make([]float64, s.ncols)
			bound[col] = 1
			s.addLe(bound, 1)
			s.intCols = append(s.intCols, col)
		}
	}
	for f := 0; f < nFounders; f++ {
		col := s.fOff + f
		bound := make([]float64, s.ncols)
		bound[col] = 1
		s.addLe(bound, 1)
		s.intCols = append(s.intCols, col)
	}
	return s
}

func (s *MIP) addEq(row []float64, rhs float64) {
	s.eqRows = append(s.eqRows, row)
	s.eqRHS = append(s.eqRHS, rhs)
}

func (s *MIP) addLe(row []float64, rhs float64) {
	s.leRows = append(s.leRows, row)
	s.leRHS = append(s.leRHS, rhs)
}

func (s *MIP) Fit(alts []uint8, target dosage.Distribution) (float64, error) {
	distance, x, err := s.solve(target)
	if err != nil {
		return 0, err
	}
	for f := range alts {
		alts[f] = uint8(math.Round(x[s.fOff+f]))
	}
	return distance, nil
}

// solve brackets the per-marker rows around the branch-and-bound: the
// temporary rows are removed on every exit path, solver failure included.
func (s *MIP) solve(target dosage.Distribution) (float64, []float64, error) {
	nFixed := len(s.leRows)
	// z_p >= d_p - t_p and z_p >= t_p - d_p
	for p := 0; p < s.levels; p++ {
		plus := make([]float64, s.ncols)
		plus[s.dOff+p] = 1
		plus[s.zOff+p] = -1
		s.addLe(plus, target[p])

		minus := make([]float64, s.ncols)
		minus[s.dOff+p] = -1
		minus[s.zOff+p] = -1
		s.addLe(minus, -target[p])
	}
	defer func() {
		s.leRows = s.leRows[:nFixed]
		s.leRHS = s.leRHS[:nFixed]
	}()

	best := math.Inf(1)
	var bestX []float64
	stack := [][]colFix{nil}
	for len(stack) > 0 {
		fixes := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		val, x, err := s.relax(fixes)
		if err == lp.ErrInfeasible {
			continue
		}
		if err != nil {
			return 0, nil, errors.Wrap(err, "relaxation")
		}
		if val >= best-boundTol {
			continue
		}
		branch := s.fractionalCol(x)
		if branch < 0 {
			best = val
			bestX = x
			continue
		}
		zero := append(append([]colFix{}, fixes...), colFix{branch, 0})
		one := append(append([]colFix{}, fixes...), colFix{branch, 1})
		stack = append(stack, zero, one)
	}
	if bestX == nil {
		return 0, nil, errors.New("no integral solution: the model must always admit one")
	}

	achieved := 0
	for p := 0; p < s.levels; p++ {
		achieved += int(math.Round(bestX[s.dOff+p]))
	}
	if achieved != s.m.NumSamples() {
		return 0, nil, errors.Errorf("achieved distribution sums to %d, want %d samples",
			achieved, s.m.NumSamples())
	}
	return best, bestX, nil
}

// relax solves the LP relaxation with the given binary columns fixed,
// converting to standard form with one slack column per inequality row.
// Fixes enter as inequalities (x <= 0, resp. -x <= -1) rather than
// equalities so every row keeps a private slack column and the matrix stays
// full row rank, which the simplex requires.
func (s *MIP) relax(fixes []colFix) (float64, []float64, error) {
	nLe := len(s.leRows) + len(fixes)
	rows := len(s.eqRows) + nLe
	cols := s.ncols + nLe

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	copy(c, s.obj)

	r := 0
	for i, row := range s.eqRows {
		setRow(a, r, row)
		b[r] = s.eqRHS[i]
		r++
	}
	slack := s.ncols
	for i, row := range s.leRows {
		setRow(a, r, row)
		a.Set(r, slack, 1)
		b[r] = s.leRHS[i]
		slack++
		r++
	}
	for _, fix := range fixes {
		if fix.val == 0 {
			a.Set(r, fix.col, 1)
			b[r] = 0
		} else {
			a.Set(r, fix.col, -1)
			b[r] = -1
		}
		a.Set(r, slack, 1)
		slack++
		r++
	}

	val, x, err := lp.Simplex(c, a, b, 1e-10, nil)
	if err != nil {
		return 0, nil, err
	}
	return val, x[:s.ncols], nil
}

// fractionalCol picks the most fractional branchable column, or -1 when the
// solution is integral.
func (s *MIP) fractionalCol(x []float64) int {
	branch := -1
	score := intTol
	for _, col := range s.intCols {
		frac := math.Abs(x[col] - math.Round(x[col]))
		if frac > score {
			score = frac
			branch = col
		}
	}
	return branch
}

func setRow(a *mat.Dense, r int, row []float64) {
	for j, v := range row {
		if v != 0 {
			a.Set(r, j, v)
		}
	}
}
