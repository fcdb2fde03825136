package params

// Ploidy bounds supported by the simulator.
const (
	MinPloidy = 2
	MaxPloidy = 8
)

// Precision of the decimal context used when rescaling dosage counts.
const Precision = 20

const DefaultSeed = 0
