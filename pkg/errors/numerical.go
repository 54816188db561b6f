package errors

import "math"

// maxReportedValues caps how many offending values an error carries.
const maxReportedValues = 10

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckNumericalStability returns a NumericalInstabilityError if values
// holds any NaN or ±Inf. iteration is the optimizer step, 0 outside loops.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	var bad []float64
	for _, v := range values {
		if !finite(v) {
			bad = append(bad, v)
			if len(bad) == maxReportedValues {
				break
			}
		}
	}
	if bad == nil {
		return nil
	}
	return NewNumericalInstabilityError(operation, bad, iteration)
}

// CheckScalar is CheckNumericalStability for one value, e.g. a loss.
func CheckScalar(operation string, value float64, iteration int) error {
	if finite(value) {
		return nil
	}
	return NewNumericalInstabilityError(operation, []float64{value}, iteration)
}

// CheckMatrix scans a rows×cols matrix row by row and reports the
// non-finite cells of the first row that has any.
func CheckMatrix(operation string, m interface{ At(int, int) float64 }, rows, cols, iteration int) error {
	for i := 0; i < rows; i++ {
		var bad []float64
		for j := 0; j < cols && len(bad) < maxReportedValues; j++ {
			if v := m.At(i, j); !finite(v) {
				bad = append(bad, v)
			}
		}
		if bad != nil {
			return NewNumericalInstabilityError(operation, bad, iteration)
		}
	}
	return nil
}

// ClipValue clamps value to [lo, hi].
func ClipValue(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(value, hi))
}
