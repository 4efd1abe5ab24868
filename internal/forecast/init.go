package forecast

import (
	"math"
	"math/rand"
)

// glorotUniform fills w with U(-limit, limit), limit = sqrt(6/(fanIn+fanOut)).
func glorotUniform(w []float64, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
}

// orthogonal returns an n×n matrix with orthonormal rows, built by
// Gram-Schmidt over gaussian rows.
func orthogonal(n int, rng *rand.Rand) [][]float64 {
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		for {
			row := make([]float64, n)
			for j := range row {
				row[j] = rng.NormFloat64()
			}
			for k := 0; k < i; k++ {
				d := dot(row, rows[k])
				for j := range row {
					row[j] -= d * rows[k][j]
				}
			}
			norm := math.Sqrt(dot(row, row))
			if norm < 1e-8 {
				continue
			}
			for j := range row {
				row[j] /= norm
			}
			rows[i] = row
			break
		}
	}
	return rows
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
