package forecast

import "math/rand"

// denseLayer is a fully connected layer with linear activation.
type denseLayer struct {
	in     int
	out    int
	weight *param // out x in
	bias   *param // out
}

func newDenseLayer(in, out int, rng *rand.Rand) *denseLayer {
	d := &denseLayer{
		in:     in,
		out:    out,
		weight: newParam(out * in),
		bias:   newParam(out),
	}
	glorotUniform(d.weight.value, in, out, rng)
	return d
}

func (d *denseLayer) params() []*param {
	return []*param{d.weight, d.bias}
}

func (d *denseLayer) forward(x []float64) []float64 {
	y := make([]float64, d.out)
	for r := 0; r < d.out; r++ {
		y[r] = d.bias.value[r] + dot(d.weight.value[r*d.in:(r+1)*d.in], x)
	}
	return y
}

// backward accumulates weight gradients for input x and upstream gradient dy,
// and returns the gradient with respect to x.
func (d *denseLayer) backward(x, dy []float64) []float64 {
	dx := make([]float64, d.in)
	for r, g := range dy {
		d.bias.grad[r] += g
		w := d.weight.value[r*d.in : (r+1)*d.in]
		wg := d.weight.grad[r*d.in : (r+1)*d.in]
		for k, xv := range x {
			wg[k] += g * xv
			dx[k] += g * w[k]
		}
	}
	return dx
}

// dropoutMask draws an inverted-dropout mask: kept units are scaled by
// 1/(1-rate) so inference needs no rescaling.
func dropoutMask(n int, rate float64, rng *rand.Rand) []float64 {
	mask := make([]float64, n)
	keep := 1 - rate
	for i := range mask {
		if rng.Float64() < keep {
			mask[i] = 1 / keep
		}
	}
	return mask
}

func applyMask(v, mask []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * mask[i]
	}
	return out
}
