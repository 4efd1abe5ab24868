package forecast

import (
	"math"
	"math/rand"
)

// Gate blocks inside the stacked 4H pre-activation vector.
const (
	gateInput = iota
	gateForget
	gateCell
	gateOutput
	gateCount
)

// lstmLayer is a single recurrent layer. Weights for the four gates are
// stacked row-wise: row g*hidden+j belongs to unit j of gate g.
type lstmLayer struct {
	in        int
	hidden    int
	kernel    *param // 4H x in
	recurrent *param // 4H x H
	bias      *param // 4H
}

func newLSTMLayer(in, hidden int, rng *rand.Rand) *lstmLayer {
	l := &lstmLayer{
		in:        in,
		hidden:    hidden,
		kernel:    newParam(gateCount * hidden * in),
		recurrent: newParam(gateCount * hidden * hidden),
		bias:      newParam(gateCount * hidden),
	}

	glorotUniform(l.kernel.value, in, gateCount*hidden, rng)
	for g := 0; g < gateCount; g++ {
		block := orthogonal(hidden, rng)
		for j := 0; j < hidden; j++ {
			row := (g*hidden + j) * hidden
			copy(l.recurrent.value[row:row+hidden], block[j])
		}
	}
	// forget gate starts open
	for j := 0; j < hidden; j++ {
		l.bias.value[gateForget*hidden+j] = 1
	}
	return l
}

func (l *lstmLayer) params() []*param {
	return []*param{l.kernel, l.recurrent, l.bias}
}

// lstmStep keeps the activations of one time step for backpropagation.
type lstmStep struct {
	x, hPrev, cPrev []float64
	i, f, g, o      []float64
	c, tanhC, h     []float64
}

type lstmCache struct {
	steps []lstmStep
}

// outputs returns the hidden state at every time step.
func (c *lstmCache) outputs() [][]float64 {
	out := make([][]float64, len(c.steps))
	for t, s := range c.steps {
		out[t] = s.h
	}
	return out
}

// last returns the hidden state after the final time step.
func (c *lstmCache) last() []float64 {
	return c.steps[len(c.steps)-1].h
}

// forward runs the layer over xs from a zero state. It only reads the
// layer's weights.
func (l *lstmLayer) forward(xs [][]float64) *lstmCache {
	H := l.hidden
	hPrev := make([]float64, H)
	cPrev := make([]float64, H)
	cache := &lstmCache{steps: make([]lstmStep, len(xs))}
	z := make([]float64, gateCount*H)

	for t, x := range xs {
		for r := 0; r < gateCount*H; r++ {
			sum := l.bias.value[r]
			kr := l.kernel.value[r*l.in : (r+1)*l.in]
			for k, xv := range x {
				sum += kr[k] * xv
			}
			rr := l.recurrent.value[r*H : (r+1)*H]
			for k, hv := range hPrev {
				sum += rr[k] * hv
			}
			z[r] = sum
		}

		s := lstmStep{
			x:     x,
			hPrev: hPrev,
			cPrev: cPrev,
			i:     make([]float64, H),
			f:     make([]float64, H),
			g:     make([]float64, H),
			o:     make([]float64, H),
			c:     make([]float64, H),
			tanhC: make([]float64, H),
			h:     make([]float64, H),
		}
		for j := 0; j < H; j++ {
			s.i[j] = sigmoid(z[gateInput*H+j])
			s.f[j] = sigmoid(z[gateForget*H+j])
			s.g[j] = math.Tanh(z[gateCell*H+j])
			s.o[j] = sigmoid(z[gateOutput*H+j])
			s.c[j] = s.f[j]*cPrev[j] + s.i[j]*s.g[j]
			s.tanhC[j] = math.Tanh(s.c[j])
			s.h[j] = s.o[j] * s.tanhC[j]
		}
		cache.steps[t] = s
		hPrev, cPrev = s.h, s.c
	}
	return cache
}

// backward runs backpropagation through time. dh[t] is the loss gradient
// flowing into the hidden state at step t from the layer above (nil rows are
// treated as zero). Weight gradients are accumulated into the layer params and
// the gradient with respect to each input step is returned.
func (l *lstmLayer) backward(cache *lstmCache, dh [][]float64) [][]float64 {
	H := l.hidden
	T := len(cache.steps)
	dxs := make([][]float64, T)
	dhNext := make([]float64, H)
	dcNext := make([]float64, H)
	dz := make([]float64, gateCount*H)

	for t := T - 1; t >= 0; t-- {
		s := cache.steps[t]
		for j := 0; j < H; j++ {
			dhj := dhNext[j]
			if dh[t] != nil {
				dhj += dh[t][j]
			}
			do := dhj * s.tanhC[j]
			dc := dhj*s.o[j]*(1-s.tanhC[j]*s.tanhC[j]) + dcNext[j]

			dz[gateInput*H+j] = dc * s.g[j] * s.i[j] * (1 - s.i[j])
			dz[gateForget*H+j] = dc * s.cPrev[j] * s.f[j] * (1 - s.f[j])
			dz[gateCell*H+j] = dc * s.i[j] * (1 - s.g[j]*s.g[j])
			dz[gateOutput*H+j] = do * s.o[j] * (1 - s.o[j])
			dcNext[j] = dc * s.f[j]
		}

		dx := make([]float64, l.in)
		dhPrev := make([]float64, H)
		for r, d := range dz {
			if d == 0 {
				continue
			}
			l.bias.grad[r] += d

			kr := l.kernel.value[r*l.in : (r+1)*l.in]
			kg := l.kernel.grad[r*l.in : (r+1)*l.in]
			for k, xv := range s.x {
				kg[k] += d * xv
				dx[k] += d * kr[k]
			}

			rr := l.recurrent.value[r*H : (r+1)*H]
			rg := l.recurrent.grad[r*H : (r+1)*H]
			for k, hv := range s.hPrev {
				rg[k] += d * hv
				dhPrev[k] += d * rr[k]
			}
		}
		dxs[t] = dx
		dhNext = dhPrev
	}
	return dxs
}
