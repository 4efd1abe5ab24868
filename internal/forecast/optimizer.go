package forecast

import "math"

// param is a trainable tensor stored flat, row-major, with its gradient
// accumulator and Adam moment estimates.
type param struct {
	value []float64
	grad  []float64
	m     []float64
	v     []float64
}

func newParam(n int) *param {
	return &param{
		value: make([]float64, n),
		grad:  make([]float64, n),
		m:     make([]float64, n),
		v:     make([]float64, n),
	}
}

func (p *param) zeroGrad() {
	for i := range p.grad {
		p.grad[i] = 0
	}
}

// adam implements the Adam update with bias-corrected step size.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	step    int
}

func newAdam(lr float64) *adam {
	return &adam{lr: lr, beta1: 0.9, beta2: 0.999, epsilon: 1e-7}
}

func (a *adam) update(params []*param) {
	a.step++
	t := float64(a.step)
	lrT := a.lr * math.Sqrt(1-math.Pow(a.beta2, t)) / (1 - math.Pow(a.beta1, t))

	for _, p := range params {
		for i, g := range p.grad {
			p.m[i] = a.beta1*p.m[i] + (1-a.beta1)*g
			p.v[i] = a.beta2*p.v[i] + (1-a.beta2)*g*g
			p.value[i] -= lrT * p.m[i] / (math.Sqrt(p.v[i]) + a.epsilon)
		}
	}
}
