package forecast

// Window is a fixed-length run of consecutive scaled prices. It has value
// semantics: Slide returns a new Window and never touches the receiver.
type Window struct {
	values []float64
}

// NewWindow copies values into a Window.
func NewWindow(values []float64) Window {
	v := make([]float64, len(values))
	copy(v, values)
	return Window{values: v}
}

// Len returns the window length.
func (w Window) Len() int {
	return len(w.values)
}

// Last returns the most recent value.
func (w Window) Last() float64 {
	return w.values[len(w.values)-1]
}

// Values returns a copy of the window contents, oldest first.
func (w Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Slide drops the oldest value and appends next.
func (w Window) Slide(next float64) Window {
	v := make([]float64, len(w.values))
	copy(v, w.values[1:])
	v[len(v)-1] = next
	return Window{values: v}
}

// Pair is a training example: a window and the value right after it.
// Start is the index of the window's first element in the source series,
// so the target sits at Start+len(Window).
type Pair struct {
	Start  int
	Window []float64
	Target float64
}

// BuildWindows slides a window of length w over series with step 1.
// A series of length n yields max(0, n-w-1) pairs: the last element of the
// series is never used as a target.
func BuildWindows(series []float64, w int) []Pair {
	n := len(series) - w - 1
	if w <= 0 || n <= 0 {
		return nil
	}

	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Pair{
			Start:  i,
			Window: series[i : i+w],
			Target: series[i+w],
		})
	}
	return pairs
}

// Unzip splits pairs into model inputs and targets.
func Unzip(pairs []Pair) ([][]float64, []float64) {
	windows := make([][]float64, len(pairs))
	targets := make([]float64, len(pairs))
	for i, p := range pairs {
		windows[i] = p.Window
		targets[i] = p.Target
	}
	return windows, targets
}

// SplitSeries cuts series at int(len*fraction). The first part keeps the
// oldest observations so nothing from the test side leaks into training.
func SplitSeries[T any](series []T, fraction float64) (train, test []T) {
	cut := int(float64(len(series)) * fraction)
	if cut < 0 {
		cut = 0
	}
	if cut > len(series) {
		cut = len(series)
	}
	return series[:cut], series[cut:]
}
