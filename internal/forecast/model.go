package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SequenceModel learns to predict the next scaled value from a window.
//
// Train is the only method that mutates the model and must not run
// concurrently with anything else. Once Train returns, Predict only reads
// the parameters and may be called from several goroutines.
type SequenceModel interface {
	Train(ctx context.Context, windows [][]float64, targets []float64) (TrainingReport, error)
	Predict(window []float64) (float64, error)
}

// TrainingReport summarises a completed training run.
type TrainingReport struct {
	Samples     int           `json:"samples"`
	Epochs      int           `json:"epochs"`
	Batches     int           `json:"batches"`
	FinalLoss   float64       `json:"final_loss"`
	LossHistory []float64     `json:"loss_history"`
	Duration    time.Duration `json:"duration"`
}

// LSTMModel is two stacked LSTM layers with dropout followed by two dense
// layers: LSTM(H, sequences) -> Dropout -> LSTM(H, last) -> Dropout ->
// Dense(D) -> Dense(1). It is trained with mean squared error and Adam.
type LSTMModel struct {
	cfg    Config
	lstm1  *lstmLayer
	lstm2  *lstmLayer
	dense1 *denseLayer
	dense2 *denseLayer
	opt    *adam
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewLSTMModel initialises weights from cfg.Seed, so two models built from
// the same config train identically.
func NewLSTMModel(cfg Config) *LSTMModel {
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &LSTMModel{
		cfg:    cfg,
		lstm1:  newLSTMLayer(1, cfg.HiddenWidth, rng),
		lstm2:  newLSTMLayer(cfg.HiddenWidth, cfg.HiddenWidth, rng),
		dense1: newDenseLayer(cfg.HiddenWidth, cfg.DenseWidth, rng),
		dense2: newDenseLayer(cfg.DenseWidth, 1, rng),
		opt:    newAdam(cfg.LearningRate),
		rng:    rng,
		logger: log.With().Str("component", "lstm_model").Logger(),
	}
}

func (m *LSTMModel) params() []*param {
	var ps []*param
	ps = append(ps, m.lstm1.params()...)
	ps = append(ps, m.lstm2.params()...)
	ps = append(ps, m.dense1.params()...)
	ps = append(ps, m.dense2.params()...)
	return ps
}

// Predict returns the next scaled value for window. Dropout is not applied.
func (m *LSTMModel) Predict(window []float64) (float64, error) {
	if len(window) != m.cfg.WindowLength {
		return 0, fmt.Errorf("window length %d, model expects %d", len(window), m.cfg.WindowLength)
	}
	y := m.forward(window, nil).output
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("prediction is %v: %w", y, ErrModelTrainingFailure)
	}
	return y, nil
}

// Train fits the model on windows/targets for cfg.Epochs passes in shuffled
// mini-batches of cfg.BatchSize. ctx is checked between batches.
func (m *LSTMModel) Train(ctx context.Context, windows [][]float64, targets []float64) (TrainingReport, error) {
	report := TrainingReport{Samples: len(windows)}
	if len(windows) == 0 {
		return report, fmt.Errorf("no training windows: %w", ErrInsufficientHistory)
	}
	if len(windows) != len(targets) {
		return report, fmt.Errorf("%d windows but %d targets", len(windows), len(targets))
	}
	for i, w := range windows {
		if len(w) != m.cfg.WindowLength {
			return report, fmt.Errorf("window %d has length %d, model expects %d", i, len(w), m.cfg.WindowLength)
		}
	}

	start := time.Now()
	params := m.params()
	n := len(windows)

	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		order := m.rng.Perm(n)
		epochLoss := 0.0

		for from := 0; from < n; from += m.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("training interrupted at epoch %d: %w", epoch+1, err)
			}

			to := min(from+m.cfg.BatchSize, n)
			batchLoss := m.trainBatch(params, windows, targets, order[from:to])
			if math.IsNaN(batchLoss) || math.IsInf(batchLoss, 0) {
				return report, fmt.Errorf("epoch %d: loss is %v: %w", epoch+1, batchLoss, ErrModelTrainingFailure)
			}
			epochLoss += batchLoss * float64(to-from)
			report.Batches++
		}

		epochLoss /= float64(n)
		report.LossHistory = append(report.LossHistory, epochLoss)
		report.Epochs = epoch + 1
		m.logger.Debug().Int("epoch", epoch+1).Float64("loss", epochLoss).Msg("Epoch finished")
	}

	report.FinalLoss = report.LossHistory[len(report.LossHistory)-1]
	report.Duration = time.Since(start)
	m.logger.Info().
		Int("samples", n).
		Int("epochs", report.Epochs).
		Float64("loss", report.FinalLoss).
		Dur("took", report.Duration).
		Msg("Training completed")
	return report, nil
}

// trainBatch runs one optimiser step over the samples at idx and returns
// the batch mean squared error.
func (m *LSTMModel) trainBatch(params []*param, windows [][]float64, targets []float64, idx []int) float64 {
	for _, p := range params {
		p.zeroGrad()
	}

	scale := 1 / float64(len(idx))
	loss := 0.0
	for _, i := range idx {
		pass := m.forward(windows[i], m.rng)
		diff := pass.output - targets[i]
		loss += diff * diff
		m.backward(pass, 2*diff*scale)
	}

	m.opt.update(params)
	return loss * scale
}

// forwardPass holds every intermediate activation of one sample.
type forwardPass struct {
	cache1 *lstmCache
	mask1  [][]float64
	cache2 *lstmCache
	mask2  []float64
	hidden []float64 // dropout(lstm2 last state), input of dense1
	dense  []float64 // dense1 output
	output float64
}

// forward evaluates the network. A nil rng disables dropout.
func (m *LSTMModel) forward(window []float64, rng *rand.Rand) *forwardPass {
	xs := make([][]float64, len(window))
	for t, v := range window {
		xs[t] = []float64{v}
	}

	pass := &forwardPass{}
	pass.cache1 = m.lstm1.forward(xs)

	seq := pass.cache1.outputs()
	if rng != nil {
		pass.mask1 = make([][]float64, len(seq))
		for t := range seq {
			pass.mask1[t] = dropoutMask(m.cfg.HiddenWidth, m.cfg.DropoutRate, rng)
			seq[t] = applyMask(seq[t], pass.mask1[t])
		}
	}

	pass.cache2 = m.lstm2.forward(seq)
	pass.hidden = pass.cache2.last()
	if rng != nil {
		pass.mask2 = dropoutMask(m.cfg.HiddenWidth, m.cfg.DropoutRate, rng)
		pass.hidden = applyMask(pass.hidden, pass.mask2)
	}

	pass.dense = m.dense1.forward(pass.hidden)
	pass.output = m.dense2.forward(pass.dense)[0]
	return pass
}

// backward propagates dLoss/dOutput through the network, accumulating
// gradients into every layer.
func (m *LSTMModel) backward(pass *forwardPass, dOut float64) {
	dDense := m.dense2.backward(pass.dense, []float64{dOut})
	dHidden := m.dense1.backward(pass.hidden, dDense)
	if pass.mask2 != nil {
		dHidden = applyMask(dHidden, pass.mask2)
	}

	T := len(pass.cache2.steps)
	dh2 := make([][]float64, T)
	dh2[T-1] = dHidden
	dSeq := m.lstm2.backward(pass.cache2, dh2)

	if pass.mask1 != nil {
		for t := range dSeq {
			dSeq[t] = applyMask(dSeq[t], pass.mask1[t])
		}
	}
	m.lstm1.backward(pass.cache1, dSeq)
}
