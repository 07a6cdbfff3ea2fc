package ml

import (
	"log"
	"time"

	"github.com/pkg/errors"
)

const defaultVerboseEvery = 100

type TrainingConfig struct {
	Epochs    int
	Loss      LossType
	Optimizer Optimizer

	Verbose      bool
	VerboseEvery int // How often to log progress (in epochs), 100 if zero

	// Progress observations go to OnProgress when set, otherwise to Logger
	// (log.Default() if nil).
	Logger     *log.Logger
	OnProgress func(Progress)
}

// Progress is one observation emitted by Train.
type Progress struct {
	Epoch   int
	Epochs  int
	Loss    float64
	Elapsed time.Duration
}

// Train runs cfg.Epochs full-batch epochs of forward, loss, backward and
// update, and returns the loss of the final epoch (0 if Epochs is 0). Any
// failure aborts training; the returned error wraps the failing kind.
func (nw *NeuralNetwork) Train(inputs, targets *Matrix, cfg TrainingConfig) (float64, error) {
	if err := nw.validateTraining(inputs, targets, cfg); err != nil {
		return 0, err
	}
	every := cfg.VerboseEvery
	if every <= 0 {
		every = defaultVerboseEvery
	}

	start := time.Now()
	var currentLoss float64
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		loss, err := nw.step(inputs, targets, cfg)
		if err != nil {
			return 0, errors.Wrapf(err, "epoch %d", epoch)
		}
		currentLoss = loss

		if cfg.Verbose && (epoch == 1 || epoch%every == 0 || epoch == cfg.Epochs) {
			cfg.report(Progress{Epoch: epoch, Epochs: cfg.Epochs, Loss: loss, Elapsed: time.Since(start)})
		}
	}
	return currentLoss, nil
}

func (nw *NeuralNetwork) validateTraining(inputs, targets *Matrix, cfg TrainingConfig) error {
	if len(nw.layers) == 0 {
		return errors.Wrap(ErrInvalidConfiguration, "train: network has no layers")
	}
	if cfg.Optimizer == nil {
		return errors.Wrap(ErrInvalidConfiguration, "train: nil optimizer")
	}
	if cfg.Epochs < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "train: %d epochs", cfg.Epochs)
	}
	if inputs.rows != targets.rows {
		return errors.Wrapf(ErrShapeMismatch, "train: %d input rows vs %d target rows", inputs.rows, targets.rows)
	}
	return nil
}

// step performs one forward/backward/update cycle over the whole batch.
func (nw *NeuralNetwork) step(inputs, targets *Matrix, cfg TrainingConfig) (float64, error) {
	predictions, err := nw.Forward(inputs)
	if err != nil {
		return 0, err
	}

	loss, err := LossValue(cfg.Loss, predictions, targets)
	if err != nil {
		return 0, err
	}
	grad, err := LossGradient(cfg.Loss, predictions, targets)
	if err != nil {
		return 0, err
	}

	if _, err := nw.Backward(grad); err != nil {
		return 0, err
	}
	if err := nw.Update(cfg.Optimizer); err != nil {
		return 0, err
	}
	return loss, nil
}

func (cfg TrainingConfig) report(p Progress) {
	if cfg.OnProgress != nil {
		cfg.OnProgress(p)
		return
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("Epoch %d/%d | Loss: %.6f | Time: %v", p.Epoch, p.Epochs, p.Loss, p.Elapsed)
}
