package main

import (
	"flag"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"github.com/b0tShaman/feedforward/data"
	"github.com/b0tShaman/feedforward/ml"
	"github.com/pkg/errors"
)

// -------- MAIN -------- //
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feedforward", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		epochs       = fs.Int("epochs", 5000, "number of full-batch training epochs")
		lr           = fs.Float64("lr", 0.1, "learning rate")
		hidden       = fs.Int("hidden", 4, "hidden layer width")
		activation   = fs.String("activation", "tanh", "hidden activation: relu, sigmoid, tanh or linear")
		lossName     = fs.String("loss", "bce", "loss: mse or bce")
		optName      = fs.String("optimizer", "sgd", "optimizer: sgd, momentum or adam")
		seed         = fs.Uint64("seed", 1, "weight initialisation seed, 0 for an unseeded run")
		csvPath      = fs.String("csv", "", "numeric CSV dataset; the XOR table when empty")
		targetCols   = fs.Int("targets", 1, "trailing CSV columns used as targets")
		verboseEvery = fs.Int("verbose-every", 100, "log progress every N epochs")
		quiet        = fs.Bool("quiet", false, "disable progress logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := log.New(out, "", log.LstdFlags)

	// 1. Load Data
	xRaw, yRaw, err := loadDataset(*csvPath, *targetCols)
	if err != nil {
		return err
	}
	X, err := ml.FromRows(xRaw)
	if err != nil {
		return errors.Wrap(err, "inputs")
	}
	Y, err := ml.FromRows(yRaw)
	if err != nil {
		return errors.Wrap(err, "targets")
	}
	logger.Printf("Loaded dataset: %d samples, %d input features", X.Rows(), X.Cols())

	// 2. Initialize Network
	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	}
	nw, err := ml.Build(rng,
		ml.Input(X.Cols()),
		ml.Dense(*hidden, ml.Activation(*activation)),
		ml.Dense(Y.Cols(), ml.Activation("sigmoid")),
	)
	if err != nil {
		return err
	}

	// 3. Configure & Train
	lossType, err := ml.ParseLoss(*lossName)
	if err != nil {
		return err
	}
	optimizer, err := ml.NewOptimizer(ml.OptimizerConfig{
		Type:         ml.OptimizerType(*optName),
		LearningRate: *lr,
	})
	if err != nil {
		return err
	}
	finalLoss, err := nw.Train(X, Y, ml.TrainingConfig{
		Epochs:       *epochs,
		Loss:         lossType,
		Optimizer:    optimizer,
		Verbose:      !*quiet,
		VerboseEvery: *verboseEvery,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	logger.Printf("Training Complete. Final %v loss: %.6f", lossType, finalLoss)

	// 4. Predict
	pred, err := nw.Predict(X)
	if err != nil {
		return err
	}
	for i := 0; i < X.Rows(); i++ {
		in, _ := X.Row(i)
		p, _ := pred.Row(i)
		t, _ := Y.Row(i)
		logger.Printf("%v -> %.4f (target %v)", in, p, t)
	}
	acc, err := ml.BinaryAccuracy(pred, Y, ml.DefaultThreshold)
	if err != nil {
		return err
	}
	logger.Printf("Accuracy: %.2f%%", acc*100)
	return nil
}

func loadDataset(path string, targetCols int) (x, y [][]float64, err error) {
	if path == "" {
		x, y = data.XOR()
		return x, y, nil
	}
	x, y, err = data.LoadCSV(path, targetCols)
	if err != nil {
		return nil, nil, err
	}
	data.MinMaxNormalize(x)
	return x, y, nil
}
