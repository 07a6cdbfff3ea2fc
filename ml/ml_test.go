package ml

import (
	"testing"
)

// --- Global Variables to prevent compiler optimizations ---
var resultMat *Matrix
var resultLoss float64

// NaiveMatMul is the standard O(N^3) multiplication, kept as a reference
// for Dot.
func NaiveMatMul(a, b, out *Matrix) {
	if a.cols != b.rows || out.rows != a.rows || out.cols != b.cols {
		panic("Shape mismatch in NaiveMatMul")
	}
	out.Reset()

	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			scalar := a.data[i*a.cols+k]
			for j := 0; j < b.cols; j++ {
				out.data[i*out.cols+j] += scalar * b.data[k*b.cols+j]
			}
		}
	}
}

// --- 1. Benchmarks: Matrix Multiplication ---

func benchmarkMatMul(b *testing.B, size int, method string) {
	m1 := mustRandom(b, size, size, 1)
	m2 := mustRandom(b, size, size, 2)
	out := NewMatrix(size, size)

	b.ResetTimer()

	if method == "Naive" {
		for n := 0; n < b.N; n++ {
			NaiveMatMul(m1, m2, out)
		}
	} else {
		for n := 0; n < b.N; n++ {
			out, _ = m1.Dot(m2)
		}
	}
	resultMat = out
}

func BenchmarkMatMul_Naive_64(b *testing.B)  { benchmarkMatMul(b, 64, "Naive") }
func BenchmarkMatMul_Gonum_64(b *testing.B)  { benchmarkMatMul(b, 64, "Gonum") }
func BenchmarkMatMul_Naive_256(b *testing.B) { benchmarkMatMul(b, 256, "Naive") }
func BenchmarkMatMul_Gonum_256(b *testing.B) { benchmarkMatMul(b, 256, "Gonum") }

// --- 2. Benchmarks: Neural Network Operations ---

// setupNetwork prepares a 64-32-16-1 classifier and a random batch.
func setupNetwork(b *testing.B, batchSize int) (*NeuralNetwork, *Matrix, *Matrix) {
	b.Helper()
	nn, err := Build(seeded(42),
		Input(64),
		Dense(32),
		Dense(16, Activation("tanh")),
		Dense(1, Activation("sigmoid")),
	)
	if err != nil {
		b.Fatal(err)
	}
	input := mustRandom(b, batchSize, 64, 3)
	targets := Threshold(mustRandom(b, batchSize, 1, 4), 0)
	return nn, input, targets
}

// Benchmark: Forward Pass Only (Inference Speed)
func benchmarkForward(b *testing.B, batchSize int) {
	nn, input, _ := setupNetwork(b, batchSize)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		resultMat, _ = nn.Forward(input)
	}
}

func BenchmarkForward_Batch_1(b *testing.B)   { benchmarkForward(b, 1) }
func BenchmarkForward_Batch_64(b *testing.B)  { benchmarkForward(b, 64) }
func BenchmarkForward_Batch_128(b *testing.B) { benchmarkForward(b, 128) }

// Benchmark: Backward Pass Only (Gradient Calculation Cost)
func benchmarkBackprop(b *testing.B, batchSize int) {
	nn, input, targets := setupNetwork(b, batchSize)

	pred, err := nn.Forward(input)
	if err != nil {
		b.Fatal(err)
	}
	grad, err := LossGradient(LossBinaryCrossEntropy, pred, targets)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		resultMat, _ = nn.Backward(grad)
	}
}

func BenchmarkBackprop_Batch_64(b *testing.B)  { benchmarkBackprop(b, 64) }
func BenchmarkBackprop_Batch_128(b *testing.B) { benchmarkBackprop(b, 128) }

// --- 3. Benchmarks: Optimizer Types (Micro-Benchmark) ---

func benchmarkOptimizerUpdate(b *testing.B, optType OptimizerType) {
	param := mustRandom(b, 256, 128, 5)
	grad := mustRandom(b, 256, 128, 6).Scale(1e-3)

	optimizer, err := NewOptimizer(OptimizerConfig{Type: optType, LearningRate: 0.01})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = optimizer.Update(param, grad)
	}
	resultMat = param
}

func BenchmarkOpt_Micro_SGD(b *testing.B)      { benchmarkOptimizerUpdate(b, OptSGD) }
func BenchmarkOpt_Micro_Momentum(b *testing.B) { benchmarkOptimizerUpdate(b, OptMomentum) }
func BenchmarkOpt_Micro_Adam(b *testing.B)     { benchmarkOptimizerUpdate(b, OptAdam) }

// --- 4. Benchmarks: Full Training Step with Optimizers ---

func benchmarkFullStepWithOpt(b *testing.B, batchSize int, optType OptimizerType) {
	nn, input, targets := setupNetwork(b, batchSize)

	optimizer, err := NewOptimizer(OptimizerConfig{Type: optType, LearningRate: 0.01})
	if err != nil {
		b.Fatal(err)
	}
	cfg := TrainingConfig{Loss: LossBinaryCrossEntropy, Optimizer: optimizer}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		resultLoss, _ = nn.step(input, targets, cfg)
	}
}

// Comparison at Batch Size 64
func BenchmarkTrainStep_SGD_64(b *testing.B)      { benchmarkFullStepWithOpt(b, 64, OptSGD) }
func BenchmarkTrainStep_Momentum_64(b *testing.B) { benchmarkFullStepWithOpt(b, 64, OptMomentum) }
func BenchmarkTrainStep_Adam_64(b *testing.B)     { benchmarkFullStepWithOpt(b, 64, OptAdam) }

// Comparison at Batch Size 256
func BenchmarkTrainStep_SGD_256(b *testing.B)      { benchmarkFullStepWithOpt(b, 256, OptSGD) }
func BenchmarkTrainStep_Momentum_256(b *testing.B) { benchmarkFullStepWithOpt(b, 256, OptMomentum) }
func BenchmarkTrainStep_Adam_256(b *testing.B)     { benchmarkFullStepWithOpt(b, 256, OptAdam) }
