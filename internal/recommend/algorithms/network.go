// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// NetworkConfig fixes the architecture and optimizer of the preference network.
type NetworkConfig struct {
	InputDim int `json:"input_dim"`
	Hidden1  int `json:"hidden1"`
	Hidden2  int `json:"hidden2"`

	// Dropout is the drop rate applied after the first hidden layer.
	Dropout float64 `json:"dropout"`

	// L2 is the kernel regularization coefficient of both hidden layers.
	L2 float64 `json:"l2"`

	// HuberDelta is where the loss turns from quadratic to linear.
	HuberDelta float64 `json:"huber_delta"`

	LearningRate float64 `json:"learning_rate"`
	Beta1        float64 `json:"beta1"`
	Beta2        float64 `json:"beta2"`
	Epsilon      float64 `json:"epsilon"`
}

// DefaultNetworkConfig is Dense(32, relu, l2) -> Dropout(0.3) ->
// Dense(16, relu, l2) -> Dense(1) with Huber loss and Adam(0.01).
func DefaultNetworkConfig(inputDim int) NetworkConfig {
	return NetworkConfig{
		InputDim:     inputDim,
		Hidden1:      32,
		Hidden2:      16,
		Dropout:      0.3,
		L2:           0.01,
		HuberDelta:   1.0,
		LearningRate: 0.01,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// ParamCount is the number of weights and biases for the config.
func (c NetworkConfig) ParamCount() int {
	return c.Hidden1*c.InputDim + c.Hidden1 +
		c.Hidden2*c.Hidden1 + c.Hidden2 +
		c.Hidden2 + 1
}

// Validate checks the architecture.
func (c NetworkConfig) Validate() error {
	if c.InputDim < 1 || c.Hidden1 < 1 || c.Hidden2 < 1 {
		return fmt.Errorf("layer widths must be positive, got %d/%d/%d", c.InputDim, c.Hidden1, c.Hidden2)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0, 1), got %f", c.Dropout)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", c.LearningRate)
	}
	if c.HuberDelta <= 0 {
		return fmt.Errorf("huber_delta must be positive, got %f", c.HuberDelta)
	}
	return nil
}

// Network is a small fully connected regressor.
//
// All weights live in one flat slice so optimizer state, checkpoints and
// persistence handle a single buffer. Layout:
//
//	W1[Hidden1][InputDim] B1[Hidden1] W2[Hidden2][Hidden1] B2[Hidden2] W3[Hidden2] B3
type Network struct {
	Config NetworkConfig
	Params []float64
}

// layout holds offsets into Params.
type layout struct {
	w1, b1, w2, b2, w3, b3 int
}

func (n *Network) layout() layout {
	c := n.Config
	var l layout
	l.w1 = 0
	l.b1 = l.w1 + c.Hidden1*c.InputDim
	l.w2 = l.b1 + c.Hidden1
	l.b2 = l.w2 + c.Hidden2*c.Hidden1
	l.w3 = l.b2 + c.Hidden2
	l.b3 = l.w3 + c.Hidden2
	return l
}

// NewNetwork initializes weights with He-uniform draws from rng; biases are zero.
func NewNetwork(cfg NetworkConfig, rng *rand.Rand) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	n := &Network{Config: cfg, Params: make([]float64, cfg.ParamCount())}
	l := n.layout()

	heUniform := func(from, to, fanIn int) {
		limit := math.Sqrt(6 / float64(fanIn))
		for i := from; i < to; i++ {
			n.Params[i] = (rng.Float64()*2 - 1) * limit
		}
	}
	heUniform(l.w1, l.b1, cfg.InputDim)
	heUniform(l.w2, l.b2, cfg.Hidden1)
	heUniform(l.w3, l.b3, cfg.Hidden2)

	return n, nil
}

// ErrInputWidth is returned when a feature vector has the wrong width.
var ErrInputWidth = errors.New("feature vector width mismatch")

// Predict runs inference without dropout.
func (n *Network) Predict(x []float64) (float64, error) {
	if len(x) != n.Config.InputDim {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrInputWidth, len(x), n.Config.InputDim)
	}
	if len(n.Params) != n.Config.ParamCount() {
		return 0, fmt.Errorf("corrupt network: %d params, want %d", len(n.Params), n.Config.ParamCount())
	}
	var a activations
	a.init(n.Config)
	return n.forward(x, &a, nil), nil
}

// activations holds per-sample intermediate values for backprop.
type activations struct {
	h1pre, h1, h2pre, h2 []float64
	mask                 []float64
}

func (a *activations) init(c NetworkConfig) {
	a.h1pre = make([]float64, c.Hidden1)
	a.h1 = make([]float64, c.Hidden1)
	a.h2pre = make([]float64, c.Hidden2)
	a.h2 = make([]float64, c.Hidden2)
	a.mask = make([]float64, c.Hidden1)
}

// forward computes the output. A nil rng disables dropout.
func (n *Network) forward(x []float64, a *activations, rng *rand.Rand) float64 {
	c := n.Config
	l := n.layout()
	p := n.Params

	keep := 1 - c.Dropout
	for i := 0; i < c.Hidden1; i++ {
		row := p[l.w1+i*c.InputDim : l.w1+(i+1)*c.InputDim]
		s := p[l.b1+i]
		for k, w := range row {
			s += w * x[k]
		}
		a.h1pre[i] = s
		h := relu(s)

		a.mask[i] = 1
		if rng != nil && c.Dropout > 0 {
			if rng.Float64() < c.Dropout {
				a.mask[i] = 0
			} else {
				a.mask[i] = 1 / keep
			}
		}
		a.h1[i] = h * a.mask[i]
	}

	for j := 0; j < c.Hidden2; j++ {
		row := p[l.w2+j*c.Hidden1 : l.w2+(j+1)*c.Hidden1]
		s := p[l.b2+j]
		for i, w := range row {
			s += w * a.h1[i]
		}
		a.h2pre[j] = s
		a.h2[j] = relu(s)
	}

	out := p[l.b3]
	for j := 0; j < c.Hidden2; j++ {
		out += p[l.w3+j] * a.h2[j]
	}
	return out
}

// backward accumulates gradients of dOut into grad.
func (n *Network) backward(x []float64, a *activations, dOut float64, grad []float64) {
	c := n.Config
	l := n.layout()
	p := n.Params

	dh2 := make([]float64, c.Hidden2)
	for j := 0; j < c.Hidden2; j++ {
		grad[l.w3+j] += dOut * a.h2[j]
		if a.h2pre[j] > 0 {
			dh2[j] = dOut * p[l.w3+j]
		}
	}
	grad[l.b3] += dOut

	dh1 := make([]float64, c.Hidden1)
	for j := 0; j < c.Hidden2; j++ {
		if dh2[j] == 0 {
			continue
		}
		base := l.w2 + j*c.Hidden1
		for i := 0; i < c.Hidden1; i++ {
			grad[base+i] += dh2[j] * a.h1[i]
			dh1[i] += p[base+i] * dh2[j]
		}
		grad[l.b2+j] += dh2[j]
	}

	for i := 0; i < c.Hidden1; i++ {
		d := dh1[i] * a.mask[i]
		if a.h1pre[i] <= 0 || d == 0 {
			continue
		}
		base := l.w1 + i*c.InputDim
		for k, xv := range x {
			grad[base+k] += d * xv
		}
		grad[l.b1+i] += d
	}
}

// huber returns the Huber loss and its derivative with respect to the prediction.
func huber(pred, target, delta float64) (loss, grad float64) {
	r := pred - target
	if math.Abs(r) <= delta {
		return 0.5 * r * r, r
	}
	if r > 0 {
		return delta * (math.Abs(r) - 0.5*delta), delta
	}
	return delta * (math.Abs(r) - 0.5*delta), -delta
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Sample is one labeled feature vector.
type Sample struct {
	X []float64
	Y float64
}

// FitConfig controls a training run.
type FitConfig struct {
	// MaxEpochs bounds the number of passes. Default: 100.
	MaxEpochs int

	// Patience is how many epochs without validation improvement end training.
	// Default: 10.
	Patience int

	// ValidationSplit is the held-out fraction. Default: 0.2.
	ValidationSplit float64

	// MinBatch and MaxBatch clamp the batch size train/4. Defaults: 4, 32.
	MinBatch int
	MaxBatch int
}

func (f *FitConfig) applyDefaults() {
	if f.MaxEpochs <= 0 {
		f.MaxEpochs = 100
	}
	if f.Patience <= 0 {
		f.Patience = 10
	}
	if f.ValidationSplit <= 0 || f.ValidationSplit >= 1 {
		f.ValidationSplit = 0.2
	}
	if f.MinBatch <= 0 {
		f.MinBatch = 4
	}
	if f.MaxBatch < f.MinBatch {
		f.MaxBatch = 32
	}
}

// FitResult summarizes a training run.
type FitResult struct {
	Epochs         int     `json:"epochs"`
	BestEpoch      int     `json:"best_epoch"`
	TrainSize      int     `json:"train_size"`
	ValidationSize int     `json:"validation_size"`
	BatchSize      int     `json:"batch_size"`
	TrainLoss      float64 `json:"train_loss"`
	ValidationLoss float64 `json:"validation_loss"`
	ValidationMAE  float64 `json:"validation_mae"`
}

// BatchSize is clamp(trainSize/4, minBatch, maxBatch).
func BatchSize(trainSize, minBatch, maxBatch int) int {
	return max(minBatch, min(maxBatch, trainSize/4))
}

// Fit shuffles samples, holds out a validation split, and trains with Adam
// on Huber loss plus L2, stopping early on validation loss. The best weights
// seen are restored before returning.
//
//nolint:gocyclo // the training loop keeps its phases together for readability
func (n *Network) Fit(ctx context.Context, samples []Sample, cfg FitConfig, rng *rand.Rand) (FitResult, error) {
	cfg.applyDefaults()
	if len(samples) < 2 {
		return FitResult{}, fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}
	for i := range samples {
		if len(samples[i].X) != n.Config.InputDim {
			return FitResult{}, fmt.Errorf("sample %d: %w", i, ErrInputWidth)
		}
	}

	data := make([]Sample, len(samples))
	copy(data, samples)
	rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })

	valSize := int(float64(len(data)) * cfg.ValidationSplit)
	if valSize < 1 {
		valSize = 1
	}
	train, val := data[:len(data)-valSize], data[len(data)-valSize:]
	batch := BatchSize(len(train), cfg.MinBatch, cfg.MaxBatch)

	res := FitResult{
		TrainSize:      len(train),
		ValidationSize: len(val),
		BatchSize:      batch,
		ValidationLoss: math.Inf(1),
	}

	opt := newAdam(len(n.Params), n.Config)
	grad := make([]float64, len(n.Params))
	best := make([]float64, len(n.Params))
	copy(best, n.Params)

	var a activations
	a.init(n.Config)
	l := n.layout()
	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	wait := 0
	for epoch := 1; epoch <= cfg.MaxEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			copy(n.Params, best)
			return res, err
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < len(order); start += batch {
			end := min(start+batch, len(order))
			size := float64(end - start)

			clear(grad)
			for _, idx := range order[start:end] {
				s := &train[idx]
				pred := n.forward(s.X, &a, rng)
				loss, dl := huber(pred, s.Y, n.Config.HuberDelta)
				epochLoss += loss
				n.backward(s.X, &a, dl/size, grad)
			}

			// Kernel L2 on both hidden layers: d/dw (l2 * w^2) = 2 * l2 * w.
			if n.Config.L2 > 0 {
				for i := l.w1; i < l.b1; i++ {
					grad[i] += 2 * n.Config.L2 * n.Params[i]
				}
				for i := l.w2; i < l.b2; i++ {
					grad[i] += 2 * n.Config.L2 * n.Params[i]
				}
			}

			opt.step(n.Params, grad)
		}

		valLoss, valMAE := n.evaluate(val)
		res.Epochs = epoch
		res.TrainLoss = epochLoss / float64(len(train))

		if valLoss < res.ValidationLoss {
			res.ValidationLoss = valLoss
			res.ValidationMAE = valMAE
			res.BestEpoch = epoch
			copy(best, n.Params)
			wait = 0
			continue
		}

		wait++
		if wait >= cfg.Patience {
			break
		}
	}

	copy(n.Params, best)
	return res, nil
}

// evaluate returns mean Huber loss and mean absolute error without dropout.
func (n *Network) evaluate(samples []Sample) (loss, mae float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var a activations
	a.init(n.Config)
	for i := range samples {
		pred := n.forward(samples[i].X, &a, nil)
		l, _ := huber(pred, samples[i].Y, n.Config.HuberDelta)
		loss += l
		mae += math.Abs(pred - samples[i].Y)
	}
	count := float64(len(samples))
	return loss / count, mae / count
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	params := make([]float64, len(n.Params))
	copy(params, n.Params)
	return &Network{Config: n.Config, Params: params}
}

// adam is the Adam optimizer state for a flat parameter buffer.
type adam struct {
	lr, beta1, beta2, eps float64
	m, v                  []float64
	t                     int
}

func newAdam(size int, c NetworkConfig) *adam {
	return &adam{
		lr:    c.LearningRate,
		beta1: c.Beta1,
		beta2: c.Beta2,
		eps:   c.Epsilon,
		m:     make([]float64, size),
		v:     make([]float64, size),
	}
}

func (o *adam) step(params, grad []float64) {
	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i, g := range grad {
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*g
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*g*g
		mHat := o.m[i] / c1
		vHat := o.v[i] / c2
		params[i] -= o.lr * mHat / (math.Sqrt(vHat) + o.eps)
	}
}
