package ml

import "github.com/pkg/errors"

// NeuralNetwork owns an ordered sequence of layers. Forward runs them in
// order, Backward in reverse.
type NeuralNetwork struct {
	layers []Layer
}

// NewNetwork returns a network running layers in the given order.
func NewNetwork(layers ...Layer) *NeuralNetwork {
	nw := &NeuralNetwork{}
	for _, l := range layers {
		nw.Add(l)
	}
	return nw
}

// -------- NEURAL NETWORK METHODS -------- //

// Add appends a layer to the end of the network.
func (nw *NeuralNetwork) Add(l Layer) {
	nw.layers = append(nw.layers, l)
}

// Len returns the number of layers.
func (nw *NeuralNetwork) Len() int { return len(nw.layers) }

// Forward pipes input through every layer and returns the final output.
func (nw *NeuralNetwork) Forward(input *Matrix) (*Matrix, error) {
	activation := input
	for i, layer := range nw.layers {
		out, err := layer.Forward(activation)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d forward", i)
		}
		activation = out
	}
	return activation, nil
}

// Predict is Forward; there is no separate inference mode.
func (nw *NeuralNetwork) Predict(input *Matrix) (*Matrix, error) {
	return nw.Forward(input)
}

// Backward feeds grad through the layers in reverse order, each layer's
// returned gradient becoming the next one's input. It returns the gradient
// with respect to the network input.
func (nw *NeuralNetwork) Backward(grad *Matrix) (*Matrix, error) {
	curr := grad
	for i := len(nw.layers) - 1; i >= 0; i-- {
		next, err := nw.layers[i].Backward(curr)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d backward", i)
		}
		curr = next
	}
	return curr, nil
}

// Update asks every layer, in forward order, to apply its stored gradients.
func (nw *NeuralNetwork) Update(opt Optimizer) error {
	for i, layer := range nw.layers {
		if err := layer.UpdateParams(opt); err != nil {
			return errors.Wrapf(err, "layer %d update", i)
		}
	}
	return nil
}
