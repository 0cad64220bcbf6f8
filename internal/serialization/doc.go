// Package serialization saves and loads trained network parameters.
//
// A model file is an indented JSON document:
//
//	{
//	  "Weights": [                  // one matrix per layer transition
//	    [[w00, w01], [w10, w11]]    // rows of [next width × previous width]
//	  ],
//	  "Biases": [[b0, b1]],         // one vector per layer transition
//	  "Normalization": {            // optional
//	    "InMin": [...], "InMax": [...],
//	    "OutMin": [...], "OutMax": [...]
//	  }
//	}
//
// Numbers use the shortest representation that parses back to the same
// float64, so a save followed by a load reproduces every value bit for bit.
// Files written before normalization was persisted have no "Normalization"
// field; they load without error and report a nil normalization.
//
// Every save rewrites the whole file through a temporary file in the same
// directory followed by a rename, so readers never observe a partial model.
//
// Example usage:
//
//	err := serialization.SaveWithNormalization("model.json", net.Weights(), net.Biases(), &params)
//
//	weights, biases, norm, err := serialization.LoadWithNormalization("model.json")
//	if errors.Is(err, serialization.ErrModelNotFound) {
//	    // train first
//	}
package serialization
