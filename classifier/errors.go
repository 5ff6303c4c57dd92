package classifier

import "errors"

// Error kinds returned by the classifier. The HTTP layer matches them with
// errors.Is to pick a status code.
var (
	// ErrInvalidImage marks input that cannot be decoded or has zero size.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidTopK marks a top_k outside [1, class count].
	ErrInvalidTopK = errors.New("invalid top_k")
	// ErrModelLoad marks a failed scorer construction. The next request
	// re-attempts the load.
	ErrModelLoad = errors.New("model load failed")
	// ErrInference marks a failed forward pass on an already loaded scorer.
	ErrInference = errors.New("inference failed")
)
