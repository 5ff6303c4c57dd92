package classifier

import (
	"fmt"
	"image"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Config selects the scorer to construct. Read once, immutable afterwards.
type Config struct {
	// Model is a catalog name, see ResolveModel. Unknown names fall back to
	// the default.
	Model string
	// Device is "", "auto", "cpu" or "cuda". Empty auto-detects.
	Device string
	// ModelDir holds the model weights and the label file.
	ModelDir   string
	LabelsFile string
	LabelsURL  string
	// PoolSize is the number of concurrent inference sessions, minimum 1.
	PoolSize int
}

// Prediction is one ranked classification result.
type Prediction struct {
	Label      string  `json:"class_name"`
	Confidence float32 `json:"confidence"`
}

// Service classifies images with a lazily constructed scorer. The scorer is
// built at most once per Service and is immutable afterwards; a failed
// construction is retried by the next caller. Safe for concurrent use.
type Service struct {
	cfg       Config
	newScorer func() (scorer, error)

	mu    sync.Mutex
	ready atomic.Bool
	sc    scorer
}

func New(cfg Config) *Service {
	s := &Service{cfg: cfg}
	s.newScorer = func() (scorer, error) { return newOnnxScorer(s.cfg) }
	return s
}

// Ready reports whether the scorer has completed loading.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Load constructs the scorer if it has not been built yet. Calling it at
// startup trades first-request latency for startup time.
func (s *Service) Load() error {
	_, err := s.ensure()
	return err
}

// ensure returns the scorer, constructing it under the lock on first use.
// The ready flag is stored only after s.sc is fully assigned, so readers
// passing the fast path always observe a complete scorer.
func (s *Service) ensure() (scorer, error) {
	if s.ready.Load() {
		return s.sc, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return s.sc, nil
	}
	sc, err := s.newScorer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	s.sc = sc
	s.ready.Store(true)
	return sc, nil
}

// Predict returns the topK highest-confidence class predictions for img, in
// descending confidence order.
func (s *Service) Predict(img image.Image, topK int) ([]Prediction, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidTopK, topK)
	}

	sc, err := s.ensure()
	if err != nil {
		return nil, err
	}
	classNames := sc.labels()
	if topK > len(classNames) {
		return nil, fmt.Errorf("%w: top_k %d exceeds class count %d", ErrInvalidTopK, topK, len(classNames))
	}

	input, err := Preprocess(img)
	if err != nil {
		return nil, err
	}

	logits, err := sc.score(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	probs := softmax(logits)
	preds := make([]Prediction, 0, topK)
	for _, i := range rank(probs, topK) {
		preds = append(preds, Prediction{Label: classNames[i], Confidence: probs[i]})
	}
	return preds, nil
}

// Close releases the scorer if one was built.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		s.sc.close()
	}
}

// softmax converts raw scores into a probability distribution. The max is
// subtracted before exponentiation and sums are accumulated in float64 to
// keep the result finite for any logit range.
func softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		exps[i] = e
		sum += e
	}

	probs := make([]float32, len(logits))
	for i, e := range exps {
		probs[i] = float32(e / sum)
	}
	return probs
}

// rank returns the indices of the k largest probabilities in descending
// order. Equal probabilities are ordered by lower index.
func rank(probs []float32, k int) []int {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if probs[idx[a]] != probs[idx[b]] {
			return probs[idx[a]] > probs[idx[b]]
		}
		return idx[a] < idx[b]
	})
	return idx[:k]
}
