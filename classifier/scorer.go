package classifier

import (
	"fmt"
	"log/slog"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"
)

// scorer is the opaque model: a float32 image tensor in, one raw score per
// class out. Implemented by onnxScorer, faked in tests.
type scorer interface {
	labels() []string
	score(input []float32) ([]float32, error)
	close()
}

type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}

// onnxScorer runs forward passes against a fixed-size pool of ONNX sessions.
// Each session owns preallocated input/output tensors, so a session is used
// by one request at a time.
type onnxScorer struct {
	pool       chan *onnxSession
	classNames []string
}

func newOnnxScorer(cfg Config) (*onnxScorer, error) {
	variant := ResolveModel(cfg.Model)
	modelPath := filepath.Join(cfg.ModelDir, variant.File)
	labelsPath := filepath.Join(cfg.ModelDir, cfg.LabelsFile)

	slog.Info("Loading model",
		slog.String("model", variant.Name),
		slog.String("description", variant.Description))

	if err := ensureArtifact(modelPath, variant.URL); err != nil {
		return nil, err
	}
	if err := ensureArtifact(labelsPath, cfg.LabelsURL); err != nil {
		return nil, err
	}

	classNames, err := readLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", variant.File)
	}

	// Label order is load-bearing. A count mismatch means the list does not
	// belong to this model, so refuse to serve misaligned labels.
	if outDims := outputs[0].Dimensions; len(outDims) > 0 {
		if n := int(outDims[len(outDims)-1]); n > 0 && n != len(classNames) {
			return nil, fmt.Errorf("model outputs %d classes but label file has %d", n, len(classNames))
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	device, err := applyDevice(opts, cfg.Device)
	if err != nil {
		return nil, err
	}
	slog.Info("Scorer device resolved", slog.String("device", device))

	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = 1
	}

	pool := make(chan *onnxSession, poolSize)
	for i := 0; i < poolSize; i++ {
		sess, err := newSession(modelPath, inputs[0].Name, outputs[0].Name, len(classNames), opts)
		if err != nil {
			close(pool)
			for s := range pool {
				s.destroy()
			}
			return nil, err
		}
		pool <- sess
	}

	return &onnxScorer{pool: pool, classNames: classNames}, nil
}

func newSession(modelPath, inputName, outputName string, classes int, opts *ort.SessionOptions) (*onnxSession, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, ImageSize, ImageSize), make([]float32, 3*ImageSize*ImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}

	return &onnxSession{session: session, input: inputTensor, output: outputTensor}, nil
}

// applyDevice configures the execution provider. An empty device auto-detects:
// CUDA when available, CPU otherwise. An explicit "cuda" fails when the
// provider cannot be appended.
func applyDevice(opts *ort.SessionOptions, device string) (string, error) {
	switch device {
	case "", "auto":
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return "cpu", nil
		}
		defer cudaOpts.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			slog.Warn("CUDA unavailable, using CPU", slog.String("error", err.Error()))
			return "cpu", nil
		}
		return "cuda", nil
	case "cpu":
		return "cpu", nil
	case "cuda":
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return "", fmt.Errorf("CUDA requested but unavailable: %w", err)
		}
		defer cudaOpts.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return "", fmt.Errorf("CUDA requested but unavailable: %w", err)
		}
		return "cuda", nil
	default:
		return "", fmt.Errorf("unsupported device %q", device)
	}
}

func (m *onnxScorer) labels() []string {
	return m.classNames
}

func (m *onnxScorer) score(input []float32) ([]float32, error) {
	sess := <-m.pool
	defer func() { m.pool <- sess }()

	copy(sess.input.GetData(), input)
	if err := sess.session.Run(); err != nil {
		return nil, err
	}

	raw := sess.output.GetData()
	logits := make([]float32, len(raw))
	copy(logits, raw)
	return logits, nil
}

func (m *onnxScorer) close() {
	for i := 0; i < cap(m.pool); i++ {
		sess := <-m.pool
		sess.destroy()
	}
}
