// Package inference - ONNX inference sessions.
package inference

import (
	"context"
	"os"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/openvocab/go-grounding/grounding"
)

// SessionConfig configures an ONNX inference session for a grounded
// detection model.
type SessionConfig struct {
	// ModelPath is the path to the ONNX checkpoint.
	ModelPath string
	// Backend selects the execution provider.
	Backend Backend
	// Inputs names the model input tensors in order: pixel values, token
	// ids, attention mask, token type ids.
	Inputs []string
	// Outputs names the model output tensors in order: logits, boxes.
	Outputs []string
	// IntraOpThreads and InterOpThreads bound onnxruntime parallelism.
	// Zero keeps the runtime default.
	IntraOpThreads int
	InterOpThreads int
}

// Session runs a grounded detection model through onnxruntime. The input
// image can change size between calls, so the session binds tensors per run
// rather than preallocating fixed shapes.
type Session struct {
	session *ort.DynamicAdvancedSession
	config  SessionConfig
}

// NewSession creates an ONNX session for the model at config.ModelPath.
//
// Arguments:
//   - config: The session configuration.
//
// Returns:
//   - *Session: The ready session.
//   - error: An error if the runtime library, model file or provider setup
//     fails.
func NewSession(config SessionConfig) (*Session, error) {
	libPath := GetSharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Errorf("ONNX Runtime library not found at %s", libPath)
	}
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, errors.Errorf("ONNX model file not found: %s", config.ModelPath)
	}
	if len(config.Inputs) != 4 {
		return nil, errors.Errorf("expected 4 input tensor names, got %d", len(config.Inputs))
	}
	if len(config.Outputs) != 2 {
		return nil, errors.Errorf("expected 2 output tensor names, got %d", len(config.Outputs))
	}

	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initializing ORT environment")
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "creating ORT session options")
	}
	defer options.Destroy()

	if config.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
			return nil, errors.Wrap(err, "setting intra-op threads")
		}
	}
	if config.InterOpThreads > 0 {
		if err := options.SetInterOpNumThreads(config.InterOpThreads); err != nil {
			return nil, errors.Wrap(err, "setting inter-op threads")
		}
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return nil, errors.Wrap(err, "setting graph optimization level")
	}
	if err := appendExecutionProvider(options, config.Backend); err != nil {
		return nil, errors.Wrapf(err, "enabling %s execution provider", config.Backend)
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		config.Inputs,
		config.Outputs,
		options,
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating ORT session")
	}

	return &Session{session: session, config: config}, nil
}

// Infer runs one forward pass.
//
// Arguments:
//   - ctx: Context checked before the run starts; an onnxruntime run in
//     flight is not interruptible.
//   - input: The prepared image and caption tensors.
//
// Returns:
//   - *grounding.RawOutput: Logits and box proposals for one image.
//   - error: An error if tensor creation or the forward pass fails.
func (s *Session) Infer(ctx context.Context, input *Input) (*grounding.RawOutput, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if s.session == nil {
		return nil, errors.New("session is closed")
	}
	if len(input.Pixels) != 3*input.Height*input.Width {
		return nil, errors.Errorf(
			"pixel tensor holds %d floats, want %d (3x%dx%d)",
			len(input.Pixels), 3*input.Height*input.Width, input.Height, input.Width)
	}
	t := len(input.TokenIDs)
	if t == 0 || len(input.AttentionMask) != t || len(input.TypeIDs) != t {
		return nil, errors.Errorf(
			"caption tensors disagree: ids=%d mask=%d types=%d",
			t, len(input.AttentionMask), len(input.TypeIDs))
	}

	pixels, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(input.Height), int64(input.Width)), input.Pixels)
	if err != nil {
		return nil, errors.Wrap(err, "creating pixel tensor")
	}
	defer pixels.Destroy()

	ids, err := ort.NewTensor(ort.NewShape(1, int64(t)), input.TokenIDs)
	if err != nil {
		return nil, errors.Wrap(err, "creating token id tensor")
	}
	defer ids.Destroy()

	mask, err := ort.NewTensor(ort.NewShape(1, int64(t)), input.AttentionMask)
	if err != nil {
		return nil, errors.Wrap(err, "creating attention mask tensor")
	}
	defer mask.Destroy()

	types, err := ort.NewTensor(ort.NewShape(1, int64(t)), input.TypeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "creating token type tensor")
	}
	defer types.Destroy()

	outputs := make([]ort.Value, 2)
	if err := s.session.Run([]ort.Value{pixels, ids, mask, types}, outputs); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("unexpected logits tensor type %T", outputs[0])
	}
	boxesTensor, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("unexpected boxes tensor type %T", outputs[1])
	}

	boxes := boxesTensor.GetData()
	if len(boxes) == 0 || len(boxes)%4 != 0 {
		return nil, errors.Errorf("boxes tensor length %d is not a multiple of 4", len(boxes))
	}
	numQueries := len(boxes) / 4

	logits := logitsTensor.GetData()
	if len(logits)%numQueries != 0 {
		return nil, errors.Errorf(
			"logits length %d does not divide into %d queries", len(logits), numQueries)
	}

	// Copy out of the runtime-owned buffers before the tensors are destroyed.
	return &grounding.RawOutput{
		Logits:     append([]float32(nil), logits...),
		Boxes:      append([]float32(nil), boxes...),
		NumQueries: numQueries,
		TextWidth:  len(logits) / numQueries,
	}, nil
}

// Close releases the session resources.
func (s *Session) Close() error {
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		return err
	}
	return nil
}
