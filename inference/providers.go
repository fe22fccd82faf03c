// Package inference - Execution provider selection.
package inference

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend identifies an ONNX Runtime execution provider.
type Backend string

const (
	// BackendCPU runs inference on the default CPU provider.
	BackendCPU Backend = "cpu"
	// BackendCUDA runs inference on NVIDIA GPUs.
	BackendCUDA Backend = "cuda"
	// BackendCoreML runs inference through Apple's CoreML.
	BackendCoreML Backend = "coreml"
)

// ParseBackend maps a device flag value onto an execution provider.
//
// Arguments:
//   - device: The device identifier from the command line.
//
// Returns:
//   - Backend: The matching execution provider.
//   - error: An error if the device is not supported.
func ParseBackend(device string) (Backend, error) {
	switch strings.ToLower(device) {
	case "", "cpu":
		return BackendCPU, nil
	case "cuda", "gpu":
		return BackendCUDA, nil
	case "coreml":
		return BackendCoreML, nil
	default:
		return "", errors.Errorf("unsupported device %q (want cpu, cuda or coreml)", device)
	}
}

// GetSharedLibPath returns the path to the ONNX Runtime shared library for
// the current platform.
func GetSharedLibPath() string {
	if runtime.GOOS == "windows" {
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll"
		}
	}
	if runtime.GOOS == "darwin" {
		return "./third_party/libonnxruntime.dylib"
	}
	if runtime.GOOS == "linux" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
	panic("Unable to find a version of the onnxruntime library supporting this system.")
}

// appendExecutionProvider enables the requested provider on the session
// options. The CPU provider is always available and needs no registration.
func appendExecutionProvider(options *ort.SessionOptions, backend Backend) error {
	switch backend {
	case BackendCUDA:
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "creating CUDA provider options")
		}
		defer cudaOptions.Destroy()
		return options.AppendExecutionProviderCUDA(cudaOptions)
	case BackendCoreML:
		return options.AppendExecutionProviderCoreML(0)
	}
	return nil
}
