package classifier

import "log/slog"

// Variant describes one supported model architecture. All variants are
// ImageNet classifiers taking a (1,3,224,224) input in NCHW layout.
type Variant struct {
	Name        string
	File        string
	URL         string
	Description string
}

const DefaultModel = "resnet18"

const onnxZoo = "https://github.com/onnx/models/raw/main/validated/vision/classification"

// ResolveModel maps a configured model name to its variant. An unknown name
// falls back to the default with a warning, it never fails.
func ResolveModel(name string) Variant {
	switch name {
	case "resnet18", "":
		return Variant{
			Name:        "resnet18",
			File:        "resnet18-v1-7.onnx",
			URL:         onnxZoo + "/resnet/model/resnet18-v1-7.onnx",
			Description: "Fast and lightweight",
		}
	case "resnet50":
		return Variant{
			Name:        "resnet50",
			File:        "resnet50-v1-7.onnx",
			URL:         onnxZoo + "/resnet/model/resnet50-v1-7.onnx",
			Description: "Better accuracy, moderate speed",
		}
	case "resnet101":
		return Variant{
			Name:        "resnet101",
			File:        "resnet101-v1-7.onnx",
			URL:         onnxZoo + "/resnet/model/resnet101-v1-7.onnx",
			Description: "Best accuracy, slower",
		}
	case "mobilenetv2":
		return Variant{
			Name:        "mobilenetv2",
			File:        "mobilenetv2-7.onnx",
			URL:         onnxZoo + "/mobilenet/model/mobilenetv2-7.onnx",
			Description: "Good balance of accuracy and speed",
		}
	default:
		slog.Warn("Unknown model, falling back to default",
			slog.String("model", name),
			slog.String("fallback", DefaultModel))
		return ResolveModel(DefaultModel)
	}
}
