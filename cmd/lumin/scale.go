package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lumin-ml/lumin/internal/backend/cpu"
	"github.com/lumin-ml/lumin/internal/backend/webgpu"
	"github.com/lumin-ml/lumin/internal/intensity"
	"github.com/lumin-ml/lumin/internal/logger"
	"github.com/lumin-ml/lumin/internal/tensor"
)

func scaleCmd() *cli.Command {
	var (
		inputPath  string
		outputPath string
		shapeSpec  string
		dtypeSpec  string
		aMin, aMax float64
		bMin, bMax float64
		clip       bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "path to the raw input tensor",
			Required:    true,
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "path to write the rescaled tensor",
			Required:    true,
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "shape",
			Usage:       "tensor shape, e.g. 3,256,256 or 2,3,4,4",
			Required:    true,
			Destination: &shapeSpec,
		},
		&cli.StringFlag{
			Name:        "dtype",
			Usage:       "element type (float32, uint8, bool)",
			Value:       "float32",
			Destination: &dtypeSpec,
		},
		&cli.Float64Flag{
			Name:        "a-min",
			Usage:       "source range lower bound",
			Destination: &aMin,
		},
		&cli.Float64Flag{
			Name:        "a-max",
			Usage:       "source range upper bound",
			Value:       255,
			Destination: &aMax,
		},
		&cli.Float64Flag{
			Name:        "b-min",
			Usage:       "target range lower bound",
			Destination: &bMin,
		},
		&cli.Float64Flag{
			Name:        "b-max",
			Usage:       "target range upper bound",
			Value:       1,
			Destination: &bMax,
		},
		&cli.BoolFlag{
			Name:        "clip",
			Usage:       "clamp the output to the target range",
			Destination: &clip,
		},
	}
	flags = append(flags, backendFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:  "scale",
		Usage: "Rescale a raw tensor's intensity range",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, LoadConfig())
			log := buildLogger()

			shape, err := parseShape(shapeSpec)
			if err != nil {
				return err
			}
			dtype, err := parseDType(dtypeSpec)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			in, err := tensor.FromBytes(data, shape, dtype)
			if err != nil {
				return err
			}

			b, err := newBackend(log)
			if err != nil {
				return err
			}
			log.Debug("backend selected", "name", b.Name())

			s := intensity.New(b, intensity.WithLogger(log))
			out, err := s.ScaleIntensityRange(in, bMax, bMin, aMax, aMin, clip)
			if err != nil {
				return err
			}

			raw := out.(*tensor.RawTensor)
			if err := os.WriteFile(outputPath, raw.Data(), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Info("scale complete",
				"elements", raw.NumElements(),
				"dtype", raw.DType().String(),
				"output", outputPath)
			return nil
		},
	}
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	return logger.ForFormat(logFormat, os.Stderr, level)
}

// newBackend picks the execution backend: the shared GPU backend when
// requested or available, the pure-Go fallback otherwise.
func newBackend(log logger.Logger) (tensor.Backend, error) {
	switch backend {
	case "gpu", "webgpu":
		return webgpu.New(webgpu.WithPowerPreference(powerPreference))
	case "cpu":
		return cpu.New(), nil
	case "auto", "":
		if webgpu.IsAvailable() {
			return webgpu.New(webgpu.WithPowerPreference(powerPreference))
		}
		log.Warn("WebGPU unavailable, falling back to CPU")
		return cpu.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, gpu, or cpu)", backend)
	}
}

func parseShape(spec string) (tensor.Shape, error) {
	parts := strings.Split(spec, ",")
	shape := make(tensor.Shape, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid shape %q: dimensions must be positive integers", spec)
		}
		shape = append(shape, n)
	}
	return shape, nil
}

func parseDType(spec string) (tensor.DataType, error) {
	switch strings.ToLower(spec) {
	case "float32", "f32":
		return tensor.Float32, nil
	case "float64", "f64":
		return tensor.Float64, nil
	case "int32", "i32":
		return tensor.Int32, nil
	case "int64", "i64":
		return tensor.Int64, nil
	case "uint8", "u8":
		return tensor.Uint8, nil
	case "bool":
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", spec)
	}
}
