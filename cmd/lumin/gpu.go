package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/lumin-ml/lumin/internal/backend/webgpu"
)

type adapterReport struct {
	Available    bool   `json:"available"`
	Name         string `json:"name,omitempty"`
	Vendor       string `json:"vendor,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	Description  string `json:"description,omitempty"`
}

func gpuCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "gpu",
		Usage: "Probe the WebGPU adapter",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit machine-readable output",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report := adapterReport{Available: webgpu.IsAvailable()}
			if report.Available {
				b, err := webgpu.New()
				if err != nil {
					return err
				}
				defer b.Release()
				if info := b.AdapterInfo(); info != nil {
					report.Name = info.Device
					report.Vendor = info.Vendor
					report.Architecture = info.Architecture
					report.Description = info.Description
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if !report.Available {
				fmt.Println("WebGPU: not available (no adapter or native library missing)")
				return nil
			}
			fmt.Println("WebGPU: available")
			fmt.Printf("  adapter:      %s\n", report.Name)
			fmt.Printf("  vendor:       %s\n", report.Vendor)
			if report.Architecture != "" {
				fmt.Printf("  architecture: %s\n", report.Architecture)
			}
			if report.Description != "" {
				fmt.Printf("  driver:       %s\n", report.Description)
			}
			return nil
		},
	}
}
