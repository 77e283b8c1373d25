package main

import "github.com/urfave/cli/v3"

var (
	backend         string
	powerPreference string
	logLevel        string
	logFormat       string
	debug           bool
)

func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, gpu, cpu)",
			Value:       "auto",
			Destination: &backend,
		},
		&cli.StringFlag{
			Name:        "power-preference",
			Usage:       "GPU adapter power class (high-performance, low-power)",
			Value:       "high-performance",
			Destination: &powerPreference,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
