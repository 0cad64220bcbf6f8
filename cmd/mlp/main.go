// Package main provides the mlp command line tool.
//
// Usage:
//
//	mlp -config appsettings.json -mode train
//	mlp -config appsettings.json -mode predict
//	mlp version
//
// Without -mode an interactive menu asks which operation to run.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/mlp/internal/config"
	"github.com/born-ml/mlp/internal/runner"
)

const version = "v0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(stdout, "mlp %s\n", version)
		return nil
	}

	fs := flag.NewFlagSet("mlp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "appsettings.json", "Path to the JSON or YAML configuration file")
	mode := fs.String("mode", "", "Operation to run: train or predict (interactive menu when empty)")
	seed := fs.Uint64("seed", 0, "Seed for weight initialization (0 uses the clock)")
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	opts := []runner.Option{runner.WithLogger(logger)}
	if *seed != 0 {
		opts = append(opts, runner.WithSeed(*seed))
	}
	r := runner.New(cfg, opts...)
	in := bufio.NewReader(stdin)

	if *mode == "" {
		fmt.Fprintln(stdout, "Select an option:")
		fmt.Fprintln(stdout, "  1) Train")
		fmt.Fprintln(stdout, "  2) Predict")
		choice, err := readLine(in)
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			*mode = "train"
		case "2":
			*mode = "predict"
		default:
			return fmt.Errorf("unknown option %q", choice)
		}
	}

	switch strings.ToLower(*mode) {
	case "train":
		result, err := r.Train()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Training complete: %d epochs, best loss %.6f\n", result.Epochs, result.BestLoss)
		return nil
	case "predict":
		return predict(r, in, stdout)
	default:
		return fmt.Errorf("unknown mode %q (want train or predict)", *mode)
	}
}

func predict(r *runner.Runner, in *bufio.Reader, stdout io.Writer) error {
	width := r.Config().Input.Count
	fmt.Fprintf(stdout, "Enter %d input values separated by spaces:\n", width)
	line, err := readLine(in)
	if err != nil {
		return err
	}
	input, err := runner.ParseInput(line, width)
	if err != nil {
		return err
	}
	output, err := r.Predict(input)
	if err != nil {
		return err
	}
	for i, v := range output {
		fmt.Fprintf(stdout, "Output[%d]: %.4f\n", i, v)
	}
	return nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
