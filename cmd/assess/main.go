// Command assess scores a reading file offline, using the same domain and
// model code as the service. Useful for sanity-checking model weights and
// sensor payloads without a running server.
//
// Usage:
//
//	go run ./cmd/assess -input reading.json [-model model.json] [-history history.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	input := flag.String("input", "", "reading JSON file (- for stdin)")
	modelPath := flag.String("model", "", "optional model weights JSON; omit for the rule-based fallback")
	historyPath := flag.String("history", "", "optional JSON array of prior readings")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -input")
	}

	reading, err := loadReading(*input)
	if err != nil {
		return err
	}

	var history []domain.Reading
	if *historyPath != "" {
		data, err := os.ReadFile(*historyPath)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("decode history: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var threatModel domain.ThreatModel
	if *modelPath != "" {
		m, err := model.Load(*modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		threatModel = m
	}

	scorer := domain.NewScorer(threatModel, logger)
	assessment := scorer.Score(reading, history)

	out, err := json.MarshalIndent(assessment, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadReading(path string) (*domain.Reading, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reading := &domain.Reading{}
	if err := json.Unmarshal(data, reading); err != nil {
		return nil, fmt.Errorf("decode reading: %w", err)
	}
	return reading, nil
}
