// Command genmodel writes a synthetic threat model weights file. It uses the
// actual model package so the output always matches what the service can
// load.
//
// Usage:
//
//	go run ./cmd/genmodel -out data/model.json -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/coastal-threat-service/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the model weights JSON")
	seed := flag.Int64("seed", 42, "seed for the synthetic weight noise")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	m := model.Synthetic(*seed)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	fmt.Printf("wrote %s (version %s, seed %d)\n", *out, m.Version, *seed)
	return nil
}
