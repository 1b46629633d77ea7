// Command translate runs the translation pipeline once on a single file.
//
//	translate input.pdf [output.pdf]
package main

import (
	"context"
	"fmt"
	"os"

	"doc-translator/internal/config"
	"doc-translator/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: translate <input> [output]")
		os.Exit(2)
	}
	inputPath := os.Args[1]
	outputPath := ""
	if len(os.Args) == 3 {
		outputPath = os.Args[2]
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	pipe := pipeline.New(cfg)
	defer pipe.Close()

	lastPct := -1
	progress := func(done, total int, blockID string) {
		pct := done * 100 / total
		if pct != lastPct {
			lastPct = pct
			fmt.Printf("\rtranslating: %3d%% (%d/%d blocks)", pct, done, total)
		}
	}

	out, err := pipe.TranslateFile(context.Background(), inputPath, outputPath, progress)
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", out)
}
