//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and runs it over every PDF in decks/, writing
// output/topics.yaml and dumping the loaded text runs into runs/.
func Extract() error {
	mg.Deps(Init, Build)

	decks, err := filepath.Glob(filepath.Join("decks", "*.pdf"))
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Println("[extract] No decks found in decks/.")
		return nil
	}

	args := append([]string{"extract", "--dump-runs", "runs", "-o", filepath.Join("output", "topics.yaml")}, decks...)
	if err := sh.RunV(filepath.Join(binDir, binName), args...); err != nil {
		return fmt.Errorf("topic-engine extract: %w", err)
	}
	fmt.Println("[extract] Wrote output/topics.yaml")
	return nil
}

// Seed extracts topics from decks/ and seeds them into the course named by
// the COURSE environment variable.
func Seed() error {
	mg.Deps(Init, Build)

	course := os.Getenv("COURSE")
	if course == "" {
		return fmt.Errorf("set COURSE to the course name")
	}
	decks, err := filepath.Glob(filepath.Join("decks", "*.pdf"))
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		return fmt.Errorf("no decks found in decks/")
	}

	args := append([]string{"catalog", "seed", "--course", course}, decks...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}
