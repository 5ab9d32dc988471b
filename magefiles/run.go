//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the headless testbed. ANIMA_CONFIG points to a configuration file.
func (Run) Engine() error {
	args := []string{"run", "."}
	if path := os.Getenv("ANIMA_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}

// Runs the testbed until interrupted, reloading layouts from the assets
// directory.
func (Run) Watch() error {
	mg.Deps(Build.Debug)
	dir := os.Getenv("ANIMA_ASSETS")
	if dir == "" {
		dir = "assets"
	}
	cfg, err := os.CreateTemp("", "anima-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(cfg.Name())
	if _, err := fmt.Fprintf(cfg, "log_level = \"debug\"\n\n[assets]\ndir = %q\nwatch = true\n", dir); err != nil {
		cfg.Close()
		return err
	}
	if err := cfg.Close(); err != nil {
		return err
	}
	_, err = executeCmd("./bin/anima-buffers-debug", withArgs("-config", cfg.Name(), "-frames", "0"), withStream())
	return err
}
