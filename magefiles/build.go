//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the testbed binary into bin/.
func (Build) Engine() error {
	if err := goTidy(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/anima-buffers", "."), withStream())
	return err
}

// Builds with assertions enabled.
func (Build) Debug() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "debug", "-o", "bin/anima-buffers-debug", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the tests with assertions enabled and the race detector on.
func (Test) Debug() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-tags", "debug", "./..."), withStream())
	return err
}

// Runs go vet on both build variants.
func Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "-tags", "debug", "./..."), withStream())
	return err
}
