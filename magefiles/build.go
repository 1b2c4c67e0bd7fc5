//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Binary builds the scenepipe-inspect entrypoint into ./bin.
func (Build) Binary() error {
	fmt.Println("Build scenepipe-inspect...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/scenepipe-inspect", "./cmd/scenepipe-inspect"), withStream())
	return err
}
