//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Inspect runs the pipeline against the bundle path given in the
// SCENEPIPE_BUNDLE environment variable.
func (Run) Inspect() error {
	bundle := envOrDefault("SCENEPIPE_BUNDLE", "")
	if bundle == "" {
		return fmt.Errorf("SCENEPIPE_BUNDLE must point at a bundle directory")
	}
	fmt.Println("Run scenepipe-inspect...")
	_, err := executeCmd("go", withArgs("run", "./cmd/scenepipe-inspect", "-bundle", bundle), withStream())
	return err
}
