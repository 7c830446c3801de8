package usertests

import (
	"bytes"
	_ "embed"

	"github.com/qa-tooling/user-api-contract-tests/framework/tolerance"
)

//go:embed tracked_bugs.yaml
var defaultCatalogue []byte

// DefaultCatalogue returns the tracked-bug catalogue built into the suite.
func DefaultCatalogue() (*tolerance.Catalogue, error) {
	return tolerance.ParseCatalogue(bytes.NewReader(defaultCatalogue))
}

// LoadCatalogue returns the catalogue at path, or the built-in one if path is empty.
func LoadCatalogue(path string) (*tolerance.Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	return tolerance.LoadCatalogueFile(path)
}
