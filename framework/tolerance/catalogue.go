package tolerance

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalogue holds one canonical record per check, so that each tracked defect is described in
// exactly one place.
//
// The YAML format is:
//
//	checks:
//	  - name: login-inactive-user
//	    bug: BUG-004
//	    description: soft-deleted users can still log in
//	    ideal: [401]
//	    tolerated: [200, 401]
//
// Omitting "tolerated" makes the check strict. Values are decoded into whatever type the caller
// passes to Lookup.
type Catalogue struct {
	entries map[string]catalogueEntry
}

type catalogueEntry struct {
	Name        string    `yaml:"name"`
	Bug         string    `yaml:"bug"`
	Description string    `yaml:"description"`
	Ideal       yaml.Node `yaml:"ideal"`
	Tolerated   yaml.Node `yaml:"tolerated"`
}

type catalogueDocument struct {
	Checks []catalogueEntry `yaml:"checks"`
}

// ParseCatalogue reads a catalogue document.
func ParseCatalogue(r io.Reader) (*Catalogue, error) {
	var doc catalogueDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "malformed bug catalogue")
	}
	c := &Catalogue{entries: make(map[string]catalogueEntry, len(doc.Checks))}
	for _, e := range doc.Checks {
		if e.Name == "" {
			return nil, &ConfigurationError{Message: "catalogue entry has no name"}
		}
		if _, dup := c.entries[e.Name]; dup {
			return nil, &ConfigurationError{Check: e.Name, Message: "duplicate catalogue entry"}
		}
		if e.Ideal.Kind != yaml.SequenceNode {
			return nil, &ConfigurationError{Check: e.Name, Message: "ideal must be a list"}
		}
		if e.Tolerated.Kind != 0 && e.Tolerated.Kind != yaml.SequenceNode {
			return nil, &ConfigurationError{Check: e.Name, Message: "tolerated must be a list"}
		}
		c.entries[e.Name] = e
	}
	return c, nil
}

// LoadCatalogueFile reads a catalogue from a file path.
func LoadCatalogueFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open bug catalogue %s", path)
	}
	defer f.Close()
	return ParseCatalogue(f)
}

// Names returns the names of all checks in the catalogue, sorted.
func (c *Catalogue) Names() []string {
	ret := make([]string, 0, len(c.entries))
	for name := range c.entries {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// BugIDs returns the distinct tracked bug IDs referenced by the catalogue, sorted.
func (c *Catalogue) BugIDs() []string {
	seen := make(map[string]bool)
	for _, e := range c.entries {
		if e.Bug != "" {
			seen[e.Bug] = true
		}
	}
	ret := make([]string, 0, len(seen))
	for id := range seen {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

// Describe returns the bug ID and description of a check.
func (c *Catalogue) Describe(name string) (bugID, description string, ok bool) {
	e, ok := c.entries[name]
	return e.Bug, e.Description, ok
}

// Lookup decodes the named check into an Outcome whose values have type V.
func Lookup[V comparable](c *Catalogue, name string) (Outcome[V], error) {
	e, ok := c.entries[name]
	if !ok {
		return Outcome[V]{}, &ConfigurationError{Check: name, Message: "not found in bug catalogue"}
	}
	var ideal, tolerated []V
	if err := e.Ideal.Decode(&ideal); err != nil {
		return Outcome[V]{}, &ConfigurationError{Check: name, Message: "cannot decode ideal values: " + err.Error()}
	}
	if e.Tolerated.Kind != 0 {
		if err := e.Tolerated.Decode(&tolerated); err != nil {
			return Outcome[V]{}, &ConfigurationError{Check: name, Message: "cannot decode tolerated values: " + err.Error()}
		}
	}
	return NewOutcome(name, e.Bug, e.Description, ideal, tolerated)
}
