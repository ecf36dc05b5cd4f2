// Package classify assigns canonical repository names to harvested records,
// based on an ordered table of rules.
package classify

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/miku/covpre/schema/preprint"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule is a single table row. All non-empty conditions must hold.
type Rule struct {
	Label        string `yaml:"label,omitempty"`
	LabelFrom    string `yaml:"label_from,omitempty"`
	Institution  string `yaml:"institution,omitempty"`
	Publisher    string `yaml:"publisher,omitempty"`
	GroupTitle   string `yaml:"group_title,omitempty"`
	Client       string `yaml:"client,omitempty"`
	HandlePrefix string `yaml:"handle_prefix,omitempty"`
}

// Tables holds one rule list per source family, e.g. "crossref".
type Tables map[string][]Rule

// Default returns the embedded rule tables.
func Default() Tables {
	t, err := Load(bytes.NewReader(defaultRules))
	if err != nil {
		panic(fmt.Sprintf("classify: embedded rules: %v", err))
	}
	return t
}

// Load reads rule tables from YAML.
func Load(r io.Reader) (Tables, error) {
	var t Tables
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	for source, rules := range t {
		for i, rule := range rules {
			if err := rule.validate(); err != nil {
				return nil, fmt.Errorf("classify: %s rule %d: %w", source, i+1, err)
			}
		}
	}
	return t, nil
}

// LoadFile reads rule tables from a file.
func LoadFile(name string) (Tables, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (r Rule) validate() error {
	switch {
	case r.Label != "" && r.LabelFrom != "":
		return fmt.Errorf("label and label_from are exclusive")
	case r.Label == "" && r.LabelFrom == "":
		return fmt.Errorf("label or label_from required")
	case r.LabelFrom != "" && originField(r.LabelFrom) == nil:
		return fmt.Errorf("unknown field: %s", r.LabelFrom)
	}
	return nil
}

// originField returns an accessor for a named origin field.
func originField(name string) func(preprint.Origin) string {
	switch name {
	case "institution":
		return func(o preprint.Origin) string { return o.Institution }
	case "publisher":
		return func(o preprint.Origin) string { return o.Publisher }
	case "group_title":
		return func(o preprint.Origin) string { return o.GroupTitle }
	case "client":
		return func(o preprint.Origin) string { return o.Client }
	case "handle":
		return func(o preprint.Origin) string { return o.Handle }
	}
	return nil
}

// predicate is a compiled rule.
type predicate struct {
	match func(preprint.Origin) bool
	label func(preprint.Origin) string
}

// Classifier evaluates the rules of a single source family.
type Classifier struct {
	source string
	rules  []predicate
}

// Classifier compiles the rules for a source family.
func (t Tables) Classifier(source string) (*Classifier, error) {
	rules, ok := t[source]
	if !ok || len(rules) == 0 {
		return nil, fmt.Errorf("classify: no rules for %s", source)
	}
	c := &Classifier{source: source}
	for _, r := range rules {
		c.rules = append(c.rules, compile(r))
	}
	return c, nil
}

func equals(want string, field func(preprint.Origin) string) func(preprint.Origin) bool {
	return func(o preprint.Origin) bool {
		return strings.TrimSpace(field(o)) == want
	}
}

func compile(r Rule) predicate {
	var conds []func(preprint.Origin) bool
	for _, c := range []struct {
		value string
		field string
	}{
		{r.Institution, "institution"},
		{r.Publisher, "publisher"},
		{r.GroupTitle, "group_title"},
		{r.Client, "client"},
	} {
		if c.value != "" {
			conds = append(conds, equals(strings.TrimSpace(c.value), originField(c.field)))
		}
	}
	if r.HandlePrefix != "" {
		prefix := r.HandlePrefix
		conds = append(conds, func(o preprint.Origin) bool {
			return strings.HasPrefix(o.Handle, prefix)
		})
	}
	p := predicate{
		match: func(o preprint.Origin) bool {
			for _, f := range conds {
				if !f(o) {
					return false
				}
			}
			return true
		},
	}
	if r.LabelFrom != "" {
		field := originField(r.LabelFrom)
		p.label = func(o preprint.Origin) string { return strings.TrimSpace(field(o)) }
	} else {
		label := r.Label
		p.label = func(preprint.Origin) string { return label }
	}
	return p
}

// Classify returns the repository name of the first matching rule. A rule
// taking its label from an empty field does not match.
func (c *Classifier) Classify(o preprint.Origin) (string, bool) {
	for _, p := range c.rules {
		if !p.match(o) {
			continue
		}
		if label := p.label(o); label != "" {
			return label, true
		}
	}
	return "", false
}

// Source returns the source family name.
func (c *Classifier) Source() string {
	return c.source
}
