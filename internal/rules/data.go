package rules

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var embeddedData []byte

// Data is the table-driven part of the catalog.
type Data struct {
	ArgumentExceptions map[string]ExceptionTemplate `yaml:"argument_exceptions"`
	Constraints        map[string]string            `yaml:"nunit_constraints"`
	Contractions       []Contraction                `yaml:"contractions"`
}

// ExceptionTemplate renders the constructor arguments of an argument
// exception. {param} is replaced by the parameter name.
type ExceptionTemplate struct {
	Args string `yaml:"args"`
}

// Contraction is a colloquial phrase and its written-out form.
type Contraction struct {
	Phrase string `yaml:"phrase"`
	Use    string `yaml:"use"`

	re *regexp.Regexp
}

// LoadData decodes rule data from YAML. Unknown fields are errors.
func LoadData(raw []byte) (*Data, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	var d Data
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("rule data: %w", err)
	}
	if err := d.compile(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DefaultData returns the data built into the binary.
func DefaultData() (*Data, error) {
	return LoadData(embeddedData)
}

func (d *Data) compile() error {
	for name, tpl := range d.ArgumentExceptions {
		if !strings.Contains(tpl.Args, "{param}") {
			return fmt.Errorf("rule data: %s: template without {param}", name)
		}
	}
	for method, tpl := range d.Constraints {
		if placeholders(tpl) == 0 {
			return fmt.Errorf("rule data: %s: constraint without arguments", method)
		}
	}
	for i := range d.Contractions {
		c := &d.Contractions[i]
		if c.Phrase == "" {
			return fmt.Errorf("rule data: contraction %d: empty phrase", i)
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(c.Phrase) + `\b`)
		if err != nil {
			return fmt.Errorf("rule data: contraction %q: %w", c.Phrase, err)
		}
		c.re = re
	}
	// длинные фразы первыми, чтобы "couldn't" не совпадал частично
	sort.SliceStable(d.Contractions, func(i, j int) bool {
		return len(d.Contractions[i].Phrase) > len(d.Contractions[j].Phrase)
	})
	return nil
}

// placeholders returns how many leading arguments tpl refers to: the highest
// {N} plus one.
func placeholders(tpl string) int {
	n := 0
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '{' {
			continue
		}
		end := strings.IndexByte(tpl[i:], '}')
		if end < 0 {
			break
		}
		if k, err := strconv.Atoi(tpl[i+1 : i+end]); err == nil && k+1 > n {
			n = k + 1
		}
		i += end
	}
	return n
}

// expand substitutes {N} with args[N] and {param} with param.
func expand(tpl, param string, args []string) string {
	pairs := []string{"{param}", param}
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
