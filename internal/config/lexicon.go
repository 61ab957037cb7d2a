package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// lexiconFile is the schema of .pyconform/lexicons.yaml. Entries extend the
// built-in lists; they never replace them.
type lexiconFile struct {
	Verbs        []string `yaml:"verbs"`
	GenericNames []string `yaml:"generic_names"`
}

// mergeLexiconFile extends the configured lexicons from an optional YAML
// file. A missing file is not an error.
func (c *Config) mergeLexiconFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{Field: "lexicons.yaml", Message: err.Error()}
	}

	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return &ConfigError{Field: "lexicons.yaml", Message: err.Error()}
	}

	c.Lexicons.VerbPrefixes = appendUnique(c.Lexicons.VerbPrefixes, lf.Verbs)
	c.Lexicons.GenericNames = appendUnique(c.Lexicons.GenericNames, lf.GenericNames)
	return nil
}

func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if s != "" && !seen[s] {
			seen[s] = true
			base = append(base, s)
		}
	}
	return base
}
