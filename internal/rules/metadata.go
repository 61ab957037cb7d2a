package rules

import (
	_ "embed"
	"fmt"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed rules.toml
var metadataTOML []byte

// Metadata is the static, human-readable description of one rule. The
// rationale prose from the style guide lives here as data; the checker
// never interprets it.
type Metadata struct {
	ID          string `toml:"id"`
	Title       string `toml:"title"`
	Severity    string `toml:"severity"`
	Description string `toml:"description"`
	Rationale   string `toml:"rationale"`
}

type metadataFile struct {
	Version int        `toml:"version"`
	Rules   []Metadata `toml:"rule"`
}

var metadataByID = loadMetadata()

func loadMetadata() map[string]Metadata {
	var mf metadataFile
	if err := toml.Unmarshal(metadataTOML, &mf); err != nil {
		panic(fmt.Sprintf("embedded rules.toml is malformed: %v", err))
	}
	m := make(map[string]Metadata, len(mf.Rules))
	for _, md := range mf.Rules {
		m[md.ID] = md
	}
	return m
}

// MetadataFor returns the static metadata for a rule id.
func MetadataFor(id string) (Metadata, bool) {
	md, ok := metadataByID[id]
	return md, ok
}

// AllMetadata returns metadata for every known id, sorted by id.
func AllMetadata() []Metadata {
	out := make([]Metadata, 0, len(metadataByID))
	for _, md := range metadataByID {
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
