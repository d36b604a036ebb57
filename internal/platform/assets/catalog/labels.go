package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/labels.yaml
var labelsYAML []byte

var (
	loadLabelsOnce sync.Once
	embeddedLabels Labels
	labelsLoadErr  error
)

// Label is a display name for a token found in figure names.
type Label struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Color string `yaml:"color,omitempty"`
}

// Labels holds display names for models, databases and plot kinds.
type Labels struct {
	models    map[string]Label
	databases map[string]Label
	kinds     map[string]Label
}

type labelsDocument struct {
	Models    []Label `yaml:"models"`
	Databases []Label `yaml:"databases"`
	Kinds     []Label `yaml:"kinds"`
}

// DecodeLabels parses a labels YAML document.
func DecodeLabels(raw []byte) (Labels, error) {
	var doc labelsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Labels{}, fmt.Errorf("decode labels: %w", err)
	}
	models, err := indexLabels("model", doc.Models)
	if err != nil {
		return Labels{}, err
	}
	databases, err := indexLabels("database", doc.Databases)
	if err != nil {
		return Labels{}, err
	}
	kinds, err := indexLabels("kind", doc.Kinds)
	if err != nil {
		return Labels{}, err
	}
	return Labels{models: models, databases: databases, kinds: kinds}, nil
}

func indexLabels(section string, labels []Label) (map[string]Label, error) {
	out := make(map[string]Label, len(labels))
	for _, label := range labels {
		key := strings.TrimSpace(label.Key)
		if key == "" {
			return nil, fmt.Errorf("%s label key is required", section)
		}
		if _, exists := out[key]; exists {
			return nil, fmt.Errorf("duplicate %s label %q", section, key)
		}
		label.Key = key
		label.Label = strings.TrimSpace(label.Label)
		out[key] = label
	}
	return out, nil
}

// EmbeddedLabels returns the labels bundled with the binary, decoded once.
func EmbeddedLabels() (Labels, error) {
	loadLabelsOnce.Do(func() {
		embeddedLabels, labelsLoadErr = DecodeLabels(labelsYAML)
	})
	return embeddedLabels, labelsLoadErr
}

// Model returns the display label for a model tag, or the tag itself.
func (l Labels) Model(key string) Label {
	return lookupLabel(l.models, key)
}

// Database returns the display label for an identifier prefix.
func (l Labels) Database(key string) Label {
	return lookupLabel(l.databases, key)
}

// Kind returns the display label for a plot kind.
func (l Labels) Kind(kind Kind) Label {
	return lookupLabel(l.kinds, string(kind))
}

// Models returns display labels for tags, keeping their order.
func (l Labels) Models(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, l.Model(key).Label)
	}
	return out
}

func lookupLabel(labels map[string]Label, key string) Label {
	key = strings.TrimSpace(key)
	if label, ok := labels[key]; ok && label.Label != "" {
		return label
	}
	return Label{Key: key, Label: key}
}
