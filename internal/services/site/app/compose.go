// Package app composes site modules into one root handler.
package app

import (
	"fmt"
	"net/http"
	"strings"

	module "github.com/ffonons/site/internal/services/site/module"
)

// ComposeInput carries the modules to mount and their shared dependencies.
type ComposeInput struct {
	Dependencies module.Dependencies
	Modules      []module.Module
}

// Compose builds a root HTTP handler, mounting each module at its prefix.
// Two modules may not claim the same prefix.
func Compose(input ComposeInput) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)
	for _, feature := range input.Modules {
		if feature == nil {
			return nil, fmt.Errorf("module is nil")
		}
		mount, err := feature.Mount(input.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("mount module %q: %w", feature.ID(), err)
		}
		prefix := normalizePrefix(mount.Prefix)
		if prefix == "" {
			return nil, fmt.Errorf("mount module %q: prefix is required", feature.ID())
		}
		if mount.Handler == nil {
			return nil, fmt.Errorf("mount module %q: handler is required", feature.ID())
		}
		if previous, ok := seen[prefix]; ok {
			return nil, fmt.Errorf("module %q duplicates prefix %q owned by module %q", feature.ID(), prefix, previous)
		}
		seen[prefix] = feature.ID()
		root.Handle(prefix, mount.Handler)
	}
	return root, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
