package catalog

import (
	"path"
	"strings"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

// DefaultPrefix is the identifier tag used by Materials Project figures.
const DefaultPrefix = "mp"

const (
	tokenDelimiter = "-"
	modelDelimiter = "-vs-"
)

// Kind identifies the plot type encoded in an artifact name.
type Kind string

const (
	KindBandsDOS Kind = "bs-dos"
	KindBands    Kind = "bs"
	KindDOS      Kind = "dos"
)

// Name is the decoded form of an artifact file name:
// <prefix>-<number>-<plot-kind>-<model-tags...>.
type Name struct {
	Key        string
	Identifier string
	Kind       Kind
	Models     []string
}

// ParseName decodes the artifact naming convention.
//
// The file name must start with "<prefix>-"; the identifier is the prefix
// joined with the token after it, so hyphenated prefixes such as "phonon-db"
// decode like "mp". Model tags are split on "-vs-" when present; otherwise the
// whole tail is kept as one tag since model names themselves contain hyphens.
func ParseName(filePath string, prefix string) (Name, error) {
	prefix = normalizePrefix(prefix)
	key := KeyFromPath(filePath)
	rest, ok := strings.CutPrefix(key, prefix+tokenDelimiter)
	tokens := strings.Split(rest, tokenDelimiter)
	if !ok || len(tokens) < 2 || tokens[0] == "" || tokens[1] == "" {
		return Name{}, apperrors.WithMetadata(
			apperrors.CodeArtifactNameInvalid,
			"artifact name must look like "+prefix+"-<id>-<kind>-<models>",
			map[string]string{"path": filePath},
		)
	}

	name := Name{
		Key:        key,
		Identifier: prefix + tokenDelimiter + tokens[0],
	}
	kindAndModels := tokens[1:]
	if len(kindAndModels) >= 2 && kindAndModels[0] == string(KindBands) && kindAndModels[1] == string(KindDOS) {
		name.Kind = KindBandsDOS
		kindAndModels = kindAndModels[2:]
	} else {
		name.Kind = Kind(kindAndModels[0])
		kindAndModels = kindAndModels[1:]
	}
	if tail := strings.Join(kindAndModels, tokenDelimiter); tail != "" {
		for _, model := range strings.Split(tail, modelDelimiter) {
			if model = strings.TrimSpace(model); model != "" {
				name.Models = append(name.Models, model)
			}
		}
	}
	return name, nil
}

// KeyFromPath returns the file name of p without directory or extension.
func KeyFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// IdentifierFromPath extracts the identifier token pair from p by splitting
// its file name on "-". It returns false for names with fewer than two tokens.
func IdentifierFromPath(p string) (string, bool) {
	tokens := strings.SplitN(KeyFromPath(p), tokenDelimiter, 3)
	if len(tokens) < 2 || tokens[0] == "" || tokens[1] == "" {
		return "", false
	}
	return tokens[0] + tokenDelimiter + tokens[1], true
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), tokenDelimiter)
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// needle builds the "<prefix>-<identifier>" search string. Identifiers that
// already carry the prefix are used as-is so both "2691" and "mp-2691" work.
func needle(prefix string, identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ""
	}
	if strings.HasPrefix(identifier, prefix+tokenDelimiter) {
		return identifier
	}
	return prefix + tokenDelimiter + identifier
}

// containsBounded reports whether s contains sub as a whole delimited token
// run: the match must start at the beginning of s or after '/', '-' or '_',
// and end at the end of s or before '-', '.', '/' or '_'.
func containsBounded(s string, sub string) bool {
	if sub == "" {
		return false
	}
	for offset := 0; offset <= len(s)-len(sub); {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(sub)
		if isLeftBoundary(s, start) && isRightBoundary(s, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isLeftBoundary(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	switch s[idx-1] {
	case '/', '-', '_':
		return true
	}
	return false
}

func isRightBoundary(s string, idx int) bool {
	if idx == len(s) {
		return true
	}
	switch s[idx] {
	case '-', '.', '/', '_':
		return true
	}
	return false
}
