// Package catalog maps material identifiers to the pre-built figure artifacts
// that encode them in their file names.
//
// A Catalog is constructed once from a fixed artifact set and is read-only
// afterwards, so it is safe for concurrent use without locking.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

const tracerName = "github.com/ffonons/site/internal/platform/assets/catalog"

// Catalog is the immutable identifier to artifact mapping.
type Catalog struct {
	prefix       string
	artifacts    []Artifact
	identifiers  []string
	byIdentifier map[string][]int
	byKey        map[string]int
}

// Entry is one navigable catalog row.
type Entry struct {
	Identifier string
	Link       string
	Artifacts  int
}

// New builds a catalog over artifacts in the given order.
//
// Identifiers keep the order of their first occurrence. Duplicate artifact
// keys are rejected so the exact-key lookup never has two candidates.
func New(prefix string, artifacts []Artifact) (*Catalog, error) {
	c := &Catalog{
		prefix:       normalizePrefix(prefix),
		artifacts:    make([]Artifact, 0, len(artifacts)),
		byIdentifier: make(map[string][]int),
		byKey:        make(map[string]int, len(artifacts)),
	}
	for _, artifact := range artifacts {
		key := artifact.Key()
		if key == "" {
			return nil, apperrors.New(apperrors.CodeManifestInvalid, "artifact key is required")
		}
		if artifact.Load == nil {
			return nil, apperrors.WithMetadata(apperrors.CodeManifestInvalid, "artifact loader is required", map[string]string{"key": key})
		}
		if _, exists := c.byKey[key]; exists {
			return nil, apperrors.WithMetadata(apperrors.CodeManifestInvalid, fmt.Sprintf("duplicate artifact key %q", key), map[string]string{"key": key})
		}
		idx := len(c.artifacts)
		c.artifacts = append(c.artifacts, artifact)
		c.byKey[key] = idx

		identifier := artifact.Identifier()
		if identifier == "" {
			continue
		}
		if _, seen := c.byIdentifier[identifier]; !seen {
			c.identifiers = append(c.identifiers, identifier)
		}
		c.byIdentifier[identifier] = append(c.byIdentifier[identifier], idx)
	}
	return c, nil
}

// Prefix returns the identifier tag used for matching.
func (c *Catalog) Prefix() string {
	if c == nil {
		return DefaultPrefix
	}
	return c.prefix
}

// Len returns the number of artifacts.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.artifacts)
}

// Artifacts returns a copy of all artifacts in catalog order.
func (c *Catalog) Artifacts() []Artifact {
	if c == nil {
		return nil
	}
	return append([]Artifact(nil), c.artifacts...)
}

// Identifiers returns distinct identifiers in first-occurrence order.
func (c *Catalog) Identifiers() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.identifiers...)
}

// Entries returns one (identifier, link) row per identifier. link maps an
// identifier to its page location; a nil link leaves Link empty.
func (c *Catalog) Entries(link func(identifier string) string) []Entry {
	if c == nil {
		return nil
	}
	entries := make([]Entry, 0, len(c.identifiers))
	for _, identifier := range c.identifiers {
		count := len(c.byIdentifier[identifier])
		if count == 0 {
			continue
		}
		entry := Entry{Identifier: identifier, Artifacts: count}
		if link != nil {
			entry.Link = link(identifier)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Match returns the artifacts whose path contains "<prefix>-<identifier>" as
// a delimiter-bounded run, in catalog order. "mp-1" therefore does not match
// "mp-12-bs-dos-pbe".
func (c *Catalog) Match(identifier string) []Artifact {
	if c == nil {
		return nil
	}
	sub := needle(c.prefix, identifier)
	if sub == "" {
		return nil
	}
	var matched []Artifact
	for _, artifact := range c.artifacts {
		if containsBounded(artifact.Path, sub) {
			matched = append(matched, artifact)
		}
	}
	return matched
}

// Resolve realizes every artifact matching identifier.
//
// All loaders run concurrently and Resolve waits for all of them; one failed
// load fails the whole batch. No match yields a CodeNotFound error.
func (c *Catalog) Resolve(ctx context.Context, identifier string) ([]Figure, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.identifier", identifier))

	matched := c.Match(identifier)
	span.SetAttributes(attribute.Int("catalog.matches", len(matched)))
	if len(matched) == 0 {
		return nil, notFound("identifier", identifier)
	}

	figures, err := loadAll(ctx, matched)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load artifacts")
		return nil, err
	}
	return figures, nil
}

// Lookup realizes the single artifact whose key equals key exactly.
func (c *Catalog) Lookup(ctx context.Context, key string) (Figure, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.Lookup")
	defer span.End()
	key = strings.TrimSpace(key)
	span.SetAttributes(attribute.String("catalog.key", key))

	if c == nil {
		return Figure{}, notFound("key", key)
	}
	idx, ok := c.byKey[key]
	if !ok {
		return Figure{}, notFound("key", key)
	}
	figure, err := load(ctx, c.artifacts[idx])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load artifact")
		return Figure{}, err
	}
	return figure, nil
}

// loadAll fans out one goroutine per artifact and joins before returning.
// Results keep the input order regardless of completion order.
func loadAll(ctx context.Context, artifacts []Artifact) ([]Figure, error) {
	figures := make([]Figure, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	for i, artifact := range artifacts {
		g.Go(func() error {
			figure, err := load(gctx, artifact)
			if err != nil {
				return err
			}
			figures[i] = figure
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return figures, nil
}

func load(ctx context.Context, artifact Artifact) (Figure, error) {
	figure, err := artifact.Load(ctx)
	if err != nil {
		return Figure{}, apperrors.WrapWithMetadata(
			apperrors.CodeArtifactLoadFailed,
			"load artifact "+artifact.Key(),
			map[string]string{"key": artifact.Key(), "path": artifact.Path},
			err,
		)
	}
	return figure, nil
}

func notFound(field string, value string) error {
	return apperrors.WithMetadata(
		apperrors.CodeNotFound,
		fmt.Sprintf("no artifact for %s %q", field, value),
		map[string]string{field: value},
	)
}
