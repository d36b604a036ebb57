// Package routepath centralizes site route paths and builders.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root          = "/"
	Health        = "/up"
	StaticPrefix  = "/static/"
	FiguresPrefix = "/figures/"
	APIPrefix     = "/api/"
	APICatalog    = "/api/catalog"
	APIVersion    = "/api/version"
)

// Material returns the page path for a material identifier.
func Material(identifier string) string {
	return Root + escape(identifier)
}

// Figure returns the single-figure page path for an artifact key.
func Figure(key string) string {
	return FiguresPrefix + escape(key)
}

// Static returns the path of a bundled static asset.
func Static(name string) string {
	return StaticPrefix + strings.TrimPrefix(strings.TrimSpace(name), "/")
}

func escape(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}
