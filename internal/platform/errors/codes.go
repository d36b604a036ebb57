// Package errors provides structured domain errors for the figure site.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeArtifactNameInvalid Code = "ARTIFACT_NAME_INVALID"
	CodeArtifactLoadFailed  Code = "ARTIFACT_LOAD_FAILED"
	CodeManifestInvalid     Code = "MANIFEST_INVALID"

	// Summary errors
	CodeSummaryInvalid Code = "SUMMARY_INVALID"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeArtifactNameInvalid, CodeSummaryInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
