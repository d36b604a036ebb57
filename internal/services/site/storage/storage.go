// Package storage defines persistence contracts for per-material phonon
// summaries shown next to the figures.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates no summary rows exist for a material.
var ErrNotFound = errors.New("record not found")

// MaterialSummary is one model's phonon summary for one material.
type MaterialSummary struct {
	MaterialID string
	Model      string
	Formula    string
	NSites     int
	Supercell  string

	// Frequencies are in THz.
	MaxFreq       float64
	MinFreq       float64
	LastPhDOSPeak float64

	// PhDOSMAE and PhDOSR2 compare the model against the reference
	// calculation and are nil for the reference itself.
	PhDOSMAE         *float64
	PhDOSR2          *float64
	HasImagFreq      bool
	HasImagGammaFreq bool
}

// SummaryStore persists material summaries.
type SummaryStore interface {
	UpsertSummaries(ctx context.Context, summaries []MaterialSummary) error
	ListByMaterial(ctx context.Context, materialID string) ([]MaterialSummary, error)
	Formulas(ctx context.Context) (map[string]string, error)
}
