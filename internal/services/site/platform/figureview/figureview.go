// Package figureview turns realized figures into template view models.
package figureview

import (
	"strings"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/services/site/routepath"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

// Caption describes a figure by plot kind and compared models, for example
// "Phonon density of states: PBE vs MACE-MP".
func Caption(labels catalog.Labels, kind catalog.Kind, models []string) string {
	caption := labels.Kind(kind).Label
	if len(models) == 0 {
		return caption
	}
	return caption + ": " + strings.Join(labels.Models(models), " vs ")
}

// Figure builds the view for one figure. linked adds a caption link to the
// single-figure page.
func Figure(labels catalog.Labels, figure catalog.Figure, linked bool) sitetemplates.FigureView {
	view := sitetemplates.FigureView{
		Key:       figure.Key,
		Title:     figure.Key,
		Caption:   Caption(labels, figure.Kind, figure.Models),
		MediaType: figure.MediaType,
		Body:      figure.Body,
	}
	if linked {
		view.Link = routepath.Figure(figure.Key)
	}
	return view
}

// Figures builds views for figures in order.
func Figures(labels catalog.Labels, figures []catalog.Figure, linked bool) []sitetemplates.FigureView {
	views := make([]sitetemplates.FigureView, 0, len(figures))
	for _, figure := range figures {
		views = append(views, Figure(labels, figure, linked))
	}
	return views
}
