// Package templates holds the site's templ components and the view models
// they render. Handlers decide what to show; components only format it.
package templates

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// SiteName is the brand shown in titles and the header.
const SiteName = "Phonons"

// LayoutOptions configures the page shell.
type LayoutOptions struct {
	Title string
	// ClientScript includes the site script.
	ClientScript bool
	// LiveReload makes the script poll for catalog rebuilds.
	LiveReload bool
}

// PageTitle joins a page title with the site name.
func PageTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return SiteName
	}
	return title + " · " + SiteName
}

// CatalogEntry is one navigable material row.
type CatalogEntry struct {
	Identifier string
	Link       string
	Formula    string
	Figures    int
}

// CatalogView is the catalog page model.
type CatalogView struct {
	Database     string
	Entries      []CatalogEntry
	MetricsTable string
	// ShowList gates the material list on client-side script support.
	ShowList bool
}

// SummaryRow is one model's formatted summary values.
type SummaryRow struct {
	Model     string
	Color     string
	MaxFreq   string
	MinFreq   string
	LastPeak  string
	MAE       string
	R2        string
	Imaginary string
	ImagGamma string
}

func (r SummaryRow) cells() []string {
	return []string{r.MaxFreq, r.MinFreq, r.LastPeak, r.MAE, r.R2, r.Imaginary, r.ImagGamma}
}

var summaryHeadings = []string{
	"Model",
	"Max freq (THz)",
	"Min freq (THz)",
	"Last DOS peak (THz)",
	"DOS MAE (THz)",
	"DOS R²",
	"Imaginary modes",
	"Imaginary at Γ",
}

// modelStyle colors a model label. Unsafe values are replaced by templ.
func modelStyle(color string) templ.SafeCSS {
	return templ.SanitizeCSS("color", color)
}

// FigureView is one rendered figure.
type FigureView struct {
	Key       string
	Link      string
	Title     string
	Caption   string
	MediaType string
	Body      []byte
}

// figureDataURL embeds a raster figure. The media type comes from the
// catalog's extension table, never from request input.
func figureDataURL(view FigureView) templ.SafeURL {
	return templ.SafeURL("data:" + view.MediaType + ";base64," + base64.StdEncoding.EncodeToString(view.Body))
}

// MaterialView is the identifier page model.
type MaterialView struct {
	Identifier string
	Formula    string
	Database   string
	Summaries  []SummaryRow
	Figures    []FigureView
}

// FigurePageView is the single-figure page model.
type FigurePageView struct {
	Identifier string
	Link       string
	Figure     FigureView
}

// ErrorPageTitle returns the document title for an error status.
func ErrorPageTitle(statusCode int) string {
	return strconv.Itoa(statusCode) + " " + http.StatusText(statusCode)
}

func showErrorMessage(statusCode int, message string) bool {
	return message != "" && message != http.StatusText(statusCode)
}
