package materials

import (
	"strconv"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/services/site/storage"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

const missingValue = "n/a"

func summaryRows(labels catalog.Labels, summaries []storage.MaterialSummary) []sitetemplates.SummaryRow {
	if len(summaries) == 0 {
		return nil
	}
	rows := make([]sitetemplates.SummaryRow, 0, len(summaries))
	for _, summary := range summaries {
		label := labels.Model(summary.Model)
		rows = append(rows, sitetemplates.SummaryRow{
			Model:     label.Label,
			Color:     label.Color,
			MaxFreq:   formatFloat(summary.MaxFreq),
			MinFreq:   formatFloat(summary.MinFreq),
			LastPeak:  formatFloat(summary.LastPhDOSPeak),
			MAE:       formatOptional(summary.PhDOSMAE),
			R2:        formatOptional(summary.PhDOSR2),
			Imaginary: formatBool(summary.HasImagFreq),
			ImagGamma: formatBool(summary.HasImagGammaFreq),
		})
	}
	return rows
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func formatOptional(value *float64) string {
	if value == nil {
		return missingValue
	}
	return formatFloat(*value)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
