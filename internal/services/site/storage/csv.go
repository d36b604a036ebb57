package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// SummaryColumns is the header every summary CSV must carry, in any order.
var SummaryColumns = []string{
	"material_id",
	"model",
	"formula",
	"n_sites",
	"supercell",
	"max_freq_thz",
	"min_freq_thz",
	"last_ph_dos_peak_thz",
	"ph_dos_mae_thz",
	"ph_dos_r2",
	"has_imag_freq",
	"has_imag_gamma_freq",
}

// ReadSummariesCSV decodes summary rows from r. Gzipped input is detected by
// its magic bytes and decompressed. Unknown columns are ignored; a missing
// column or a malformed cell fails the whole read.
func ReadSummariesCSV(r io.Reader) ([]MaterialSummary, error) {
	r, err := decompressed(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.New(apperrors.CodeSummaryInvalid, "summary csv is empty")
		}
		return nil, apperrors.Wrap(apperrors.CodeSummaryInvalid, "read summary csv header", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range SummaryColumns {
		if _, ok := columns[name]; !ok {
			return nil, apperrors.New(apperrors.CodeSummaryInvalid, fmt.Sprintf("summary csv is missing column %q", name))
		}
	}

	var summaries []MaterialSummary
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeSummaryInvalid, "read summary csv", err)
		}
		line, _ := reader.FieldPos(0)
		row := csvRow{record: record, columns: columns, line: line}
		summary, err := row.summary()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

type csvRow struct {
	record  []string
	columns map[string]int
	line    int
	err     error
}

func (r *csvRow) summary() (MaterialSummary, error) {
	s := MaterialSummary{
		MaterialID:       r.text("material_id", true),
		Model:            r.text("model", true),
		Formula:          r.text("formula", false),
		NSites:           r.integer("n_sites"),
		Supercell:        r.text("supercell", false),
		MaxFreq:          r.float("max_freq_thz"),
		MinFreq:          r.float("min_freq_thz"),
		LastPhDOSPeak:    r.float("last_ph_dos_peak_thz"),
		PhDOSMAE:         r.optionalFloat("ph_dos_mae_thz"),
		PhDOSR2:          r.optionalFloat("ph_dos_r2"),
		HasImagFreq:      r.boolean("has_imag_freq"),
		HasImagGammaFreq: r.boolean("has_imag_gamma_freq"),
	}
	if r.err != nil {
		return MaterialSummary{}, r.err
	}
	return s, nil
}

func (r *csvRow) cell(column string) string {
	idx := r.columns[column]
	if idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *csvRow) fail(column string, value string, cause error) {
	if r.err != nil {
		return
	}
	r.err = apperrors.WrapWithMetadata(
		apperrors.CodeSummaryInvalid,
		fmt.Sprintf("summary csv line %d: invalid %s %q", r.line, column, value),
		map[string]string{"column": column, "line": strconv.Itoa(r.line)},
		cause,
	)
}

func (r *csvRow) text(column string, required bool) string {
	value := r.cell(column)
	if required && value == "" {
		r.fail(column, value, errors.New("value is required"))
	}
	return value
}

func (r *csvRow) integer(column string) int {
	value := r.cell(column)
	n, err := strconv.Atoi(value)
	if err != nil {
		r.fail(column, value, err)
	}
	return n
}

func (r *csvRow) float(column string) float64 {
	value := r.cell(column)
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(column, value, err)
	}
	return f
}

func (r *csvRow) optionalFloat(column string) *float64 {
	value := r.cell(column)
	if value == "" || strings.EqualFold(value, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(column, value, err)
		return nil
	}
	return &f
}

func (r *csvRow) boolean(column string) bool {
	value := r.cell(column)
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(column, value, err)
	}
	return b
}

func decompressed(r io.Reader) (io.Reader, error) {
	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrap(apperrors.CodeSummaryInvalid, "read summary csv", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return buffered, nil
	}
	gz, err := gzip.NewReader(buffered)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSummaryInvalid, "open gzipped summary csv", err)
	}
	return gz, nil
}
