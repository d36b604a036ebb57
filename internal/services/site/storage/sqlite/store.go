// Package sqlite provides a SQLite-backed material summary store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/ffonons/site/internal/platform/storage/sqlitemigrate"
	"github.com/ffonons/site/internal/services/site/storage"
	"github.com/ffonons/site/internal/services/site/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists material summaries in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.SummaryStore = (*Store)(nil)

// Open opens a SQLite summary store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	return openDSN(ctx, dsn)
}

// OpenReadOnly opens an existing summary database without applying
// migrations, for serving a database produced by the build step.
func OpenReadOnly(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqlDB, err := sql.Open("sqlite", "file:"+filepath.ToSlash(filepath.Clean(path))+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func openDSN(ctx context.Context, dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// UpsertSummaries writes summaries in one transaction, replacing any row with
// the same material and model.
func (s *Store) UpsertSummaries(ctx context.Context, summaries []storage.MaterialSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	for _, summary := range summaries {
		if strings.TrimSpace(summary.MaterialID) == "" {
			return fmt.Errorf("material id is required")
		}
		if strings.TrimSpace(summary.Model) == "" {
			return fmt.Errorf("model is required for material %s", summary.MaterialID)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert summaries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO material_summaries (
		   material_id,
		   model,
		   formula,
		   n_sites,
		   supercell,
		   max_freq_thz,
		   min_freq_thz,
		   last_ph_dos_peak_thz,
		   ph_dos_mae_thz,
		   ph_dos_r2,
		   has_imag_freq,
		   has_imag_gamma_freq,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(material_id, model) DO UPDATE SET
		   formula = excluded.formula,
		   n_sites = excluded.n_sites,
		   supercell = excluded.supercell,
		   max_freq_thz = excluded.max_freq_thz,
		   min_freq_thz = excluded.min_freq_thz,
		   last_ph_dos_peak_thz = excluded.last_ph_dos_peak_thz,
		   ph_dos_mae_thz = excluded.ph_dos_mae_thz,
		   ph_dos_r2 = excluded.ph_dos_r2,
		   has_imag_freq = excluded.has_imag_freq,
		   has_imag_gamma_freq = excluded.has_imag_gamma_freq,
		   updated_at = excluded.updated_at`,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert summaries: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().UnixMilli()
	for _, summary := range summaries {
		if _, err := stmt.ExecContext(ctx,
			strings.TrimSpace(summary.MaterialID),
			strings.TrimSpace(summary.Model),
			summary.Formula,
			summary.NSites,
			summary.Supercell,
			summary.MaxFreq,
			summary.MinFreq,
			summary.LastPhDOSPeak,
			nullFloat(summary.PhDOSMAE),
			nullFloat(summary.PhDOSR2),
			boolToInt(summary.HasImagFreq),
			boolToInt(summary.HasImagGammaFreq),
			updatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert summary %s/%s: %w", summary.MaterialID, summary.Model, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert summaries: %w", err)
	}
	return nil
}

// ListByMaterial returns every model's summary for one material, ordered by
// model tag.
func (s *Store) ListByMaterial(ctx context.Context, materialID string) ([]storage.MaterialSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	materialID = strings.TrimSpace(materialID)
	if materialID == "" {
		return nil, fmt.Errorf("material id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT material_id, model, formula, n_sites, supercell,
		        max_freq_thz, min_freq_thz, last_ph_dos_peak_thz,
		        ph_dos_mae_thz, ph_dos_r2,
		        has_imag_freq, has_imag_gamma_freq
		   FROM material_summaries
		  WHERE material_id = ?
		  ORDER BY model ASC`,
		materialID,
	)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []storage.MaterialSummary
	for rows.Next() {
		var (
			summary   storage.MaterialSummary
			mae       sql.NullFloat64
			r2        sql.NullFloat64
			imag      int64
			imagGamma int64
		)
		if err := rows.Scan(
			&summary.MaterialID,
			&summary.Model,
			&summary.Formula,
			&summary.NSites,
			&summary.Supercell,
			&summary.MaxFreq,
			&summary.MinFreq,
			&summary.LastPhDOSPeak,
			&mae,
			&r2,
			&imag,
			&imagGamma,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.PhDOSMAE = fromNullFloat(mae)
		summary.PhDOSR2 = fromNullFloat(r2)
		summary.HasImagFreq = imag != 0
		summary.HasImagGammaFreq = imagGamma != 0
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil, storage.ErrNotFound
	}
	return summaries, nil
}

// Formulas returns the chemical formula recorded for each material.
func (s *Store) Formulas(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT material_id, MAX(formula)
		   FROM material_summaries
		  WHERE formula <> ''
		  GROUP BY material_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list formulas: %w", err)
	}
	defer rows.Close()

	formulas := make(map[string]string)
	for rows.Next() {
		var materialID, formula string
		if err := rows.Scan(&materialID, &formula); err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		formulas[materialID] = formula
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formulas: %w", err)
	}
	return formulas, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func fromNullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
