// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stubapi serves a local stand-in for the award lookup service. It
// answers the same endpoints with the same JSON shapes from award records
// loaded into an in-memory SQLite index, so the client and CLI can be run
// without the real crawler.
package stubapi

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// sampleAwards is served when no fixture file is configured.
//
//go:embed sample_awards.yaml
var sampleAwards []byte

// Index holds award records in an in-memory SQLite database.
type Index struct {
	db *sql.DB
}

// OpenIndex creates an empty index.
func OpenIndex() (*Index, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	ix := &Index{db: db}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return ix, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE awards (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			award_year TEXT,
			pi_name TEXT,
			organ TEXT,
			plan_name TEXT,
			period TEXT,
			total_amount TEXT,
			impact TEXT,
			keywords_zh TEXT,
			keywords_en TEXT,
			project_no TEXT
		)`,
		`CREATE INDEX idx_awards_pi_name ON awards(pi_name)`,
		`CREATE INDEX idx_awards_plan_name ON awards(plan_name)`,
		`CREATE INDEX idx_awards_project_no ON awards(project_no)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const awardColumns = `award_year, pi_name, organ, plan_name, period, total_amount, impact, keywords_zh, keywords_en, project_no`

// Load inserts records in order and returns how many were added. Null
// fields are stored as NULL and come back null.
func (ix *Index) Load(ctx context.Context, records []types.AwardRecord) (int, error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO awards (`+awardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			nullable(r.AwardYear), nullable(r.PIName), nullable(r.Organ),
			nullable(r.PlanName), nullable(r.Period), nullable(r.TotalAmount),
			nullable(r.Impact), nullable(r.KeywordsZH), nullable(r.KeywordsEN),
			nullable(r.ProjectNo),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing records: %w", err)
	}
	return len(records), nil
}

// ByPIName returns the records of one investigator, matched on the trimmed
// name, in load order.
func (ix *Index) ByPIName(ctx context.Context, name string) ([]types.AwardRecord, error) {
	return ix.query(ctx, `WHERE trim(pi_name) = ? ORDER BY seq`, strings.TrimSpace(name))
}

// ByPlanName returns the records whose plan name matches exactly, in load order.
func (ix *Index) ByPlanName(ctx context.Context, plan string) ([]types.AwardRecord, error) {
	return ix.query(ctx, `WHERE plan_name = ? ORDER BY seq`, plan)
}

// Impact returns the impact statement of a project. ok is false when the
// project is unknown or has no impact text.
func (ix *Index) Impact(ctx context.Context, projectNo string) (impact string, ok bool, err error) {
	var v sql.NullString
	err = ix.db.QueryRowContext(ctx,
		`SELECT impact FROM awards WHERE project_no = ? AND trim(coalesce(impact, '')) != '' ORDER BY seq LIMIT 1`,
		strings.TrimSpace(projectNo),
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying impact: %w", err)
	}
	return v.String, true, nil
}

// Count returns the number of indexed records.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM awards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (ix *Index) query(ctx context.Context, where string, args ...any) ([]types.AwardRecord, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT `+awardColumns+` FROM awards `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying awards: %w", err)
	}
	defer rows.Close()

	records := []types.AwardRecord{}
	for rows.Next() {
		var cols [10]sql.NullString
		dest := make([]any, len(cols))
		for i := range cols {
			dest[i] = &cols[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning award: %w", err)
		}
		records = append(records, types.AwardRecord{
			AwardYear:   text(cols[0]),
			PIName:      text(cols[1]),
			Organ:       text(cols[2]),
			PlanName:    text(cols[3]),
			Period:      text(cols[4]),
			TotalAmount: text(cols[5]),
			Impact:      text(cols[6]),
			KeywordsZH:  text(cols[7]),
			KeywordsEN:  text(cols[8]),
			ProjectNo:   text(cols[9]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating awards: %w", err)
	}
	return records, nil
}

func nullable(t types.Text) sql.NullString {
	return sql.NullString{String: t.String(), Valid: !t.IsNull()}
}

func text(s sql.NullString) types.Text {
	if !s.Valid {
		return types.Null()
	}
	return types.NewText(s.String)
}

// ReadFixtures parses a YAML list of award records. An empty path yields
// the built-in sample records.
func ReadFixtures(path string) ([]types.AwardRecord, error) {
	data := sampleAwards
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading fixtures: %w", err)
		}
	}

	var records []types.AwardRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}
	return records, nil
}
