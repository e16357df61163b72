// Package database enumerates embedded SQLite databases. The file is
// opened read-only; only catalog metadata, row counts and column names are
// read, never row content.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const sensitiveTablePoints = 20

type Analyzer struct {
	sensitiveNames []string
}

// NewAnalyzer builds a database analyzer. sensitiveNames are lowercase
// substrings matched against table names.
func NewAnalyzer(sensitiveNames []string) *Analyzer {
	return &Analyzer{sensitiveNames: sensitiveNames}
}

func (a *Analyzer) Analyze(ctx context.Context, path string) *forensic.DatabaseFindings {
	findings := &forensic.DatabaseFindings{
		Finding: forensic.Finding{Category: "database"},
		Type:    "sqlite",
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", url.PathEscape(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		findings.SetError(fmt.Errorf("open database: %w", err))
		return findings
	}
	defer db.Close()

	if err := a.enumerate(ctx, db, findings); err != nil {
		findings.SetError(fmt.Errorf("enumerate database: %w", err))
		return findings
	}

	if count := len(findings.SensitiveTables); count > 0 {
		findings.Flag(fmt.Sprintf("%d table(s) with sensitive names: %s",
			count, strings.Join(findings.SensitiveTables, ", ")), sensitiveTablePoints)
	}
	return findings
}

func (a *Analyzer) enumerate(ctx context.Context, db *sql.DB, findings *forensic.DatabaseFindings) error {
	rows, err := db.QueryContext(ctx,
		`SELECT name, type FROM sqlite_master WHERE type IN ('table', 'index') ORDER BY name`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return err
		}
		switch kind {
		case "table":
			findings.Tables = append(findings.Tables, name)
		case "index":
			findings.Indices = append(findings.Indices, name)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	findings.TableCount = len(findings.Tables)
	findings.Schema = map[string]forensic.TableInfo{}

	for _, table := range findings.Tables {
		info, err := a.describeTable(ctx, db, table)
		if err != nil {
			// A locked or partially corrupt table should not abort the
			// enumeration of the rest.
			findings.Indicators = append(findings.Indicators,
				fmt.Sprintf("table %s not readable: %v", table, err))
			continue
		}
		findings.Schema[table] = info
		findings.TotalRecords += info.Rows

		lower := strings.ToLower(table)
		for _, sensitive := range a.sensitiveNames {
			if strings.Contains(lower, sensitive) {
				findings.SensitiveTables = append(findings.SensitiveTables, table)
				break
			}
		}
	}
	return nil
}

func (a *Analyzer) describeTable(ctx context.Context, db *sql.DB, table string) (forensic.TableInfo, error) {
	var info forensic.TableInfo

	// Table names come from sqlite_master, not user input, but quoting
	// still matters because they may contain arbitrary characters.
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoted).Scan(&info.Rows); err != nil {
		return info, err
	}

	rows, err := db.QueryContext(ctx, `PRAGMA table_info(`+quoted+`)`)
	if err != nil {
		return info, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, kind string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &kind, &notNull, &dflt, &primaryKey); err != nil {
			return info, err
		}
		info.Columns = append(info.Columns, name)
	}
	return info, rows.Err()
}
