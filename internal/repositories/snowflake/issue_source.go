// Package snowflake materialises candidate issue ratings from the analytics
// warehouse through the database/sql Snowflake driver.
package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/platform/config"
)

// Source executes queries against a Snowflake warehouse.
type Source struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open establishes a Snowflake connection pool from configuration.
func Open(cfg config.SnowflakeConfig, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("snowflake: build dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("snowflake: open: %w", err)
	}

	return &Source{db: db, logger: logger}, nil
}

// QueryRows runs the query and returns every row as a column-name to value
// map, preserving result-set order.
func (s *Source) QueryRows(ctx context.Context, query string) ([]map[string]any, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("snowflake: source not initialised")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("snowflake: query is required")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snowflake: execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("snowflake: read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("snowflake: scan row: %w", err)
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snowflake: iterate rows: %w", err)
	}

	s.logger.Info("fetched records from snowflake", zap.Int("count", len(results)))
	return results, nil
}

// Close releases the connection pool.
func (s *Source) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// issueColumns are the rating columns unpivoted into one row per
// candidate-issue pair.
var issueColumns = []string{
	"ABORTION_REPRODUCTIVE_RIGHTS",
	"DEFENSE_SPENDING",
	"ENVIRONMENT_REGULATIONS_RENEWABLE_ENERGY",
	"GUN_CONTROL",
	"UNIVERSAL_HEALTHCARE",
	"STRONGER_IMMIGRATION_CONTROL",
	"EDUCATION_SPENDING",
	"SOCIAL_MEDIA_REGULATION",
	"RAISING_MINIMUM_WAGE",
	"AFFORDABLE_HOUSING_SPENDING",
	"FAMILY_MEDICAL_LEAVE_BENEFITS",
	"MILITARY_AID_TO_UKRAINE",
	"UNION_SUPPORT",
	"SOCIAL_SECURITY_MEDICARE_EXPANSION",
	"WORKPLACE_SAFETY",
	"LGBTQ_RIGHTS",
	"DEI",
	"ISRAEL",
}

// BuildUnpivotQuery reshapes the wide ratings view (one row per candidate)
// into one row per candidate-issue pair.
func BuildUnpivotQuery(fullyQualifiedView, nameColumn string) string {
	view := strings.TrimSpace(fullyQualifiedView)
	column := strings.TrimSpace(nameColumn)

	var b strings.Builder
	b.WriteString("SELECT\n")
	fmt.Fprintf(&b, "  %s AS POLITICIAN_NAME,\n", column)
	b.WriteString("  ISSUE_COL,\n")
	b.WriteString("  ISSUE_VALUE\n")
	fmt.Fprintf(&b, "FROM %s\n", view)
	b.WriteString("UNPIVOT(ISSUE_VALUE FOR ISSUE_COL IN (\n")
	for i, col := range issueColumns {
		b.WriteString("  ")
		b.WriteString(col)
		if i < len(issueColumns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("))")
	return b.String()
}
