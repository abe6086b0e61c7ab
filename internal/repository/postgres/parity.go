package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/adlytica/toolkit/internal/pkg/errors"
)

// requiredColumns is the fixed table/column contract the toolkit writes
// against. A schema missing any of these must block every write command:
// a partially applied migration must never allow partial writes.
var requiredColumns = map[string][]string{
	"campaigns": {
		"id", "tenant_id", "name", "platform", "created_at",
	},
	"campaign_metrics": {
		"id", "tenant_id", "campaign_id", "platform", "date",
		"impressions", "clicks", "conversions", "spend", "revenue",
		"ctr", "cpc", "cvr", "roas", "source_tag",
	},
	"alert_rules": {
		"id", "tenant_id", "name", "condition", "severity", "enabled",
	},
	"triggered_alerts": {
		"id", "tenant_id", "rule_id", "campaign_id", "severity", "reason", "triggered_at",
	},
	"alert_history": {
		"id", "tenant_id", "rule_id", "event", "created_at",
	},
}

var schemaIdentPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParityChecker verifies the resolved target schema carries every column
// the toolkit requires
type ParityChecker struct {
	db     *sql.DB
	schema string
}

// NewParityChecker resolves the target schema from the connection string.
// An invalid schema identifier is rejected up front; the check itself is
// read-only but the identifier still must not reach SQL unvalidated.
func NewParityChecker(db *sql.DB, dsn string) (*ParityChecker, error) {
	schema, err := resolveSchema(dsn)
	if err != nil {
		return nil, err
	}
	return &ParityChecker{db: db, schema: schema}, nil
}

// Schema returns the resolved target schema name
func (p *ParityChecker) Schema() string {
	return p.schema
}

// AssertSchemaParity fails with a single aggregated SCHEMA_PARITY_VIOLATION
// naming every missing table/column pair
func (p *ParityChecker) AssertSchemaParity(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = $1
	`, p.schema)
	if err != nil {
		return errors.SchemaParity("failed to inspect target schema", err)
	}
	defer rows.Close()

	present := make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return errors.SchemaParity("failed to scan schema inspection row", err)
		}
		if present[table] == nil {
			present[table] = make(map[string]bool)
		}
		present[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return errors.SchemaParity("failed to inspect target schema", err)
	}

	var missing []string
	for table, columns := range requiredColumns {
		for _, column := range columns {
			if !present[table][column] {
				missing = append(missing, table+"."+column)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.SchemaParity(fmt.Sprintf(
			"schema %q is missing required columns: %s",
			p.schema, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// resolveSchema extracts the target schema from the DSN's search_path
// option, defaulting to public
func resolveSchema(dsn string) (string, error) {
	schema := "public"

	u, err := url.Parse(dsn)
	if err == nil {
		if sp := u.Query().Get("search_path"); sp != "" {
			// First entry of the search path is the write target
			schema = strings.TrimSpace(strings.Split(sp, ",")[0])
		}
	}

	if !schemaIdentPattern.MatchString(schema) {
		return "", fmt.Errorf("invalid schema identifier %q in connection string", schema)
	}
	return schema, nil
}
