package clinicdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/config"
)

// Service is a read-only handle on the GELITE mirror. The assistant only
// ever reads from it; writes go through the practice management system.
type Service struct {
	db *sql.DB
}

// Result holds one query's output with every value already rendered as text.
type Result struct {
	Columns []string
	Rows    [][]string
}

func NewService() *Service {
	path := config.GetClinicDBPath()
	if path == "" {
		log.Warn().Msg("Clinic database not configured - admin data queries will be unavailable")
		return nil
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open clinic database")
		return nil
	}

	if err := db.Ping(); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to reach clinic database")
		return nil
	}

	log.Info().Str("path", path).Msg("Clinic database opened read-only")
	return &Service{db: db}
}

// Query runs a single SELECT statement and renders every value as text.
// Anything that is not a lone SELECT (or WITH ... SELECT) is refused before
// it reaches the database.
func (s *Service) Query(ctx context.Context, query string) (*Result, error) {
	stmt, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = renderValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// validateQuery normalises and checks a statement, returning the trimmed
// form to execute.
func validateQuery(query string) (string, error) {
	stmt := strings.TrimSpace(query)
	stmt = strings.TrimSuffix(stmt, ";")
	if stmt == "" {
		return "", fmt.Errorf("empty query")
	}
	if strings.Contains(stmt, ";") {
		return "", fmt.Errorf("multiple statements are not allowed")
	}

	upper := strings.ToUpper(stmt)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", fmt.Errorf("only SELECT statements are allowed")
	}
	return stmt, nil
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04")
	default:
		return fmt.Sprintf("%v", val)
	}
}
