package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Execute runs EXPLAIN (ANALYZE, BUFFERS) for the given query inside a
// rolled-back transaction and returns the text-format plan.
func Execute(dbConn string, sql string) (string, error) {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dbConn)
	if err != nil {
		return "", fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := "EXPLAIN (ANALYZE, BUFFERS) " + sql

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("executing EXPLAIN: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", fmt.Errorf("reading EXPLAIN output: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading EXPLAIN output: %w", err)
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("EXPLAIN returned no output")
	}

	return strings.Join(lines, "\n"), nil
}
