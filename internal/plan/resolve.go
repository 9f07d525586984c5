package plan

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Resolve turns a CLI input reference (file path, "-" for stdin, or empty
// for interactive paste) into sanitized plan text ready for the engine.
// SQL input requires a database connection and is executed with
// EXPLAIN (ANALYZE, BUFFERS) to obtain the plan text.
func Resolve(input string, dbConn string, label string) (string, error) {
	data, err := readInput(input, label)
	if err != nil {
		return "", err
	}

	switch detectType(data, input) {
	case "text":
		return Sanitize(string(data)), nil
	case "sql":
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(strings.ToUpper(trimmed), "EXPLAIN") {
			return "", fmt.Errorf("input should not include EXPLAIN prefix - provide the raw query only")
		}
		if dbConn == "" {
			return "", fmt.Errorf("SQL input requires a database connection")
		}
		text, err := Execute(dbConn, trimmed)
		if err != nil {
			return "", err
		}
		return Sanitize(text), nil
	case "json":
		return "", fmt.Errorf(`JSON format not supported - use text format:

EXPLAIN (ANALYZE, BUFFERS) <your query>

Then provide the complete text output.`)
	default:
		return "", fmt.Errorf("unable to detect %sinput type: expected EXPLAIN ANALYZE text, SQL query, or .txt/.sql file", label)
	}
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sEXPLAIN (ANALYZE, BUFFERS) output or SQL query", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	return io.ReadAll(os.Stdin)
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".txt") || strings.HasSuffix(filename, ".plan") {
		return "text"
	}
	if strings.HasSuffix(filename, ".sql") {
		return "sql"
	}
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if strings.Contains(trimmed, "(cost=") || strings.Contains(trimmed, "actual time=") {
		return "text"
	}

	for _, keyword := range []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "EXPLAIN"} {
		if strings.HasPrefix(strings.ToUpper(trimmed), keyword) {
			return "sql"
		}
	}

	return "unknown"
}
