package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectType_TxtExtension(t *testing.T) {
	result := detectType([]byte("anything"), "explain.txt")
	if result != "text" {
		t.Errorf("got %q, want text", result)
	}
}

func TestDetectType_PlanExtension(t *testing.T) {
	result := detectType([]byte("anything"), "out.plan")
	if result != "text" {
		t.Errorf("got %q, want text", result)
	}
}

func TestDetectType_SQLExtension(t *testing.T) {
	result := detectType([]byte("anything"), "query.sql")
	if result != "sql" {
		t.Errorf("got %q, want sql", result)
	}
}

func TestDetectType_JSONExtension(t *testing.T) {
	result := detectType([]byte("anything"), "plan.json")
	if result != "json" {
		t.Errorf("got %q, want json", result)
	}
}

func TestDetectType_PlanTextContent(t *testing.T) {
	data := []byte("Seq Scan on users  (cost=0.00..20.00 rows=100 width=8) (actual time=0.01..0.10 rows=100 loops=1)")
	result := detectType(data, "")
	if result != "text" {
		t.Errorf("got %q, want text", result)
	}
}

func TestDetectType_JSONContent(t *testing.T) {
	data := []byte(`  [{"Plan": {"Node Type": "Seq Scan"}}]`)
	result := detectType(data, "-")
	if result != "json" {
		t.Errorf("got %q, want json", result)
	}
}

func TestDetectType_SQLContent(t *testing.T) {
	for _, q := range []string{
		"SELECT * FROM users WHERE id = 1",
		"with t as (select 1) select * from t",
		"UPDATE users SET active = false",
	} {
		if result := detectType([]byte(q), ""); result != "sql" {
			t.Errorf("detectType(%q) = %q, want sql", q, result)
		}
	}
}

func TestDetectType_ExtensionOverridesContent(t *testing.T) {
	data := []byte("SELECT 1")
	result := detectType(data, "saved.plan")
	if result != "text" {
		t.Errorf("got %q, want text (extension takes priority)", result)
	}
}

func TestDetectType_Unknown(t *testing.T) {
	result := detectType([]byte("some random prose"), "")
	if result != "unknown" {
		t.Errorf("got %q, want unknown", result)
	}
}

func TestReadInput_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.txt")
	content := []byte("Seq Scan on users  (cost=0.00..20.00 rows=100 width=8)")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := readInput(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("content mismatch")
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, err := readInput("/nonexistent/file.txt", "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_TextFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "explain.txt")
	content := "Seq Scan on users  (cost=0.00..20.00 rows=100 width=8)\r\n  Filter: (active)\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	text, err := Resolve(path, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(text, "\r") {
		t.Error("line endings not normalized")
	}
	if !strings.Contains(text, "Seq Scan on users") {
		t.Errorf("plan content lost: %q", text)
	}
}

func TestResolve_SQLFileWithoutDB(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "query.sql")
	if err := os.WriteFile(path, []byte("SELECT 1"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "", "")
	if err == nil {
		t.Fatal("expected error for SQL input without DB connection")
	}
}

func TestResolve_RejectsExplainPrefix(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "query.sql")
	if err := os.WriteFile(path, []byte("EXPLAIN ANALYZE SELECT 1"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "postgres://localhost/db", "")
	if err == nil || !strings.Contains(err.Error(), "EXPLAIN prefix") {
		t.Fatalf("expected EXPLAIN prefix rejection, got %v", err)
	}
}

func TestResolve_JSONRejectedWithGuidance(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "plan.json")
	if err := os.WriteFile(path, []byte(`[{"Plan": {}}]`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "", "")
	if err == nil || !strings.Contains(err.Error(), "text format") {
		t.Fatalf("expected guidance toward text format, got %v", err)
	}
}

func TestResolve_UnknownInput(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes")
	if err := os.WriteFile(path, []byte("some random prose"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "", "")
	if err == nil {
		t.Fatal("expected error for undetectable input")
	}
}

func TestSanitize(t *testing.T) {
	in := "  <b>Seq Scan</b> on users\r\n  Filter: (active)\r\n\r\n"
	got := Sanitize(in)
	if strings.Contains(got, "<b>") || strings.Contains(got, "</b>") {
		t.Errorf("tags not stripped: %q", got)
	}
	if strings.Contains(got, "\r") {
		t.Errorf("CRLF not normalized: %q", got)
	}
	if got != "Seq Scan on users\n  Filter: (active)" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_CapsLength(t *testing.T) {
	in := strings.Repeat("a", MaxPlanBytes+500)
	got := Sanitize(in)
	if len(got) > MaxPlanBytes {
		t.Errorf("length not capped: %d", len(got))
	}
}
