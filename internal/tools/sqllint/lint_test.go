package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQueriesCarryUniqueMarkers(t *testing.T) {
	l := newLinter()
	for _, dir := range []string{"../../sqlinline", "../../adapter/repo"} {
		if err := l.walk(dir); err != nil {
			t.Fatalf("walk %s: %v", dir, err)
		}
	}
	for _, v := range l.violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
	if l.statements == 0 {
		t.Fatal("expected to find SQL statements")
	}
}

func TestLintFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QGood = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n\n" +
		"const QDup = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;`\n\n" +
		"const QBare = `select 3;`\n\n" +
		"const notSQL = `select ignored`\n"
	path := filepath.Join(dir, "q.go")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	l := newLinter()
	if err := l.walk(dir); err != nil {
		t.Fatal(err)
	}
	if l.statements != 3 {
		t.Fatalf("statements = %d, want 3", l.statements)
	}
	if len(l.violations) != 2 {
		t.Fatalf("violations = %+v, want 2", l.violations)
	}
	if l.violations[0].name != "QDup" || !strings.Contains(l.violations[0].message, "QGood") {
		t.Fatalf("unexpected duplicate report: %+v", l.violations[0])
	}
	if l.violations[1].name != "QBare" {
		t.Fatalf("unexpected missing report: %+v", l.violations[1])
	}
}
