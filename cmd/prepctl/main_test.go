package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Topics(t *testing.T) {
	dir := setupCorpus(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-corpus", dir, "topics"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}

	var topics []string
	if err := json.Unmarshal(stdout.Bytes(), &topics); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(topics) != 11 {
		t.Errorf("topics = %d, want 11", len(topics))
	}
}

func TestRun_Get(t *testing.T) {
	dir := setupCorpus(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-corpus", dir, "get", "q1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"q1"`) {
		t.Errorf("output = %q, want record q1", stdout.String())
	}
}

func TestRun_Get_NotFound(t *testing.T) {
	dir := setupCorpus(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-corpus", dir, "get", "q99"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 for a missing id", code)
	}
	if !strings.Contains(stderr.String(), "not found") {
		t.Errorf("stderr = %q, want not found message", stderr.String())
	}
}

func TestRun_Questions_UnknownTopic(t *testing.T) {
	dir := setupCorpus(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-corpus", dir, "questions", "jquery"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1 for an unknown topic", code)
	}
}

func TestRun_Sample(t *testing.T) {
	dir := setupCorpus(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-corpus", dir, "sample", "-n", "2", "-topic", "hooks"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}

	var recs []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &recs); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("sampled = %d, want 2", len(recs))
	}
}

func TestRun_Export(t *testing.T) {
	dir := setupCorpus(t)
	out := filepath.Join(t.TempDir(), "corpus.xlsx")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-corpus", dir, "export", "-o", out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Error("export should be a zip archive")
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"unknown command", []string{"frobnicate"}},
		{"get without id", []string{"get"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupCorpus(t)
			args := append([]string{"-corpus", dir}, tt.args...)

			var stdout, stderr bytes.Buffer
			if code := run(args, &stdout, &stderr); code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
		})
	}
}

func TestRun_BadCorpusDir(t *testing.T) {
	dir := t.TempDir()
	bad := "id: q1\ntopic: jquery\nquestion: \"?\"\nanswer: \"!\"\n"
	if err := os.WriteFile(filepath.Join(dir, "q1.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-corpus", dir, "topics"}, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2 for a corpus that fails to load", code)
	}
}

func setupCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	records := []string{
		"id: q1\ntopic: hooks\nquestion: \"What does useState return?\"\nanswer: \"A pair.\"\n",
		"id: q2\ntopic: hooks\nquestion: \"When does useEffect run?\"\nanswer: \"After commit.\"\n",
		"id: q3\ntopic: hooks\nquestion: \"What is a custom hook?\"\nanswer: \"A reusable function.\"\n",
		"id: q4\ntopic: forms\nquestion: \"What is a controlled input?\"\nanswer: \"State-driven.\"\n",
	}
	for i, content := range records {
		name := filepath.Join(dir, "q"+string(rune('1'+i))+".yaml")
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}
