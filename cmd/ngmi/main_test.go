package main

import (
	"bytes"
	"encoding/json"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "dev")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("LOCAL_STORE_DIR", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestJobsListPrintsSeededPostings(t *testing.T) {
	out, err := runCLI(t, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v\n%s", err, out)
	}
	var jobs []map[string]any
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(jobs) != 5 || jobs[0]["company"] != "TechCorp" {
		t.Fatalf("unexpected jobs %v", jobs)
	}
}

func TestApplyRequiresFlags(t *testing.T) {
	if _, err := runCLI(t, "apply", "--user", "1"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestUploadReportsValidationFailure(t *testing.T) {
	out, err := runCLI(t, "upload", "--user", "1", "--file", "/nonexistent/cv.pdf")
	if err == nil {
		t.Fatalf("expected error, got output %s", out)
	}
}
