package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeExtension installs a shell script extension named cbook-<name> in a
// fresh PATH directory.
func writeExtension(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script extensions need a unix shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "cbook-"+name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunExtension(t *testing.T) {
	writeExtension(t, "hello", `echo "$1 $CHECKBOOK_DB $CHECKBOOK_VERBOSE" > "$2"`+"\n")
	out := filepath.Join(t.TempDir(), "out.txt")

	oldDB, oldVerbose := *dbPath, *Verbose
	*dbPath, *Verbose = "/tmp/random.db", true
	defer func() { *dbPath, *Verbose = oldDB, oldVerbose }()

	found, code := RunExtension("hello", []string{"world", out})
	if !found || code != 0 {
		t.Fatalf("RunExtension() = %v, %d, want true, 0", found, code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("extension did not run: %v", err)
	}
	if want := "world /tmp/random.db true"; strings.TrimSpace(string(got)) != want {
		t.Errorf("extension saw %q, want %q", got, want)
	}
}

func TestRunExtension_ExitCode(t *testing.T) {
	writeExtension(t, "fail", "exit 3\n")
	if found, code := RunExtension("fail", nil); !found || code != 3 {
		t.Errorf("RunExtension() = %v, %d, want true, 3", found, code)
	}
}

func TestRunExtension_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, code := RunExtension("nope", nil); found || code != 0 {
		t.Errorf("RunExtension() = %v, %d, want false, 0", found, code)
	}
}
