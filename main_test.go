package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livebait-directory/config"
	"livebait-directory/importer"
	"livebait-directory/testhelpers"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp() *app {
	log, _ := testhelpers.NewTestLogger()
	return &app{cfg: &config.Config{Delimiter: ","}, log: log}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), 1},
		{"coded", withCode(exitDB, errors.New("db down")), exitDB},
		{"wrapped", errors.Wrap(withCode(exitInput, errors.New("missing")), "import"), exitInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
	if withCode(exitDB, nil) != nil {
		t.Error("withCode(nil) should stay nil")
	}
}

func TestRunImportMissingInput(t *testing.T) {
	a := newTestApp()
	path := filepath.Join(t.TempDir(), "absent.csv")

	err := a.runImport(context.Background(), importOptions{file: path, delimiter: ","})
	if exitCode(err) != exitInput {
		t.Fatalf("expected exit code %d, got %d (%v)", exitInput, exitCode(err), err)
	}
	if !errors.Is(err, importer.ErrInputMissing) {
		t.Errorf("expected ErrInputMissing, got %v", err)
	}
}

func TestRunImportRejectsDelimiter(t *testing.T) {
	a := newTestApp()

	err := a.runImport(context.Background(), importOptions{file: "x.csv", delimiter: "||"})
	if exitCode(err) != exitConfig {
		t.Errorf("expected exit code %d, got %d", exitConfig, exitCode(err))
	}
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := newHashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("correct-horse\n"))
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")); err != nil {
		t.Errorf("printed hash does not match password: %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := hashPassword("short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestRunImportUnknownHeader(t *testing.T) {
	a := newTestApp()
	path := filepath.Join(t.TempDir(), "shops.csv")
	if err := os.WriteFile(path, []byte("business_name;city\nBob;Portland\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := a.runImport(context.Background(), importOptions{file: path, delimiter: ","})
	if exitCode(err) != exitInput {
		t.Fatalf("expected exit code %d, got %d (%v)", exitInput, exitCode(err), err)
	}
	if !errors.Is(err, importer.ErrUnknownHeader) {
		t.Errorf("expected ErrUnknownHeader, got %v", err)
	}
}
