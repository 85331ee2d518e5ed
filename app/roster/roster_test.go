package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultRoster(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path should use built-in roster, got error: %v", err)
	}

	if r.Size() != 17 {
		t.Errorf("Expected 17 accounts in default roster, got %d", r.Size())
	}

	accounts := r.Accounts()
	if accounts[0].Handle != "BambroughKevin" {
		t.Errorf("Expected first account 'BambroughKevin', got '%s'", accounts[0].Handle)
	}
}

func TestIsGuaranteedFresh_CaseInsensitive(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, handle := range []string{"zerohedge", "ZeroHedge", "KobeissiLetter", "kobeissiletter", "TheEconomist"} {
		if !r.IsGuaranteedFresh(handle) {
			t.Errorf("Expected '%s' to be guaranteed-fresh", handle)
		}
	}

	for _, handle := range []string{"nntaleb", "WatcherGuru", "unknown"} {
		if r.IsGuaranteedFresh(handle) {
			t.Errorf("Expected '%s' not to be guaranteed-fresh", handle)
		}
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yml")

	content := `accounts:
  - handle: alpha
    guaranteed_fresh: true
  - handle: beta
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write roster file: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r.Size() != 2 {
		t.Errorf("Expected 2 accounts, got %d", r.Size())
	}
	if !r.IsGuaranteedFresh("Alpha") {
		t.Error("Expected 'alpha' to be guaranteed-fresh")
	}
	if r.IsGuaranteedFresh("beta") {
		t.Error("Expected 'beta' not to be guaranteed-fresh")
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]Account{{Handle: "alpha"}, {Handle: "Alpha"}})
	if err == nil {
		t.Error("Expected error for case-insensitive duplicate handles")
	}
}

func TestNew_RejectsEmptyHandle(t *testing.T) {
	_, err := New([]Account{{Handle: "  "}})
	if err == nil {
		t.Error("Expected error for empty handle")
	}
}

func TestNew_RejectsEmptyRoster(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Error("Expected error for empty roster")
	}
}
