package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress("  " + adminHex + "  "); err != nil {
		t.Fatalf("valid address rejected: %v", err)
	}
	for _, input := range []string{"", "0x1234", "not-an-address"} {
		if _, err := ParseAddress(input); err == nil {
			t.Fatalf("accepted invalid address %q", input)
		}
	}
}

func TestLoadGenesisRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	body := `{"accounts":[
		{"address":"` + adminHex + `","token_balance":100,"currency_balance":100},
		{"address":"` + adminHex + `","token_balance":50,"currency_balance":50}
	]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write genesis: %v", err)
	}

	_, err := LoadGenesis(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate address") {
		t.Fatalf("expected duplicate address error, got %v", err)
	}
}
