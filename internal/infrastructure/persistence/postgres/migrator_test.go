package postgres

import "testing"

func TestParseMigrationFilename(t *testing.T) {
	id, name, err := parseMigrationFilename("001_create_market_data.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 || name != "create market data" {
		t.Fatalf("got id=%d name=%q", id, name)
	}

	if _, _, err := parseMigrationFilename("nounderscore.sql"); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, _, err := parseMigrationFilename("abc_name.sql"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestCalculateChecksumStable(t *testing.T) {
	a := calculateChecksum("CREATE TABLE t (id INT);")
	b := calculateChecksum("CREATE TABLE t (id INT);")
	if a != b {
		t.Fatalf("checksum must be deterministic")
	}
	if a == calculateChecksum("CREATE TABLE t2 (id INT);") {
		t.Fatalf("different content must give different checksums")
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex length 64, got %d", len(a))
	}
}
