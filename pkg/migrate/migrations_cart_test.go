package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestCartLinesMigrationShape(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	var found string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_create_cart_lines.sql") {
			found = e.Name()
		}
	}
	if found == "" {
		t.Fatal("cart_lines migration missing")
	}

	raw, err := os.ReadFile(filepath.Join("migrations", found))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(raw)

	for _, want := range []string{
		"CREATE TABLE cart_lines",
		"cart_lines_user_product_key UNIQUE (user_id, product_id)",
		"CHECK (quantity >= 1)",
		"DROP TABLE cart_lines",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}
