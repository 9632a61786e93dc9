package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaultsToPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreBackend != BackendPostgres {
		t.Fatalf("StoreBackend mismatch: got %q want %q", cfg.StoreBackend, BackendPostgres)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.DefaultBranchID != 10001 {
		t.Fatalf("DefaultBranchID mismatch: got %d", cfg.DefaultBranchID)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns mismatch: got %d", cfg.DBMaxConns)
	}
}

func TestLoadConfigRejectsEmptyPool(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_MAX_CONNS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for DB_MAX_CONNS=0")
	}
}

func TestLoadConfigRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigDocstoreNeedsNoDatabaseURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", " DocStore ")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DOCSTORE_PATH", "/tmp/bank.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreBackend != BackendDocstore {
		t.Fatalf("StoreBackend mismatch: got %q want %q", cfg.StoreBackend, BackendDocstore)
	}
	if cfg.DocstorePath != "/tmp/bank.db" {
		t.Fatalf("DocstorePath mismatch: got %q", cfg.DocstorePath)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firestore")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoadConfigParsesSecondsAndLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "7")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "90s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HTTPReadTimeout != 7*time.Second {
		t.Fatalf("HTTPReadTimeout mismatch: got %s", cfg.HTTPReadTimeout)
	}
	if cfg.HTTPWriteTimeout != 90*time.Second {
		t.Fatalf("HTTPWriteTimeout mismatch: got %s", cfg.HTTPWriteTimeout)
	}
	if cfg.HTTPIdleTimeout != 60*time.Second {
		t.Fatalf("HTTPIdleTimeout mismatch: got %s", cfg.HTTPIdleTimeout)
	}
	expected := []string{"kafka-1:9092", "kafka-2:9092"}
	if len(cfg.KafkaBrokers) != len(expected) {
		t.Fatalf("KafkaBrokers mismatch: got %#v want %#v", cfg.KafkaBrokers, expected)
	}
	for i, broker := range expected {
		if cfg.KafkaBrokers[i] != broker {
			t.Fatalf("KafkaBrokers[%d] = %q, want %q", i, cfg.KafkaBrokers[i], broker)
		}
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("CORSAllowedOrigins should be empty, got %#v", cfg.CORSAllowedOrigins)
	}
}
