package db

import (
	"context"
	"testing"

	"github.com/rosamendez/emberglow-backend/pkg/config"
)

func TestNewSqliteInMemory(t *testing.T) {
	cfg := config.DBConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := config.DBConfig{Driver: "oracle", DSN: "whatever"}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{Driver: "sqlite"}, nil); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}
