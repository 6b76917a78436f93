package config

import "testing"

func TestAdminAllows(t *testing.T) {
	cfg := AdminConfig{AllowedIPs: []string{"203.0.113.7", " 10.0.0.1 "}}

	if !cfg.Allows("203.0.113.7") {
		t.Fatal("expected allow-listed ip to pass")
	}
	if !cfg.Allows("10.0.0.1") {
		t.Fatal("expected trimmed allow-list entry to pass")
	}
	if cfg.Allows("203.0.113.8") {
		t.Fatal("expected unknown ip to be rejected")
	}
	if cfg.Allows("not-an-ip") {
		t.Fatal("expected malformed ip to be rejected")
	}
}

func TestAdminValidateRejectsBadEntries(t *testing.T) {
	cfg := AdminConfig{AllowedIPs: []string{"garbage"}}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected validation error for malformed allow-list entry")
	}
}

func TestAppEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatalf("expected dev env, got dev=%v prod=%v", app.IsDev(), app.IsProd())
	}
}

func TestSquareEnvironmentDefaults(t *testing.T) {
	if env := (SquareConfig{}).Environment(); env != "sandbox" {
		t.Fatalf("expected sandbox default, got %s", env)
	}
	if env := (SquareConfig{Env: " Production "}).Environment(); env != "production" {
		t.Fatalf("expected normalized production, got %s", env)
	}
}
