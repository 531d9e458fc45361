package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfigMissingSecret(t *testing.T) {
	_, err := Config(filepath.Join(t.TempDir(), "client_secret.json"))
	if !errors.Is(err, ErrNoClientSecret) {
		t.Fatalf("err=%v, want ErrNoClientSecret", err)
	}
}

func TestConfigInstalledApp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	secret := `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	cfg, err := Config(path)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.ClientID != "id.apps.googleusercontent.com" {
		t.Fatalf("client id=%q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != SpreadsheetsReadonlyScope {
		t.Fatalf("scopes=%v", cfg.Scopes)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "token.json"))
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("err=%v, want ErrNoToken", err)
	}
}

func TestSaveTokenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "token.json")
	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}

	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if loaded.RefreshToken != "r" {
		t.Fatalf("refresh token=%q", loaded.RefreshToken)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestClientRequiresToken(t *testing.T) {
	cfg := &oauth2.Config{ClientID: "id"}
	if _, err := Client(context.Background(), cfg, filepath.Join(t.TempDir(), "token.json")); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err=%v, want ErrNoToken", err)
	}
}
