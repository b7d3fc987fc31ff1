package gconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadKeepsValidValues(t *testing.T) {
	path := writeTempConfig(t, `{"theme":"dark","orientation":"flipped","size":800,"candidates":5,"log_level":"debug"}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Theme != "dark" || c.Orientation != "flipped" || c.Size != 800 || c.Candidates != 5 || c.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", c)
	}
	if !c.Coordinates {
		t.Error("Coordinates should keep its default when absent from the file")
	}
}

func TestLoadCorrectsInvalidValues(t *testing.T) {
	path := writeTempConfig(t, `{"theme":"neon","orientation":"sideways","size":3,"candidates":-1,"log_level":"loud"}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if *c != def {
		t.Fatalf("Load = %+v, want defaults %+v", *c, def)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	var invalid *InvalidConfig
	if !errors.As(err, &invalid) {
		t.Fatalf("missing file error = %v, want *InvalidConfig", err)
	}

	if _, err := Load(writeTempConfig(t, `{"theme":`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	c := DefaultConfig()
	c.Theme = "dark"
	if err := c.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *back != c {
		t.Fatalf("Load = %+v, want %+v", *back, c)
	}
}
