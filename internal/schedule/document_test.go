package schedule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "light_schedule.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_FullDocument(t *testing.T) {
	path := writeDoc(t, `{
		"check_interval": 30,
		"threshold": 110,
		"hysteresis": 20,
		"gallery_on": "18:00",
		"gallery_off": "23:00",
		"main_off": "20:00"
	}`)

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if got := doc.CheckInterval(); got != 30*time.Second {
		t.Errorf("CheckInterval = %v, want 30s", got)
	}
	if got := doc.Threshold(); got != 110 {
		t.Errorf("Threshold = %v, want 110", got)
	}
	if got := doc.Hysteresis(); got != 20 {
		t.Errorf("Hysteresis = %v, want 20", got)
	}

	on, off, ok := doc.Window("gallery")
	if !ok || on != "18:00" || off != "23:00" {
		t.Errorf("Window(gallery) = %q, %q, %v", on, off, ok)
	}

	cutoff, ok := doc.CutoffTime("main")
	if !ok || cutoff != "20:00" {
		t.Errorf("CutoffTime(main) = %q, %v", cutoff, ok)
	}
}

func TestRead_MissingFile(t *testing.T) {
	doc, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	// Document must still be usable on defaults.
	if got := doc.CheckInterval(); got != DefaultCheckInterval {
		t.Errorf("CheckInterval = %v, want default", got)
	}
	if got := doc.Threshold(); got != DefaultThreshold {
		t.Errorf("Threshold = %v, want default", got)
	}
}

func TestRead_Malformed(t *testing.T) {
	doc, err := Read(writeDoc(t, `{not json`))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, _, ok := doc.Window("gallery"); ok {
		t.Error("empty document should have no windows")
	}
}

func TestWindow_RequiresBothKeys(t *testing.T) {
	doc, err := Read(writeDoc(t, `{"aux_on": "17:00"}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := doc.Window("aux"); ok {
		t.Error("Window should require both on and off keys")
	}
}

func TestDocument_WrongValueTypes(t *testing.T) {
	doc, err := Read(writeDoc(t, `{"threshold": "dark", "check_interval": -5, "gallery_on": 18, "gallery_off": "23:00"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Threshold(); got != DefaultThreshold {
		t.Errorf("non-numeric threshold should fall back to default, got %v", got)
	}
	if got := doc.CheckInterval(); got != DefaultCheckInterval {
		t.Errorf("non-positive interval should fall back to default, got %v", got)
	}
	if _, _, ok := doc.Window("gallery"); ok {
		t.Error("non-string schedule value should behave as absent")
	}
}

func TestFromMap_Nil(t *testing.T) {
	doc := FromMap(nil)
	if got := doc.Hysteresis(); got != DefaultHysteresis {
		t.Errorf("Hysteresis = %v, want default", got)
	}
}
