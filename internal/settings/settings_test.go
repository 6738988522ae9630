package settings

import "testing"

func TestMemoryStore_LanguageDefault(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if got := store.Language(); got != DefaultLanguage {
		t.Errorf("expected default language %q, got %q", DefaultLanguage, got)
	}

	if err := store.SetLanguage("pl-PL"); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	if got := store.Language(); got != "pl-PL" {
		t.Errorf("expected stored language, got %q", got)
	}
}

func TestMemoryStore_PrivacyMode(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if store.PrivacyMode() {
		t.Error("privacy mode should default to off")
	}
	if err := store.SetPrivacyMode(true); err != nil {
		t.Fatalf("SetPrivacyMode failed: %v", err)
	}
	if !store.PrivacyMode() {
		t.Error("privacy mode should persist")
	}
}

func TestMemoryStore_Autostart(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if store.AutostartEnabled() {
		t.Error("autostart should default to off")
	}
	if err := store.SetAutostart(true); err != nil {
		t.Fatalf("SetAutostart failed: %v", err)
	}
	if !store.AutostartEnabled() {
		t.Error("autostart should persist")
	}
	if err := store.SetAutostart(false); err != nil {
		t.Fatalf("SetAutostart failed: %v", err)
	}
	if store.AutostartEnabled() {
		t.Error("autostart should be removable")
	}
}
