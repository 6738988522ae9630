//go:build windows

package settings

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"

	"tracetime/internal/infrastructure/logging"
)

const (
	settingsKeyPath = `SOFTWARE\TraceTime`
	runKeyPath      = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`
	runValueName    = "TraceTime"

	languageValueName = "Language"
	privacyValueName  = "PrivacyMode"
)

// RegistryStore keeps preferences under HKCU\SOFTWARE\TraceTime and the
// autostart entry under the per-user Run key.
type RegistryStore struct {
	logger logging.Logger
}

var _ Store = (*RegistryStore)(nil)

// NewStore returns the registry-backed store.
func NewStore(logger logging.Logger) Store {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &RegistryStore{logger: logger}
}

func (s *RegistryStore) Language() string {
	key, err := registry.OpenKey(registry.CURRENT_USER, settingsKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return DefaultLanguage
	}
	defer key.Close()

	tag, _, err := key.GetStringValue(languageValueName)
	if err != nil || tag == "" {
		return DefaultLanguage
	}
	return tag
}

func (s *RegistryStore) SetLanguage(tag string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, settingsKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open settings key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(languageValueName, tag); err != nil {
		return fmt.Errorf("store language: %w", err)
	}
	return nil
}

func (s *RegistryStore) PrivacyMode() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, settingsKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()

	v, _, err := key.GetIntegerValue(privacyValueName)
	if err != nil {
		return false
	}
	return v != 0
}

func (s *RegistryStore) SetPrivacyMode(enabled bool) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, settingsKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open settings key: %w", err)
	}
	defer key.Close()

	var v uint32
	if enabled {
		v = 1
	}
	if err := key.SetDWordValue(privacyValueName, v); err != nil {
		return fmt.Errorf("store privacy mode: %w", err)
	}
	return nil
}

func (s *RegistryStore) AutostartEnabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()

	_, _, err = key.GetStringValue(runValueName)
	return err == nil
}

func (s *RegistryStore) SetAutostart(enabled bool) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE|registry.QUERY_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()

	if !enabled {
		if err := key.DeleteValue(runValueName); err != nil && err != registry.ErrNotExist {
			return fmt.Errorf("remove autostart entry: %w", err)
		}
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	command := fmt.Sprintf(`"%s" -silent`, exe)
	if err := key.SetStringValue(runValueName, command); err != nil {
		return fmt.Errorf("store autostart entry: %w", err)
	}
	return nil
}
