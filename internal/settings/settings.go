// Package settings persists user preferences and the autostart
// registration. On Windows both live in the registry; other platforms get
// an in-memory store so the rest of the application stays portable.
package settings

// DefaultLanguage is used when no preference has been stored yet.
const DefaultLanguage = "en-US"

// Store reads and writes user preferences. Reads fall back to defaults
// when no value has been stored; writes report errors so callers can log
// them, but the application keeps running on stale values.
type Store interface {
	// Language returns the stored UI language tag, or DefaultLanguage.
	Language() string
	SetLanguage(tag string) error

	// PrivacyMode reports whether window titles should be hidden from
	// display surfaces. Stored rows still keep full titles.
	PrivacyMode() bool
	SetPrivacyMode(enabled bool) error

	// AutostartEnabled reports whether the login-launch entry is present.
	AutostartEnabled() bool
	// SetAutostart registers or removes launching at login with the
	// silent flag.
	SetAutostart(enabled bool) error
}
