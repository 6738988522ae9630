// Package platform reads the desktop state the tracker samples: the
// focused window, input idle time, and audio output.
package platform

// WindowInfo describes the foreground window at sample time.
type WindowInfo struct {
	AppName string
	Title   string
	ExePath string
}

// Probe is the per-tick view of the desktop. Implementations degrade to
// zero values on failure so a flaky probe never stops the sampling loop.
type Probe interface {
	// ActiveWindow returns the focused window, or ok=false when nothing
	// has focus.
	ActiveWindow() (*WindowInfo, bool)

	// IdleSeconds returns the seconds since the last keyboard or mouse
	// input.
	IdleSeconds() float64

	// AudioPeaking reports whether the default output device is emitting
	// audible sound right now.
	AudioPeaking() bool

	// AudioSessionApp returns the process name owning an active audio
	// session, or ok=false when none is found.
	AudioSessionApp() (string, bool)

	// BackgroundMediaTitle scans the windows owned by the audio app's
	// processes for a label to attach to its playback, preferring known
	// media platform titles and never reusing the focused window's title.
	BackgroundMediaTitle(audioApp, activeTitle string) (string, bool)

	// AppIcon returns the executable's icon as a PNG data URL, or ""
	// when extraction fails. Results are cached per path.
	AppIcon(exePath string) string
}
