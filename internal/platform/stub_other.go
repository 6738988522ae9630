//go:build !windows

package platform

// noSignalProbe reports no window, no input, and no audio. It keeps the
// tracker buildable on Linux and macOS until native probes exist.
//
// TODO: Linux could use X11 XGetInputFocus / _NET_WM_NAME and PulseAudio
// sink-input peaks for a real probe.
type noSignalProbe struct{}

var _ Probe = (*noSignalProbe)(nil)

// NewProbe returns the stub probe on platforms without a native
// implementation.
func NewProbe() Probe {
	return &noSignalProbe{}
}

func (p *noSignalProbe) ActiveWindow() (*WindowInfo, bool)                  { return nil, false }
func (p *noSignalProbe) IdleSeconds() float64                               { return 0 }
func (p *noSignalProbe) AudioPeaking() bool                                 { return false }
func (p *noSignalProbe) AudioSessionApp() (string, bool)                    { return "", false }
func (p *noSignalProbe) BackgroundMediaTitle(string, string) (string, bool) { return "", false }
func (p *noSignalProbe) AppIcon(string) string                              { return "" }

// InitCOM is a no-op outside Windows.
func InitCOM() error { return nil }

// ReleaseCOM is a no-op outside Windows.
func ReleaseCOM() {}
