package app

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/getlantern/systray"

	"tracetime/internal/infrastructure/logging"
)

// tooltipRefresh is how often the tray tooltip re-reads today's total.
const tooltipRefresh = 5 * time.Second

// Tray hosts the system tray icon and its menu.
type Tray struct {
	app          *App
	dashboardURL string
	icon         []byte
	logger       logging.Logger
	onExit       func()
}

// NewTray prepares the tray UI. icon may be nil when no .ico asset is
// shipped next to the binary.
func NewTray(a *App, dashboardURL string, icon []byte, logger logging.Logger, onExit func()) *Tray {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Tray{
		app:          a,
		dashboardURL: dashboardURL,
		icon:         icon,
		logger:       logger,
		onExit:       onExit,
	}
}

// Run blocks on the tray event loop until Quit is chosen.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("TraceTime")
	systray.SetTooltip("TraceTime")
	if len(t.icon) > 0 {
		systray.SetIcon(t.icon)
	}

	openItem := systray.AddMenuItem("Open Dashboard", "Open the stats dashboard in a browser")
	privacyItem := systray.AddMenuItemCheckbox("Privacy Mode", "Hide window titles in displays", t.app.settings.PrivacyMode())
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Stop tracking and exit")

	go t.refreshTooltip()

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				if err := OpenBrowser(t.dashboardURL); err != nil {
					t.logger.Warn("Could not open dashboard", "url", t.dashboardURL, "error", err)
				}
			case <-privacyItem.ClickedCh:
				enabled := !t.app.settings.PrivacyMode()
				if err := t.app.settings.SetPrivacyMode(enabled); err != nil {
					t.logger.Warn("Could not store privacy mode", "error", err)
					continue
				}
				if enabled {
					privacyItem.Check()
				} else {
					privacyItem.Uncheck()
				}
			case <-quitItem.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// refreshTooltip keeps today's total visible on hover.
func (t *Tray) refreshTooltip() {
	ticker := time.NewTicker(tooltipRefresh)
	defer ticker.Stop()
	for range ticker.C {
		systray.SetTooltip(fmt.Sprintf("TraceTime - today: %s", t.app.TodayLabel()))
	}
}

// OpenBrowser launches the platform's default browser.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
