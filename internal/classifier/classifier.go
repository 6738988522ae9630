package classifier

import (
	"fmt"
	"strings"

	"tracetime/internal/titles"
)

const (
	// Idle gating: after idleThreshold seconds without input and no audio,
	// graceTicks more silent ticks are still attributed before suspension.
	idleThresholdSeconds = 300.0
	graceTicks           = 15

	// Foreground windows owned by the shell never claim the primary slot.
	shellProcess = "explorer"
)

// Snapshot is one tick's worth of probe output.
type Snapshot struct {
	WindowValid bool
	AppName     string
	RawTitle    string

	AudioPlaying bool
	AudioApp     string
	AudioTitle   string // background window title, "" when unknown

	IdleSeconds float64
}

// Attribution credits one second to an (app, title) pair.
type Attribution struct {
	AppName      string
	Title        string
	IsPrimary    bool
	IsBackground bool
}

// State labels for the live display.
const (
	StateActive    = "active"
	StateAudioOnly = "audio"
	StateIdle      = "idle"
	StateNone      = "none"
)

// Display is what the UI shows as the current activity. It can differ from
// the attributions: when the shell is focused and audio plays, the audio
// app is displayed even though attribution already handled it.
type Display struct {
	AppName string
	Title   string
	State   string
}

// Result is the outcome of a single tick.
type Result struct {
	Attributions []Attribution
	Display      Display
}

// Classifier turns per-second probe snapshots into activity attributions.
// It carries the consecutive-silence counter across ticks, so a single
// instance must drive all ticks in order.
type Classifier struct {
	silence int
}

func New() *Classifier {
	return &Classifier{}
}

// SilentTicks returns the current consecutive-silence count.
func (c *Classifier) SilentTicks() int {
	return c.silence
}

// Tick classifies one probe snapshot. It returns zero, one, or two
// attributions; at most one of them is primary.
func (c *Classifier) Tick(s Snapshot) Result {
	audioApp := ""
	audioTitle := ""
	if s.AudioPlaying && s.AudioApp != "" {
		audioApp = s.AudioApp
		audioTitle = s.AudioTitle
		if audioTitle == "" {
			audioTitle = fmt.Sprintf("%s (audio)", audioApp)
		}
	}

	// No foreground window: background audio alone may claim the tick.
	if !s.WindowValid {
		if audioApp != "" {
			return Result{
				Attributions: []Attribution{{
					AppName:      audioApp,
					Title:        audioTitle,
					IsPrimary:    true,
					IsBackground: true,
				}},
				Display: Display{AppName: audioApp, Title: audioTitle, State: StateAudioOnly},
			}
		}
		return Result{Display: Display{State: StateNone}}
	}

	currentApp := s.AppName
	currentTitle := titles.FormatTwitterTitle(titles.Clean(s.RawTitle))
	isShell := strings.Contains(strings.ToLower(currentApp), shellProcess)

	if s.IdleSeconds > idleThresholdSeconds && !s.AudioPlaying {
		c.silence++
		if c.silence > graceTicks {
			return Result{Display: Display{State: StateIdle}}
		}
	} else {
		c.silence = 0
	}

	var attrs []Attribution
	primaryTaken := false

	if !isShell {
		attrs = append(attrs, Attribution{
			AppName:   currentApp,
			Title:     currentTitle,
			IsPrimary: true,
		})
		primaryTaken = true
	}

	if audioApp != "" && !strings.EqualFold(audioApp, currentApp) {
		attrs = append(attrs, Attribution{
			AppName:      audioApp,
			Title:        audioTitle,
			IsPrimary:    !primaryTaken,
			IsBackground: true,
		})
	}

	display := Display{AppName: currentApp, Title: currentTitle, State: StateActive}
	if isShell && audioApp != "" {
		display = Display{AppName: audioApp, Title: audioTitle, State: StateActive}
	}

	return Result{Attributions: attrs, Display: display}
}
