package platform

import "strings"

// mediaPlatforms are matched case-insensitively against window titles when
// labelling background playback.
var mediaPlatforms = []string{
	"youtube",
	"twitch",
	"netflix",
	"prime video",
	"hbo",
	"disney",
	"spotify",
	"kick",
}

// mediaTitlePicker selects a label for background playback from the
// candidate window titles of the audio-owning process. Known streaming
// platforms win over plain titles, a "kick" match ends the scan, and the
// focused window's title is never reused.
type mediaTitlePicker struct {
	activeTitle string
	found       string
}

// consider inspects one candidate title and reports whether the scan
// should continue.
func (p *mediaTitlePicker) consider(title string) bool {
	if title == "" || title == p.activeTitle {
		return true
	}

	lower := strings.ToLower(title)
	for _, platform := range mediaPlatforms {
		if strings.Contains(lower, platform) {
			p.found = title
			if platform == "kick" {
				return false
			}
		}
	}
	// A plain title only stands in while no platform title has been seen.
	if p.found == "" {
		p.found = title
	}
	return true
}
