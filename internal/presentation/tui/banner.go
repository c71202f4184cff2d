package tui

import (
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                   _",
	" _ __   __ _ _ __| | ___ _   _",
	"| '_ \\ / _` | '__| |/ _ \\ | | |",
	"| |_) | (_| | |  | |  __/ |_| |",
	"| .__/ \\__,_|_|  |_|\\___|\\__, |",
	"|_|                      |___/",
}

// Indigo to rose, one stop per line.
var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// Banner returns the ASCII art banner followed by subtitle, colored for
// the terminal's profile. The colors degrade to plain text without one.
func Banner(subtitle string) string {
	return BannerWithProfile(termenv.ColorProfile(), subtitle)
}

// BannerWithProfile is Banner with an explicit color profile.
func BannerWithProfile(p termenv.Profile, subtitle string) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, line := range bannerLines {
		b.WriteString(p.String(line).Foreground(p.Color(bannerColors[i])).String())
		b.WriteString("\n")
	}
	if subtitle != "" {
		b.WriteString("\n")
		b.WriteString(p.String(subtitle).Faint().String())
		b.WriteString("\n")
	}
	return b.String()
}
