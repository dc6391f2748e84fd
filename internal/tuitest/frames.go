package tuitest

import (
	"regexp"
	"strings"
)

// Frame is the screen contents between two clear-screen sequences.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	// OSC strings, CSI sequences and the shift-in/shift-out bytes.
	escapeSeq = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b\[[0-9;?]*[A-Za-z]|[\x0e\x0f]`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range clearScreen.Split(stream, -1) {
		segment = strings.TrimPrefix(strings.Trim(segment, "\x00"), "\x1b[H")
		plain := tidyLines(stripANSI(segment))
		if plain == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: plain})
	}
	if len(frames) == 0 && stream != "" {
		// Inline programs never clear the screen; treat the run as one frame.
		frames = []Frame{{ANSI: stream, Plain: tidyLines(stripANSI(stream))}}
	}
	return frames
}

// FinalFrame returns the last frame, or false when nothing was drawn.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Plain is the whole run with escape sequences removed. Bubbletea only
// repaints changed lines, so text can be drawn without being in any frame.
func (r *Recording) Plain() string {
	if r == nil {
		return ""
	}
	return stripANSI(strings.ReplaceAll(string(r.Raw), "\r", ""))
}

// Contains reports whether text was drawn at any point during the run.
func (r *Recording) Contains(text string) bool {
	return strings.Contains(r.Plain(), text)
}

func stripANSI(s string) string {
	return escapeSeq.ReplaceAllString(s, "")
}

// tidyLines drops trailing spaces and trailing blank lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
