package tuitest

import (
	"bytes"
	"io"
)

// Lipgloss and bubbletea probe the terminal for cursor position and colours on
// start-up and stall until something answers.
var terminalQueries = []struct {
	query, reply string
}{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b[c", "\x1b[?62;22c"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

const (
	pendingLimit = 256
	pendingKeep  = 64
)

// terminalResponder plays the terminal side of those queries, in the order
// they appear in the output stream.
type terminalResponder struct {
	w        io.Writer
	pending  []byte
	answered int
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, pending: make([]byte, 0, 128)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerNext() {
	}
	// A query may straddle two reads, so keep the tail.
	if len(tr.pending) > pendingLimit {
		tr.pending = append(tr.pending[:0], tr.pending[len(tr.pending)-pendingKeep:]...)
	}
}

// answerNext replies to the earliest complete query and drops everything up
// to its end.
func (tr *terminalResponder) answerNext() bool {
	first, end := -1, 0
	var reply string
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.pending, []byte(q.query))
		if idx < 0 || (first >= 0 && idx >= first) {
			continue
		}
		first, end, reply = idx, idx+len(q.query), q.reply
	}
	if first < 0 {
		return false
	}
	tr.pending = tr.pending[end:]
	tr.answered++
	_, _ = io.WriteString(tr.w, reply)
	return true
}
