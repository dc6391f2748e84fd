package tuitest

import "testing"

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst  \r\n\x1b[1mbold\x1b[0m\n\n\x1b[2J\x1b[Hsecond\x1b]11;?\x07")

	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d: %#v", len(frames), frames)
	}
	if frames[0].Plain != "first\nbold" {
		t.Fatalf("unexpected first frame %q", frames[0].Plain)
	}
	rec := &Recording{Raw: raw, Frames: frames}
	final, ok := rec.FinalFrame()
	if !ok || final.Plain != "second" || final.Index != 1 {
		t.Fatalf("unexpected final frame %#v", final)
	}
	if !rec.Contains("bold") || rec.Contains("\x1b") {
		t.Fatalf("plain output not stripped: %q", rec.Plain())
	}
}

func TestFinalFrameEmpty(t *testing.T) {
	var rec *Recording
	if _, ok := rec.FinalFrame(); ok {
		t.Fatal("nil recording should have no frames")
	}
}

type sink struct{ written []byte }

func (s *sink) Write(p []byte) (int, error) {
	s.written = append(s.written, p...)
	return len(p), nil
}

func TestTerminalResponderAnswersQueries(t *testing.T) {
	out := &sink{}
	responder := newTerminalResponder(out)
	responder.Process([]byte("hello\x1b[6"))
	responder.Process([]byte("nworld\x1b]11;?\x07"))

	want := "\x1b[1;1R\x1b]11;rgb:0000/0000/0000\x07"
	if string(out.written) != want {
		t.Fatalf("unexpected responses %q", out.written)
	}
	if responder.answered != 2 {
		t.Fatalf("expected 2 answers, got %d", responder.answered)
	}
}

func TestTerminalResponderKeepsStreamOrder(t *testing.T) {
	out := &sink{}
	responder := newTerminalResponder(out)
	responder.Process([]byte("\x1b]11;?\x1b\\draw\x1b[c\x1b[6n"))

	want := "\x1b]11;rgb:0000/0000/0000\x1b\\\x1b[?62;22c\x1b[1;1R"
	if string(out.written) != want {
		t.Fatalf("unexpected responses %q", out.written)
	}
}
