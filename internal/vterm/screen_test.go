package vterm

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestScreen_WriteAndString(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	s.Write([]byte("hello world"))
	got := s.String()
	if !strings.Contains(got, "hello world") {
		t.Errorf("String() = %q, want to contain 'hello world'", got)
	}
}

func TestScreen_VersionIncrements(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	v0 := s.Version()
	s.Write([]byte("first"))
	v1 := s.Version()
	s.Write([]byte("second"))
	v2 := s.Version()

	if v1 <= v0 {
		t.Errorf("version should increase after first write: v0=%d, v1=%d", v0, v1)
	}
	if v2 <= v1 {
		t.Errorf("version should increase after second write: v1=%d, v2=%d", v1, v2)
	}
}

func TestScreen_Resize(t *testing.T) {
	s := New(40, 10)
	defer s.Close()

	s.Write([]byte("\x1b[1;1Hnarrow"))
	s.Resize(120, 40)
	s.Write([]byte("\x1b[1;1Hwide content here"))

	got := s.String()
	if !strings.Contains(got, "wide content here") {
		t.Errorf("String() after resize = %q, want to contain 'wide content here'", got)
	}
}

func TestScreen_TryRenderSucceedsWhenUncontended(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	s.Write([]byte("panel content"))
	content, ok := s.TryRender()
	if !ok {
		t.Fatal("TryRender() not ok on an uncontended screen")
	}
	if !strings.Contains(content, "panel content") {
		t.Errorf("TryRender() = %q, want to contain 'panel content'", content)
	}
}

func TestScreen_TryRenderDegradesUnderContention(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	s.mu.Lock()
	_, ok := s.TryRender()
	s.mu.Unlock()

	if ok {
		t.Error("TryRender() ok while the grid lock was held, want degraded result")
	}
}

func TestScreen_ForwardResponses_DA1(t *testing.T) {
	s := New(80, 24)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		s.ForwardResponses(&buf)
		close(done)
	}()

	// DA1 query (ESC[c) triggers a device-attributes response.
	s.Write([]byte("\x1b[c"))

	// Give the response pump time to forward, then close to unblock.
	time.Sleep(50 * time.Millisecond)
	s.Close()
	<-done

	resp := buf.String()
	if !strings.Contains(resp, "\x1b[?") {
		t.Errorf("ForwardResponses did not bridge DA1 response: got %q", resp)
	}
}

func TestScreen_EmptyString(t *testing.T) {
	s := New(80, 24)
	defer s.Close()
	got := s.String()
	if got != "" {
		t.Errorf("empty screen String() = %q, want empty", got)
	}
}

func TestScreen_CursorAddressedContent(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	// A dev server TUI repainting with cursor positioning.
	s.Write([]byte("\x1b[1;1HHeader Line\x1b[2;1HContent Row\x1b[3;1HFooter"))
	got := s.String()
	for _, want := range []string{"Header Line", "Content Row", "Footer"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, want to contain %q", got, want)
		}
	}
}

func TestScreen_RenderContainsStyledText(t *testing.T) {
	s := New(80, 24)
	defer s.Close()

	s.Write([]byte("\x1b[31mred text\x1b[0m"))
	rendered := s.Render()
	if !strings.Contains(rendered, "red text") {
		t.Errorf("Render() = %q, want to contain 'red text'", rendered)
	}
}

func TestScreen_CloseIsIdempotent(t *testing.T) {
	s := New(80, 24)
	if err := s.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}
