package device

import (
	"testing"
	"time"

	"github.com/AnyUserName/wallgen/internal/series"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		width int
		want  string
	}{
		{0, series.DeviceMobile},
		{375, series.DeviceMobile},
		{767, series.DeviceMobile},
		{768, series.DeviceDesktop},
		{1920, series.DeviceDesktop},
	}
	for _, c := range cases {
		if got := Classify(c.width); got != c.want {
			t.Errorf("Classify(%d) = %s, want %s", c.width, got, c.want)
		}
	}
}

func TestBreakpointHelpers(t *testing.T) {
	if !IsSmallMobile(575) || IsSmallMobile(576) {
		t.Error("IsSmallMobile boundary")
	}
	if IsTabletSize(767) || !IsTabletSize(768) || !IsTabletSize(991) || IsTabletSize(992) {
		t.Error("IsTabletSize boundaries")
	}
	if IsLargeDesktop(1199) || !IsLargeDesktop(1200) {
		t.Error("IsLargeDesktop boundary")
	}
}

func TestFromUserAgent(t *testing.T) {
	cases := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", HintMobile},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36", HintMobile},
		{"Mozilla/5.0 (Linux; Android 13; SM-X700) Safari/537.36", HintTablet},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", HintTablet},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36", HintDesktop},
		{"", HintDesktop},
	}
	for _, c := range cases {
		if got := FromUserAgent(c.ua); got != c.want {
			t.Errorf("FromUserAgent(%q) = %s, want %s", c.ua, got, c.want)
		}
	}
	if GuessWidth("iPhone Mobile") >= MD || GuessWidth("") != DefaultWidth {
		t.Error("GuessWidth")
	}
}

type change struct{ newClass, oldClass string }

func collect(w *Watcher) (<-chan change, func()) {
	ch := make(chan change, 8)
	unsub := w.OnChange(func(n, o string) { ch <- change{n, o} })
	return ch, unsub
}

func expectNone(t *testing.T, ch <-chan change) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherReportsClassChange(t *testing.T) {
	w := NewWatcher(1024, time.Millisecond)
	defer w.Close()
	ch, _ := collect(w)

	w.Resize(900)
	expectNone(t, ch)

	w.Resize(500)
	select {
	case c := <-ch:
		if c.newClass != series.DeviceMobile || c.oldClass != series.DeviceDesktop {
			t.Errorf("change = %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no change reported")
	}
	if w.Width() != 500 || w.Class() != series.DeviceMobile {
		t.Errorf("width=%d class=%s", w.Width(), w.Class())
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	w := NewWatcher(1024, 20*time.Millisecond)
	defer w.Close()
	ch, _ := collect(w)

	// There and back within one settle window.
	w.Resize(500)
	w.Resize(600)
	w.Resize(1100)
	expectNone(t, ch)

	w.Resize(400)
	w.Resize(300)
	select {
	case c := <-ch:
		if c != (change{series.DeviceMobile, series.DeviceDesktop}) {
			t.Errorf("change = %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no change reported")
	}
	expectNone(t, ch)
}

func TestWatcherUnsubscribeAndClose(t *testing.T) {
	w := NewWatcher(1024, time.Millisecond)
	ch, unsub := collect(w)
	unsub()
	w.Resize(500)
	expectNone(t, ch)

	w2 := NewWatcher(1024, 10*time.Millisecond)
	ch2, _ := collect(w2)
	w2.Resize(500)
	w2.Close()
	expectNone(t, ch2)
	w2.Resize(1200)
	expectNone(t, ch2)
}
