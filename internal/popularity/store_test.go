package popularity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "popularity.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.db")
	if err := RunMigrations(path); err != nil {
		t.Fatal(err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRecordAndSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	record := func(at time.Time, key, kind string) {
		t.Helper()
		s.now = func() time.Time { return at }
		if err := s.Record(ctx, "desktop", key, kind); err != nil {
			t.Fatal(err)
		}
	}

	record(now.Add(-40*24*time.Hour), "/a.jpg", KindDownload)
	record(now.Add(-10*24*time.Hour), "/a.jpg", KindView)
	record(now.Add(-2*24*time.Hour), "/b.jpg", KindView)
	record(now.Add(-time.Hour), "/b.jpg", KindDownload)
	record(now, "/c.jpg", KindView)
	s.now = func() time.Time { return now }
	if err := s.Record(ctx, "mobile", "/a.jpg", KindView); err != nil {
		t.Fatal(err)
	}

	p, err := s.Snapshot(ctx, "desktop")
	if err != nil {
		t.Fatal(err)
	}

	a := p.All["/a.jpg"]
	if a.Views != 1 || a.Downloads != 1 || a.Score != 3 {
		t.Errorf("all-time /a.jpg = %+v", a)
	}
	if b := p.All["/b.jpg"]; b.Score != 3 {
		t.Errorf("all-time /b.jpg = %+v", b)
	}
	if len(p.All) != 3 {
		t.Errorf("other series leaked into the snapshot: %v", p.All)
	}

	if _, ok := p.Weekly["/a.jpg"]; ok {
		t.Error("/a.jpg has no events this week")
	}
	if len(p.Weekly) != 2 {
		t.Errorf("weekly = %v", p.Weekly)
	}
	if m := p.Monthly["/a.jpg"]; m.Views != 1 || m.Downloads != 0 {
		t.Errorf("monthly /a.jpg = %+v", m)
	}
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), "desktop", "/a.jpg", "like")
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("err = %v", err)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	s := openTestStore(t)
	p, err := s.Snapshot(context.Background(), "avatar")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.All) != 0 || len(p.Weekly) != 0 || len(p.Monthly) != 0 {
		t.Errorf("snapshot = %+v", p)
	}
}
