package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGitHubStub(t *testing.T, listings map[string]any, statuses map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing User-Agent on %s", r.URL.Path)
		}
		dir := strings.TrimPrefix(r.URL.Path, "/repos/owner/repo/contents/")
		if code, ok := statuses[dir]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := listings[dir]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestRemoteList(t *testing.T) {
	srv := newGitHubStub(t, map[string]any{
		"wallpaper/desktop": []map[string]any{
			{"name": "游戏--a.jpg", "type": "file", "size": 10, "sha": "s1", "download_url": "https://raw/a"},
			{"name": "readme.md", "type": "file", "size": 1},
			{"name": "风景", "type": "dir"},
			{"name": "broken", "type": "dir"},
		},
		"wallpaper/desktop/风景": []map[string]any{
			{"name": "b.png", "type": "file", "size": 20, "sha": "s2"},
			{"name": "nested", "type": "dir"},
		},
	}, map[string]int{"wallpaper/desktop/broken": http.StatusInternalServerError})
	defer srv.Close()

	src := &RemoteSource{Owner: "owner", Repo: "repo", Branch: "main", APIBase: srv.URL}
	recs, err := src.List(context.Background(), "wallpaper/desktop")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records: %+v", len(recs), recs)
	}
	if recs[0].Category != "游戏" || recs[0].RelativePath != "游戏--a.jpg" || recs[0].SHA != "s1" || recs[0].RemoteRef != "https://raw/a" {
		t.Errorf("root file: %+v", recs[0])
	}
	if recs[1].Category != "风景" || recs[1].RelativePath != "风景/b.png" || recs[1].IsLocal() {
		t.Errorf("subdir file: %+v", recs[1])
	}
}

func TestRemoteListNotFoundIsEmpty(t *testing.T) {
	srv := newGitHubStub(t, map[string]any{}, nil)
	defer srv.Close()

	src := &RemoteSource{Owner: "owner", Repo: "repo", APIBase: srv.URL}
	recs, err := src.List(context.Background(), "wallpaper/avatar")
	if err != nil {
		t.Fatalf("404 should not be fatal: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty, got %d", len(recs))
	}
}

func TestRemoteListTopLevelFailureIsFatal(t *testing.T) {
	srv := newGitHubStub(t, nil, map[string]int{"wallpaper/mobile": http.StatusForbidden})
	defer srv.Close()

	src := &RemoteSource{Owner: "owner", Repo: "repo", APIBase: srv.URL}
	_, err := src.List(context.Background(), "wallpaper/mobile")
	if !errors.Is(err, ErrRemoteListing) {
		t.Fatalf("got %v, want ErrRemoteListing", err)
	}
}

func TestRemoteSendsToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	src := &RemoteSource{Owner: "owner", Repo: "repo", APIBase: srv.URL, Token: "t0k"}
	if _, err := src.List(context.Background(), "wallpaper/desktop"); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer t0k" {
		t.Errorf("Authorization = %q", auth)
	}
}
