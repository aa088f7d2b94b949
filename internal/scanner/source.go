package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/AnyUserName/wallgen/internal/logging"
)

// LocalSource looks for a series directory under an ordered list of
// candidate repository roots.
type LocalSource struct {
	Roots []string
}

// Locate returns the first candidate root that contains wallpaperDir,
// together with the joined directory.
func (s LocalSource) Locate(wallpaperDir string) (repoRoot, dir string, ok bool) {
	for _, root := range s.Roots {
		candidate := filepath.Join(root, filepath.FromSlash(wallpaperDir))
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			logging.Debug("path not found: %s", candidate)
			continue
		}
		return root, candidate, true
	}
	return "", "", false
}

// ErrRemoteListing marks a fatal failure of the top-level remote listing.
var ErrRemoteListing = errors.New("remote listing failed")

// DefaultAPIBase is the GitHub REST endpoint used by RemoteSource.
const DefaultAPIBase = "https://api.github.com"

// RemoteSource lists a series directory through the GitHub contents API.
// It is only consulted when no local candidate exists.
type RemoteSource struct {
	Owner  string
	Repo   string
	Branch string
	// APIBase overrides DefaultAPIBase (tests point it at httptest).
	APIBase string
	// Token is sent as a bearer token when set.
	Token      string
	HTTPClient *http.Client
}

// contentEntry is one element of a contents API directory listing.
type contentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// List returns the image files of wallpaperDir and of its immediate
// subdirectories. A missing top-level directory yields no files; any
// other top-level failure is returned. Failing subdirectories are logged
// and skipped.
func (s *RemoteSource) List(ctx context.Context, wallpaperDir string) ([]FileRecord, error) {
	entries, status, err := s.fetch(ctx, wallpaperDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteListing, wallpaperDir, err)
	}
	if status == http.StatusNotFound {
		logging.Info("directory %s not found remotely (ok for new series)", wallpaperDir)
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteListing, wallpaperDir, status)
	}

	var records []FileRecord
	for _, e := range entries {
		switch e.Type {
		case "dir":
			records = append(records, s.listSubdir(ctx, wallpaperDir, e.Name)...)
		case "file":
			if !IsImage(e.Name) {
				continue
			}
			records = append(records, FileRecord{
				Name:         e.Name,
				Size:         e.Size,
				Category:     CategoryFromFilename(e.Name),
				RelativePath: e.Name,
				RemoteRef:    e.DownloadURL,
				SHA:          e.SHA,
			})
		}
	}
	logging.Info("found %d image files remotely under %s", len(records), wallpaperDir)
	return records, nil
}

func (s *RemoteSource) listSubdir(ctx context.Context, wallpaperDir, subdir string) []FileRecord {
	entries, status, err := s.fetch(ctx, path.Join(wallpaperDir, subdir))
	if err != nil || status < 200 || status > 299 {
		logging.Warn("failed to fetch subdirectory %s (status %d, err %v)", subdir, status, err)
		return nil
	}
	var records []FileRecord
	for _, e := range entries {
		if e.Type != "file" || !IsImage(e.Name) {
			continue
		}
		records = append(records, FileRecord{
			Name:         e.Name,
			Size:         e.Size,
			Category:     subdir,
			RelativePath: subdir + "/" + e.Name,
			RemoteRef:    e.DownloadURL,
			SHA:          e.SHA,
		})
	}
	return records
}

func (s *RemoteSource) fetch(ctx context.Context, dir string) ([]contentEntry, int, error) {
	base := s.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		base, url.PathEscape(s.Owner), url.PathEscape(s.Repo), escapePath(dir))
	if s.Branch != "" {
		endpoint += "?ref=" + url.QueryEscape(s.Branch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "Wallpaper-Gallery-Builder")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logging.Debug("GET %s", endpoint)
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, nil
	}
	var entries []contentEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode listing: %w", err)
	}
	return entries, resp.StatusCode, nil
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	u := url.URL{Path: p}
	return u.EscapedPath()
}
