// Package static serves a single-page application from a directory.
//
// Every path resolves inside the root via securejoin. Anything that is not an
// existing file falls back to the root index.html so client-side routes work.
package static

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// IndexFile is served for directories and unknown paths.
const IndexFile = "index.html"

// Handler serves files below Root.
type Handler struct {
	root string
}

// New returns a handler for dir. The directory must exist.
func New(dir string) (*Handler, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid static directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("static directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static directory %s is not a directory", abs)
	}

	return &Handler{root: abs}, nil
}

// Root returns the absolute directory being served.
func (h *Handler) Root() string {
	return h.root
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	path, err := h.Resolve(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// ServeContent (unlike ServeFile) does not redirect /index.html requests.
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Resolve maps a URL path to a regular file below the root, falling back
// to the directory index and then the root index.
func (h *Handler) Resolve(urlPath string) (string, error) {
	path, err := securejoin.SecureJoin(h.root, urlPath)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err == nil {
		if info.Mode().IsRegular() {
			return path, nil
		}
		if info.IsDir() {
			index := filepath.Join(path, IndexFile)
			if isRegular(index) {
				return index, nil
			}
		}
	}

	index := filepath.Join(h.root, IndexFile)
	if !isRegular(index) {
		return "", fmt.Errorf("%s not found in %s", IndexFile, h.root)
	}
	return index, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
