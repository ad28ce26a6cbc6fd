package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupSite(t *testing.T) (string, *Handler) {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "dist")
	writeFile(t, filepath.Join(root, "index.html"), "<html>app</html>")
	writeFile(t, filepath.Join(root, "assets", "app.js"), "console.log('app')")
	writeFile(t, filepath.Join(root, "docs", "index.html"), "<html>docs</html>")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))
	writeFile(t, filepath.Join(base, "secret.txt"), "do not serve")

	h, err := New(root)
	require.NoError(t, err)
	return root, h
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_ServesFiles(t *testing.T) {
	_, h := setupSite(t)

	w := get(h, "/assets/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('app')", w.Body.String())

	w = get(h, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())
}

func TestHandler_IndexNotRedirected(t *testing.T) {
	_, h := setupSite(t)

	w := get(h, "/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())
}

func TestHandler_DirectoryIndex(t *testing.T) {
	_, h := setupSite(t)

	w := get(h, "/docs/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>docs</html>", w.Body.String())
}

func TestHandler_SPAFallback(t *testing.T) {
	_, h := setupSite(t)

	for _, path := range []string{"/settings/profile", "/empty", "/missing.js"} {
		w := get(h, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "<html>app</html>", w.Body.String(), path)
	}
}

func TestHandler_TraversalStaysInRoot(t *testing.T) {
	root, h := setupSite(t)

	for _, path := range []string{"/../secret.txt", "/assets/../../secret.txt", "/%2e%2e/secret.txt"} {
		resolved, err := h.Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, filepath.Join(root, "index.html"), resolved, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "do not serve")
}

func TestHandler_SymlinkStaysInRoot(t *testing.T) {
	root, h := setupSite(t)
	if err := os.Symlink(filepath.Join(filepath.Dir(root), "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w := get(h, "/link.txt")
	assert.NotContains(t, w.Body.String(), "do not serve")
}

func TestHandler_MissingIndex(t *testing.T) {
	h, err := New(t.TempDir())
	require.NoError(t, err)

	w := get(h, "/anything")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	_, h := setupSite(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNew_ResolvesRoot(t *testing.T) {
	root, _ := setupSite(t)
	t.Chdir(filepath.Dir(root))

	h, err := New("dist")
	require.NoError(t, err)
	assert.Equal(t, root, h.Root())
	assert.True(t, filepath.IsAbs(h.Root()))
}

func TestNew_RejectsMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")
	_, err = New(file)
	assert.Error(t, err)
}
