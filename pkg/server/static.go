package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for request paths escaping the static root.
var ErrOutsideRoot = errors.New("server: path outside root directory")

// StaticFileHandler serves the front-end bundle. Paths that name no file
// and have no extension fall back to the index file, so client-side routes
// load the app.
type StaticFileHandler struct {
	dir          string
	cacheControl string
	index        string
	useETag      bool
}

// NewStaticFileHandler creates a new static file handler.
func NewStaticFileHandler(dir string) *StaticFileHandler {
	return &StaticFileHandler{
		dir:          dir,
		cacheControl: "public, max-age=3600",
		index:        "index.html",
		useETag:      true,
	}
}

// SetCacheControl sets the Cache-Control header value.
func (h *StaticFileHandler) SetCacheControl(value string) {
	h.cacheControl = value
}

// EnableETag enables or disables ETag generation.
func (h *StaticFileHandler) EnableETag(enabled bool) {
	h.useETag = enabled
}

// ServeHTTP implements http.Handler interface.
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := ValidatePath(h.dir, r.URL.Path)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	fi, err := os.Stat(p)
	switch {
	case err == nil && fi.IsDir():
		p = filepath.Join(p, h.index)
	case errors.Is(err, os.ErrNotExist) && path.Ext(r.URL.Path) == "":
		p = filepath.Join(h.dir, h.index)
	case err != nil:
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.serveFile(w, r, p)
}

// serveFile serves a single file. Ranges, conditional requests and content
// types are handled by http.ServeContent.
func (h *StaticFileHandler) serveFile(w http.ResponseWriter, r *http.Request, p string) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	if h.useETag {
		if tag, err := fileETag(f); err == nil {
			w.Header().Set("ETag", tag)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// fileETag hashes the file content into a strong ETag.
func fileETag(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return `"` + hex.EncodeToString(hash.Sum(nil)[:8]) + `"`, nil
}

// ValidatePath resolves a request path inside root.
func ValidatePath(root, requestedPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	// path.Clean on a rooted path drops every leading ".."
	clean := path.Clean("/" + requestedPath)
	absPath := filepath.Join(absRoot, filepath.FromSlash(clean))

	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return absPath, nil
}
