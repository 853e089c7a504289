package ssr

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// CachePolicy selects the Cache-Control headers of static files.
type CachePolicy int

const (
	// CacheDefault sets no Cache-Control header.
	CacheDefault CachePolicy = iota

	// CacheNone disables caching, for development.
	CacheNone

	// CacheProduction caches fingerprinted files forever and others for
	// an hour with revalidation.
	CacheProduction
)

// ParseCachePolicy maps "none" and "production" to their policy. Any
// other value is CacheDefault.
func ParseCachePolicy(s string) CachePolicy {
	switch strings.ToLower(s) {
	case "none":
		return CacheNone
	case "production":
		return CacheProduction
	}
	return CacheDefault
}

// Static serves files of fsys under prefix, e.g. "/static/".
func (s *Server) Static(prefix string, fsys fs.FS, policy CachePolicy) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	h := &staticHandler{prefix: prefix, fsys: fsys, policy: policy}
	s.router.Method(http.MethodGet, prefix+"*", h)
	s.router.Method(http.MethodHead, prefix+"*", h)
}

type staticHandler struct {
	prefix string
	fsys   fs.FS
	policy CachePolicy
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel, ok := staticRelPath(strings.TrimPrefix(r.URL.Path, h.prefix))
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := h.fsys.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, "file is not seekable", http.StatusInternalServerError)
		return
	}

	switch h.policy {
	case CacheNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
	http.ServeContent(w, r, rel, info.ModTime(), rs)
}

// staticRelPath validates a request path relative to the static root.
// Dot segments, backslashes, NUL bytes and absolute paths are rejected
// rather than cleaned away.
func staticRelPath(rel string) (string, bool) {
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}
	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}

// isFingerprinted reports whether a file name carries a content hash of
// at least eight hex digits before its extension, as in "app.a1b2c3d4.css".
func isFingerprinted(p string) bool {
	parts := strings.Split(path.Base(p), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
