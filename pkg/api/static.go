package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spaHandler serves the built frontend. Paths that name no file get
// index.html so client-side routes survive a reload.
type spaHandler struct {
	root  string
	files http.Handler
}

func newSPAHandler(root string) *spaHandler {
	return &spaHandler{root: root, files: http.FileServer(http.Dir(root))}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	info, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir() && r.URL.Path != "/") {
		http.ServeFile(w, r, filepath.Join(h.root, "index.html"))
		return
	}
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.files.ServeHTTP(w, r)
}
