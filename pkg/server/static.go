package server

import (
	"embed"
	iofs "io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odvcencio/earthcontrol/pkg/page"
)

//go:embed static
var embeddedStatic embed.FS

// threeOrigin hosts the three.js module earth.js imports.
const threeOrigin = "https://cdn.jsdelivr.net"

// StaticFS returns the embedded asset filesystem.
func StaticFS() (iofs.FS, error) {
	return iofs.Sub(embeddedStatic, "static")
}

// mountStatic serves /static from AssetsDir when it is a readable
// directory, else from the embedded copy.
func (s *Server) mountStatic(router chi.Router) {
	assets := s.staticFS()
	fileServer := http.StripPrefix(page.DefaultStaticPrefix+"/", http.FileServer(http.FS(assets)))
	router.Get(page.DefaultStaticPrefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(s.cfg.AssetsDir) != "" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) staticFS() iofs.FS {
	dir := strings.TrimSpace(s.cfg.AssetsDir)
	if dir != "" {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			s.logger.Printf("serving static assets from %s", dir)
			return os.DirFS(dir)
		}
		s.logger.Printf("warning: static assets directory %q unavailable, falling back to embedded assets", dir)
	}
	assets, err := StaticFS()
	if err != nil {
		// The embed directive guarantees the subtree exists.
		panic(err)
	}
	return assets
}
