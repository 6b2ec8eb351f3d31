package server

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/toastate/toastpack/internal/tlogger"
	"github.com/toastate/toastpack/pkg/builder"
	"github.com/toastate/toastpack/pkg/config"
)

const indexPage = "index.html"

// Server previews the output directory of a build.
type Server struct {
	cfg         *config.Configuration
	outputDir   string
	port        string
	override404 string
}

func NewServer(cfg *config.Configuration) *Server {
	override404 := cfg.ServeConfig.Redirect404
	if override404 != "" && !strings.HasPrefix(override404, "/") {
		override404 = "/" + override404
	}
	return &Server{
		cfg:         cfg,
		outputDir:   filepath.Join(cfg.RootDir, cfg.OutputDir),
		port:        strconv.Itoa(cfg.ServeConfig.Port),
		override404: override404,
	}
}

// Start optionally runs one build, then serves the output directory until the listener fails.
func (s *Server) Start(ctx context.Context, withBuilder bool) error {
	if withBuilder {
		b, err := builder.Run(ctx, s.cfg)
		if err != nil {
			return err
		}
		s.outputDir = b.OutputDir()
	}

	// We use println here so the address can be copied or opened directly from the terminal
	fmt.Println("Listening on http://localhost:" + s.port)

	return http.ListenAndServe(":"+s.port, s.Handler())
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(s.fileServer)
	return r
}

// lookup maps a request path to a file of the output directory, trying the
// path itself, then path.html, then path/index.html.
func (s *Server) lookup(upath string) (string, bool, error) {
	fullName := filepath.Join(s.outputDir, filepath.FromSlash(path.Clean("/"+upath)))

	for _, candidate := range []string{fullName, fullName + ".html", filepath.Join(fullName, indexPage)} {
		info, err := os.Stat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", false, err
		}
		if !info.IsDir() {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func (s *Server) fileServer(w http.ResponseWriter, r *http.Request) {
	fullName, ok, err := s.lookup(r.URL.Path)
	if err != nil {
		w.WriteHeader(500)
		w.Write([]byte("Internal error: can't open file: " + err.Error()))
		return
	}
	if !ok && s.override404 != "" && r.URL.Path != s.override404 {
		fullName, ok, err = s.lookup(s.override404)
		if err != nil {
			w.WriteHeader(500)
			w.Write([]byte("Internal error: can't open file: " + err.Error()))
			return
		}
	}
	if !ok {
		w.WriteHeader(404)
		w.Write([]byte("404 page not found"))
		return
	}

	servedName := fullName
	if strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
		if _, err := os.Stat(fullName + ".br"); err == nil {
			servedName = fullName + ".br"
			w.Header().Set("Content-Encoding", "br")
			w.Header().Add("Vary", "Accept-Encoding")
		}
	}

	content, err := os.Open(servedName)
	if err != nil {
		w.WriteHeader(500)
		w.Write([]byte("Internal error: can't open file"))
		return
	}
	defer content.Close()

	ctype := mime.TypeByExtension(filepath.Ext(fullName))
	if ctype == "" && servedName == fullName {
		// read a chunk to decide between utf-8 text and binary
		var buf [512]byte
		n, _ := io.ReadFull(content, buf[:])
		ctype = http.DetectContentType(buf[:n])
		if _, err := content.Seek(0, io.SeekStart); err != nil {
			w.WriteHeader(500)
			w.Write([]byte("Internal error: can't seek file: " + err.Error()))
			return
		}
	}
	if ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}

	if _, err := io.Copy(w, content); err != nil {
		tlogger.Warn("msg", "could not serve file", "file", servedName, "err", err)
	}
}
