package server

import (
	"context"
	"net/http"

	"github.com/toastate/toastpack/internal/server"
	"github.com/toastate/toastpack/pkg/config"
)

type Server interface {
	Start(ctx context.Context, withBuilder bool) error
	Handler() http.Handler
}

func NewServer(cfg *config.Configuration) Server {
	return server.NewServer(cfg)
}
