package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaekwang-park/kata-api/internal/http/handler"
	"github.com/jaekwang-park/kata-api/internal/service"
)

type RouterOptions struct {
	// NotFoundAsInternal answers unknown kata ids with 500 instead of 404.
	NotFoundAsInternal bool
}

func NewRouter(kataSvc *service.KataService, store handler.Pinger, logger *slog.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Handle("/health", handler.NewHealthHandler(store))

	kataHandler := handler.NewKataHandler(kataSvc, logger,
		handler.WithNotFoundAsInternal(opts.NotFoundAsInternal),
	)
	// /api/katas is the path the browser client has always used.
	r.Mount("/katas", kataHandler.Routes())
	r.Mount("/api/katas", kataHandler.Routes())

	return r
}
