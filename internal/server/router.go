package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/inkwell/internal/api"
	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/api/middleware"
)

type RouterConfig struct {
	NotebookHandler *handlers.NotebookHandler
	DocumentHandler *handlers.DocumentHandler
	ChatHandler     *handlers.ChatHandler
	NoteHandler     *handlers.NoteHandler
	SearchHandler   *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/notebooks", func(r chi.Router) {
			r.Post("/", cfg.NotebookHandler.Create)
			r.Get("/", cfg.NotebookHandler.List)
			r.Get("/{id}", cfg.NotebookHandler.Get)
			r.Patch("/{id}", cfg.NotebookHandler.Rename)
			r.Delete("/{id}", cfg.NotebookHandler.Delete)

			r.Post("/{id}/documents", cfg.DocumentHandler.Upload)
			r.Get("/{id}/documents", cfg.DocumentHandler.List)

			r.Post("/{id}/chat", cfg.ChatHandler.Ask)
			r.Get("/{id}/chat", cfg.ChatHandler.List)
			r.Delete("/{id}/chat", cfg.ChatHandler.Clear)
			r.Delete("/{id}/chat/{chatID}", cfg.ChatHandler.Delete)

			r.Post("/{id}/notes", cfg.NoteHandler.Create)
			r.Get("/{id}/notes", cfg.NoteHandler.List)
			r.Get("/{id}/notes/{noteID}", cfg.NoteHandler.Get)
			r.Patch("/{id}/notes/{noteID}", cfg.NoteHandler.Update)
			r.Delete("/{id}/notes/{noteID}", cfg.NoteHandler.Delete)

			r.Post("/{id}/search", cfg.SearchHandler.Search)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})
	})

	return r
}
