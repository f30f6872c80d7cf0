package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/jfendler/go-chatregistry/internal/config"
	"github.com/jfendler/go-chatregistry/internal/registry"
	"github.com/jfendler/go-chatregistry/internal/stats"
)

// App exposes the conversation registry over HTTP and pushes mutation
// events to WebSocket subscribers. Usernames are trusted identifiers;
// there is no credential verification at this layer.
type App struct {
	log            *log.Logger
	reg            *registry.Registry
	stats          stats.StatsProvider
	mux            *http.Server
	allowedOrigins []string
}

func NewApp(mux *http.ServeMux, logger *log.Logger, reg *registry.Registry, statsProvider stats.StatsProvider, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		reg:            reg,
		stats:          statsProvider,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/users", s.registerUser)
	mux.HandleFunc("GET /api/users", s.getUser)
	mux.HandleFunc("PUT /api/users", s.updateProfile)
	mux.HandleFunc("PUT /api/users/status", s.setStatus)
	mux.HandleFunc("PUT /api/users/presence", s.setPresence)
	mux.HandleFunc("POST /api/contacts", s.addContact)
	mux.HandleFunc("DELETE /api/contacts", s.removeContact)
	mux.HandleFunc("GET /api/contacts", s.listContacts)
	mux.HandleFunc("POST /api/rooms", s.ensureRoom)
	mux.HandleFunc("GET /api/rooms", s.getRoom)
	mux.HandleFunc("POST /api/messages", s.sendMessage)
	mux.HandleFunc("GET /api/messages", s.getMessages)
	mux.HandleFunc("POST /api/groups", s.createGroup)
	mux.HandleFunc("GET /api/groups", s.getGroup)
	mux.HandleFunc("POST /api/groups/participants", s.addParticipant)
	mux.HandleFunc("GET /api/groups/participants", s.listParticipants)
	mux.HandleFunc("DELETE /api/groups/participants", s.removeParticipant)
	mux.HandleFunc("POST /api/groups/admins", s.promoteAdmin)
	mux.HandleFunc("GET /api/groups/admins", s.listAdmins)
	mux.HandleFunc("DELETE /api/groups/admins", s.demoteAdmin)
	mux.HandleFunc("POST /api/groups/messages", s.sendGroupMessage)
	mux.HandleFunc("GET /api/groups/messages", s.getGroupMessages)
	mux.HandleFunc("GET /api/conversations", s.listConversations)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = handlers.LoggingHandler(logger.Writer(), h)
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
