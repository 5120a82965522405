package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/jtorres/go-chatline/internal/config"
	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/server"
	"github.com/teris-io/shortid"
)

type ChatApp struct {
	log            *log.Logger
	db             database.ChatRepository
	gw             *server.Gateway
	uploader       media.Uploader
	srv            *http.Server
	signingKey     []byte
	allowedOrigins []string
	// overridable in tests
	generateShortId func() (string, error)
}

func NewChatApp(mux *http.ServeMux, logger *log.Logger, gw *server.Gateway, db database.ChatRepository, uploader media.Uploader, cfg *config.Config) *ChatApp {
	s := &ChatApp{
		log:             logger,
		db:              db,
		gw:              gw,
		uploader:        uploader,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/logout", s.logout)
	mux.HandleFunc("GET /api/auth/check", s.authMiddleware(s.checkAuth))
	mux.HandleFunc("PUT /api/auth/update-profile", s.authMiddleware(s.updateProfile))
	mux.HandleFunc("POST /api/auth/follow/{id}", s.authMiddleware(s.follow))
	mux.HandleFunc("POST /api/auth/unfollow/{id}", s.authMiddleware(s.unfollow))
	mux.HandleFunc("GET /api/messages/users", s.authMiddleware(s.otherUsers))
	mux.HandleFunc("GET /api/messages/{id}", s.authMiddleware(s.getMessages))
	mux.HandleFunc("POST /api/messages/send/{id}", s.authMiddleware(s.sendMessage))
	mux.HandleFunc("POST /api/status/upload", s.authMiddleware(s.uploadStatus))
	mux.HandleFunc("GET /api/status/all", s.authMiddleware(s.getStatuses))
	mux.HandleFunc("GET /api/status/mine", s.authMiddleware(s.getMyStatuses))
	mux.HandleFunc("PUT /api/status/seen/{statusId}", s.authMiddleware(s.markStatusSeen))
	mux.HandleFunc("DELETE /api/status/{statusId}", s.authMiddleware(s.deleteStatus))
	mux.HandleFunc("POST /api/groups", s.authMiddleware(s.createGroup))
	mux.HandleFunc("GET /api/groups/mine", s.authMiddleware(s.myGroups))
	mux.HandleFunc("GET /api/groups/{userId}", s.authMiddleware(s.groupsByUser))
	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.srv = srv
	return s
}

func (s *ChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *ChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
