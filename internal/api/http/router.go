// Package http exposes the service over HTTP. Handlers translate service
// results to status codes: not-found maps to 404, missing or invalid
// credentials to 401, ownership violations to 403, persistence and factory
// failures to 500.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/shortlink-service/shortlink/internal/models"
)

type LinkService interface {
	CreateLink(ctx context.Context, userID int64, redirectURL, label string) (models.LinkID, error)
	ViewLink(ctx context.Context, id models.LinkID) (*models.Link, error)
	GetLinkViews(ctx context.Context, id models.LinkID) (int64, error)
	DeleteLink(ctx context.Context, id models.LinkID, userID int64) error
}

type AuthService interface {
	Register(ctx context.Context, name, email, passwordDigest string) (int64, error)
	Login(ctx context.Context, email, passwordDigest string) (*models.User, error)
}

type UserService interface {
	ChangeName(ctx context.Context, userID int64, name string) error
	GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error)
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func NewRouter(logger *httplog.Logger, authSvc AuthService, linkSvc LinkService, userSvc UserService, jwtSecret []byte, tokenTTL time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	// The redirect endpoint stays at the root so short links remain short.
	r.Get("/{linkID}", handleViewLink(linkSvc))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/ping", handlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc, validate))
			r.Post("/login", handleLogin(authSvc, jwtSecret, tokenTTL))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate(userSvc, jwtSecret))

			r.Route("/links", func(r chi.Router) {
				r.Post("/", handleCreateLink(linkSvc, validate))

				r.Route("/{linkID}", func(r chi.Router) {
					r.Get("/views", handleGetLinkViews(linkSvc))
					r.Delete("/", handleDeleteLink(linkSvc))
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Patch("/me", handleChangeName(userSvc, validate))
				r.Get("/{userID}", handleGetUserInfo(userSvc))
			})
		})
	})

	return r
}
