package routes

import (
	"net/http"

	"github.com/courtside/tennis-api/handlers"
	"github.com/courtside/tennis-api/live"
	"github.com/courtside/tennis-api/middleware"
	"github.com/courtside/tennis-api/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	registrationHandler *handlers.RegistrationHandler,
	matchHandler *handlers.MatchHandler,
	liveHandler *live.Handler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Route("/api/user", func(r chi.Router) {
		r.Post("/register", authHandler.SignUpHandler)
		r.Post("/login", authHandler.SignInHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/all", userHandler.ListUsersHandler)
			r.Get("/registered", userHandler.ListRegisteredPlayersHandler)
			r.Get("/filter", userHandler.FilterUsersHandler)
			r.Get("/role/{role}", userHandler.ListByRoleHandler)
			r.Get("/{username}", userHandler.GetUserHandler)
			r.Put("/update/{id}", userHandler.UpdateCredentialsHandler)

			// Машина состояний турнирной заявки
			r.With(middleware.Authorize(models.RolePlayer)).
				Put("/request-tournament", registrationHandler.RequestHandler)
			r.With(middleware.Authorize(models.RolePlayer)).
				Put("/quit-tournament", registrationHandler.QuitHandler)
			r.With(middleware.Authorize(models.RoleAdministrator)).
				Put("/accept-tournament", registrationHandler.AcceptHandler)
			r.With(middleware.Authorize(models.RoleAdministrator)).
				Put("/reject-tournament", registrationHandler.RejectHandler)

			// Управление пользователями — только администратор
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdministrator))
				r.Post("/", userHandler.AddUserHandler)
				r.Put("/{id}", userHandler.UpdateUserHandler)
				r.Delete("/{id}", userHandler.DeleteUserHandler)
			})
		})
	})

	router.Route("/api/match", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", matchHandler.ListMatchesHandler)
		r.Get("/export", matchHandler.ExportMatchesHandler)
		r.Get("/{id}", matchHandler.GetMatchHandler)

		r.With(middleware.Authorize(models.RolePlayer, models.RoleAdministrator)).
			Post("/{id}/register", matchHandler.RegisterPlayerHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleReferee, models.RoleAdministrator))
			r.Patch("/{id}/score", matchHandler.UpdateScoreHandler)
			r.Post("/{id}/remove", matchHandler.RemovePlayerHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdministrator))
			r.Post("/", matchHandler.CreateMatchHandler)
			r.Put("/{id}", matchHandler.UpdateMatchHandler)
			r.Delete("/{id}", matchHandler.DeleteMatchHandler)
			r.Post("/export/upload", matchHandler.ExportUploadHandler)
		})
	})

	router.Get("/api/live", liveHandler.ServeWS)
}
