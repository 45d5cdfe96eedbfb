package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/podiumpicks/podium-api/handlers"
	"github.com/podiumpicks/podium-api/middleware"
	"github.com/podiumpicks/podium-api/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Admin       *handlers.AdminHandler
	Race        *handlers.RaceHandler
	Rider       *handlers.RiderHandler
	Prediction  *handlers.PredictionHandler
	Result      *handlers.ResultHandler
	Leaderboard *handlers.LeaderboardHandler
	Live        *handlers.LiveHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	secret := []byte(jwtSecret)
	authenticate := middleware.Authenticate(secret)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Get("/verify-email", h.Auth.VerifyEmail)
		r.Post("/validate-invitation", h.Auth.ValidateInvitationCode)
	})

	router.Route("/races", func(r chi.Router) {
		r.Get("/", h.Race.ListBySeason)

		r.Route("/{raceID}", func(r chi.Router) {
			r.Get("/", h.Race.GetByID)
			r.Get("/result", h.Result.GetByRace)
			r.Get("/scores", h.Result.ListScores)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/predictions", h.Prediction.ListByRace)
				r.Get("/prediction", h.Prediction.GetMine)
				r.Put("/prediction", h.Prediction.Save)
			})
		})
	})

	router.Get("/riders", h.Rider.ListBySeason)
	router.Get("/riders/{id}", h.Rider.GetByID)
	router.Get("/teams", h.Rider.ListTeams)
	router.Get("/leaderboard", h.Leaderboard.GetBySeason)

	router.Route("/users/me", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.User.GetMe)
		r.Put("/nickname", h.User.UpdateNickname)
		r.Post("/avatar", h.User.UploadAvatar)
		r.Post("/resend-verification", h.User.ResendVerification)
		r.Delete("/", h.User.DeleteMe)
		r.Get("/predictions", h.Prediction.ListMine)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Admin.ListUsers)
			r.Put("/{id}", h.Admin.UpdateUser)
			r.Post("/{id}/verify", h.Admin.VerifyUser)
			r.Delete("/{id}", h.Admin.DeleteUser)
		})

		r.Route("/races", func(r chi.Router) {
			r.Post("/", h.Race.Create)
			r.Put("/{raceID}", h.Race.Update)
			r.Post("/{raceID}/image", h.Race.UploadTrackImage)

			r.Route("/{raceID}/result", func(r chi.Router) {
				r.Put("/", h.Result.Confirm)
				r.Post("/recalculate", h.Result.Recalculate)
				r.Post("/unlock", h.Result.Unlock)
				r.Delete("/", h.Result.Delete)
			})
		})

		r.Route("/riders", func(r chi.Router) {
			r.Post("/", h.Rider.Create)
			r.Put("/{id}", h.Rider.Update)
			r.Delete("/{id}", h.Rider.Delete)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Put("/{id}", h.Prediction.AdminUpdate)
			r.Delete("/{id}", h.Prediction.AdminDelete)
		})
	})

	router.Get("/ws", h.Live.ServeGlobal)
	router.Get("/ws/races/{raceID}", h.Live.ServeRace)
}
