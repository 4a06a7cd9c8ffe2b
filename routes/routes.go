package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkopka/prediction-pool/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	matchHandler *handlers.MatchHandler,
	guessHandler *handlers.GuessHandler,
	rankingHandler *handlers.RankingHandler,
	syncHandler *handlers.SyncHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/matches", matchHandler.ListMatchesHandler)
		r.Get("/rankings", rankingHandler.ListRankingsHandler)
		r.Post("/rankings/recalculate", rankingHandler.RecalculateHandler)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchHandler)
		r.Put("/result", matchHandler.EnterResultHandler)
		r.Put("/guess", guessHandler.SubmitGuessHandler)
		r.Get("/guesses/{userID}", guessHandler.GetGuessHandler)
	})

	router.Post("/sync/workbook", syncHandler.UploadWorkbookHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
