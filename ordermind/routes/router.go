package routes

import (
	"net/http"

	"ordermind/ordermind/config"
	"ordermind/ordermind/controllers"
	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Controllers struct {
	Auth   *controllers.AuthController
	Orders *controllers.OrderController
	Chat   *controllers.ChatController
	Agent  *controllers.AgentController
	RAG    *controllers.RAGController
	Health *controllers.HealthController
}

// NewRouter assembles the HTTP API. users resolves the user of a session
// token.
func NewRouter(cfg config.Config, users middlewares.UserLookup, c Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestMiddleware)
	r.Use(middleware.Recoverer)

	r.Mount("/health", HealthRoutes(c.Health))
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(requestTimeout))
		gr.Mount("/auth", AuthRoutes(c.Auth, cfg))
	})

	limiter := middlewares.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateBurst)
	wsOpts := &websocket.AcceptOptions{InsecureSkipVerify: !cfg.IsProduction()}

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg.JWTSecret, users))
		gr.Mount("/service", ServiceRoutes(c.Chat, c.Agent, c.RAG, limiter, wsOpts))
		gr.Group(func(tr chi.Router) {
			tr.Use(middleware.Timeout(requestTimeout))
			tr.Get("/", Home(c.Chat))
			tr.Mount("/orders", OrderRoutes(c.Orders))
		})
	})
	return r
}
