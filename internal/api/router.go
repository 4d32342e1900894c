package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/vgogokhia/StrelokAI/internal/config"
)

// Router builds the service's HTTP routes
type Router struct {
	handler *Handler
	config  *config.Config
	limiter *IPRateLimiter
}

// NewRouter creates a new API router over the handler
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	var limiter *IPRateLimiter
	if cfg.Server.RateLimitPerSec > 0 {
		limiter = NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	}
	return &Router{
		handler: handler,
		config:  cfg,
		limiter: limiter,
	}
}

// Routes returns the assembled chi mux
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(rt.corsMiddleware)
	if rt.limiter != nil {
		r.Use(rt.limiter.Middleware)
	}
	if rt.handler.metrics != nil {
		r.Use(rt.metricsMiddleware)
	}

	r.Get("/api/v1/health", rt.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", rt.handler.wsServer.HandleConnection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", rt.handler.Solve)
		r.Get("/weather", rt.handler.GetWeather)
		r.Get("/scopes", rt.handler.ListScopes)
		r.Post("/scope/identify", rt.handler.IdentifyScope)

		r.Post("/auth/register", rt.handler.Register)
		r.Post("/auth/login", rt.handler.Login)
		r.Post("/auth/logout", rt.handler.Logout)

		r.Route("/profiles", func(r chi.Router) {
			r.Use(rt.handler.RequireAuth)

			r.Get("/rifles", rt.handler.ListRifleProfiles)
			r.Post("/rifles", rt.handler.SaveRifleProfile)
			r.Get("/rifles/{name}", rt.handler.GetRifleProfile)
			r.Delete("/rifles/{name}", rt.handler.DeleteRifleProfile)

			r.Get("/cartridges", rt.handler.ListCartridgeProfiles)
			r.Post("/cartridges", rt.handler.SaveCartridgeProfile)
			r.Get("/cartridges/{name}", rt.handler.GetCartridgeProfile)
			r.Delete("/cartridges/{name}", rt.handler.DeleteCartridgeProfile)
		})
	})

	return r
}

// metricsMiddleware records request counts by chi route pattern and
// response status
func (rt *Router) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		rt.handler.metrics.RecordHTTPRequest(route, strconv.Itoa(ww.Status()))
	})
}

// corsMiddleware applies the configured allowed origins
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
