// Package handler exposes the application over HTTP. Handlers are thin:
// decode and validate the request, read the actor the auth middleware
// resolved, call a service, map the result. All rules live in the services.
package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"adboard/internal/assist"
	"adboard/internal/auth"
	"adboard/internal/service"
	"adboard/internal/storage"
	"adboard/pkg/config"
	"adboard/pkg/health"
	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

type Handler struct {
	ads        *service.AdvertisementService
	moderation *service.ModerationService
	categories *service.CategoryService
	users      *service.UserService

	authManager *auth.Manager
	photos      *storage.PhotoStore // nil when object storage is not configured
	reviewer    *assist.Reviewer    // nil when the assist feature is off

	cfg      *config.Config
	validate *validator.Validate
	log      *logging.ComponentLogger

	mRequests *metrics.Counter
	mDuration *metrics.Histogram
}

type Deps struct {
	Advertisements *service.AdvertisementService
	Moderation     *service.ModerationService
	Categories     *service.CategoryService
	Users          *service.UserService
	AuthManager    *auth.Manager
	Photos         *storage.PhotoStore
	Reviewer       *assist.Reviewer
	Config         *config.Config
	Logger         *logging.Logger
}

func New(deps Deps) *Handler {
	h := &Handler{
		ads:         deps.Advertisements,
		moderation:  deps.Moderation,
		categories:  deps.Categories,
		users:       deps.Users,
		authManager: deps.AuthManager,
		photos:      deps.Photos,
		reviewer:    deps.Reviewer,
		cfg:         deps.Config,
		validate:    validator.New(),
		mRequests:   metrics.Default.Counter("http_requests_total", "Total HTTP requests served"),
		mDuration:   metrics.Default.Histogram("http_request_duration_seconds", "HTTP request latency", metrics.DefBuckets),
	}
	if deps.Logger != nil {
		h.log = deps.Logger.WithComponent("http")
	}
	return h
}

// Router assembles the route table. The auth middleware runs on every route;
// per-route authorization happens in the services.
func (h *Handler) Router(checker *health.Checker) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.instrument)
	r.Use(h.authManager.Middleware)

	// identity
	r.HandleFunc("/users", h.registerUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.refresh).Methods(http.MethodPost)

	// advertisements
	r.HandleFunc("/advertisements", h.createAdvertisement).Methods(http.MethodPost)
	r.HandleFunc("/advertisements", h.listAdvertisements).Methods(http.MethodGet)
	r.HandleFunc("/advertisements/search", h.searchAdvertisements).Methods(http.MethodGet)
	r.HandleFunc("/advertisements/{id}", h.getAdvertisement).Methods(http.MethodGet)
	r.HandleFunc("/advertisements/{id}", h.updateAdvertisement).Methods(http.MethodPatch)
	r.HandleFunc("/advertisements/{id}", h.removeAdvertisement).Methods(http.MethodDelete)
	r.HandleFunc("/advertisements/{id}/submit", h.submitAdvertisement).Methods(http.MethodPost)
	r.HandleFunc("/advertisements/{id}/moderation", h.listModerationHistory).Methods(http.MethodGet)

	// moderation
	r.HandleFunc("/moderation", h.createModeration).Methods(http.MethodPost)
	r.HandleFunc("/moderation/{id}", h.getModeration).Methods(http.MethodGet)
	if h.reviewer != nil {
		r.HandleFunc("/moderation/assist/{advertisement_id}", h.assistReview).Methods(http.MethodGet)
	}

	// categories
	r.HandleFunc("/categories", h.createCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", h.getCategory).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", h.deleteCategory).Methods(http.MethodDelete)

	// photos
	if h.photos != nil {
		r.HandleFunc("/photos", h.uploadPhoto).Methods(http.MethodPost)
		r.HandleFunc("/photos/url", h.photoURL).Methods(http.MethodGet)
	}

	// operational endpoints bypass auth
	ops := mux.NewRouter()
	ops.Handle(h.cfg.HealthCheckPath, checker.Handler()).Methods(http.MethodGet)
	if h.cfg.MetricsEnabled {
		ops.Handle(h.cfg.MetricsPath, metrics.Default.Handler()).Methods(http.MethodGet)
	}
	ops.PathPrefix("/").Handler(r)
	return ops
}

// instrument records request count and latency.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.mRequests.Inc(1)
		h.mDuration.Observe(time.Since(start).Seconds())
	})
}
