package api

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/animseq/internal/events"
	"github.com/nidhogg/animseq/internal/provider"
	"github.com/nidhogg/animseq/internal/role"
	"github.com/nidhogg/animseq/internal/sequence"
	"go.uber.org/zap"
)

// maxResults bounds how many finished runs are kept for lookup.
const maxResults = 100

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	sim       *sequence.Simulator
	roles     []role.Role
	providers *provider.Router
	publisher *events.Publisher
	logger    *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	resMu   sync.RWMutex
	results map[string]*sequence.Result
	order   []string
}

// NewHandler creates a new API handler. providers and publisher may be nil.
func NewHandler(
	sim *sequence.Simulator,
	roles []role.Role,
	rng *rand.Rand,
	providers *provider.Router,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sim:       sim,
		roles:     roles,
		rng:       rng,
		providers: providers,
		publisher: publisher,
		logger:    logger,
		results:   make(map[string]*sequence.Result),
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/catalog", h.getCatalog)
		r.Get("/roles", h.listRoles)
		r.Get("/providers", h.listProviders)
		r.Get("/providers/{id}", h.getProvider)

		r.Post("/simulations", h.runSimulation)
		r.Get("/simulations/{id}", h.getSimulation)
		r.Get("/simulations/{id}/events", h.getSimulationEvents)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "animseq"})
}

func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.sim.Catalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"animations": cat.IDs(),
		"triggers":   cat.Triggers(),
		"max_steps":  h.sim.MaxSteps(),
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roles)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	if h.providers == nil {
		writeJSON(w, http.StatusOK, []provider.Info{})
		return
	}
	writeJSON(w, http.StatusOK, h.providers.Describe())
}

func (h *Handler) getProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.providers != nil {
		if _, ok := h.providers.GetProvider(id); ok {
			for _, info := range h.providers.Describe() {
				if info.ID == id {
					writeJSON(w, http.StatusOK, info)
					return
				}
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "provider not found"})
}

type simulationRequest struct {
	Role string `json:"role"`
}

func (h *Handler) runSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rl, err := h.pickRole(req.Role)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.sim.Run(r.Context(), rl)
	h.remember(res)
	if err != nil {
		status := http.StatusBadGateway
		if res.Reason == sequence.StopCanceled {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("simulation aborted",
			zap.String("run", res.RunID),
			zap.String("reason", string(res.Reason)),
			zap.Error(err))
		writeJSON(w, status, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) pickRole(label string) (role.Role, error) {
	if label != "" {
		return role.Parse(label, h.roles)
	}
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return role.Pick(h.rng, h.roles)
}

func (h *Handler) remember(res *sequence.Result) {
	h.resMu.Lock()
	defer h.resMu.Unlock()
	h.results[res.RunID] = res
	h.order = append(h.order, res.RunID)
	for len(h.order) > maxResults {
		delete(h.results, h.order[0])
		h.order = h.order[1:]
	}
}

func (h *Handler) getSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.resMu.RLock()
	res, ok := h.results[id]
	h.resMu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "simulation not found"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getSimulationEvents(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "event stream not configured"})
		return
	}
	id := chi.URLParam(r, "id")
	evs, err := h.publisher.Events(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(evs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no events for simulation"})
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
