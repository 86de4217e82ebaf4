package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/soaringjerry/surveystats/internal/middleware"
	"github.com/soaringjerry/surveystats/internal/services"
	"github.com/soaringjerry/surveystats/internal/utils"
)

// BuildInfo identifies the running binary on /health and /version.
type BuildInfo struct {
	Commit    string
	BuildTime string
}

type Router struct {
	store Store
	info  BuildInfo
	stats *services.StatsService
	geo   *services.GeoService
}

func NewRouter(store Store, info BuildInfo) *Router {
	return &Router{
		store: store,
		info:  info,
		stats: services.NewStatsService(store),
		geo:   services.NewGeoService(store),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /community/{communityid}", rt.handleCommunity)
	mux.HandleFunc("GET /community/{communityid}/{$}", rt.handleCommunity)
	mux.HandleFunc("GET /communities", rt.handleCommunities)
	mux.HandleFunc("GET /communities/{$}", rt.handleCommunities)
	mux.HandleFunc("GET /surveys", rt.handleSurveys)
	mux.HandleFunc("GET /surveys/{$}", rt.handleSurveys)
	mux.HandleFunc("GET /countries", rt.handleCountries)
	mux.HandleFunc("GET /countries/{$}", rt.handleCountries)
	mux.HandleFunc("GET /country/{countrycode}", rt.handleCountry)
	mux.HandleFunc("GET /country/{countrycode}/{$}", rt.handleCountry)
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("GET /version", rt.handleVersion)
}

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	status := http.StatusOK
	ok := true
	msg := utils.T(locale, "health.ok")
	if err := rt.store.Ping(r.Context()); err != nil {
		log.Printf("api: health: store ping: %v", err)
		status = http.StatusServiceUnavailable
		ok = false
		msg = err.Error()
	}
	writeJSON(w, status, map[string]any{
		"ok":         ok,
		"name":       "surveystats",
		"locale":     locale,
		"msg":        msg,
		"commit":     rt.info.Commit,
		"build_time": rt.info.BuildTime,
	})
}

// GET /version
func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.info.Commit,
		"build_time": rt.info.BuildTime,
	})
}

// GET /community/{communityid}/
func (rt *Router) handleCommunity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("communityid"), 10, 64)
	if err != nil {
		writeNotFound(w, services.MsgCommunityNotFound)
		return
	}
	rep, err := rt.stats.CommunityReport(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /communities
func (rt *Router) handleCommunities(w http.ResponseWriter, r *http.Request) {
	list, err := rt.stats.ListCommunities(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /surveys
func (rt *Router) handleSurveys(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.stats.GlobalStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /countries
func (rt *Router) handleCountries(w http.ResponseWriter, r *http.Request) {
	list, err := rt.geo.ListCountries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /country/{countrycode}/
func (rt *Router) handleCountry(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.geo.CountryDetail(r.Context(), r.PathValue("countrycode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeNotFound writes the fixed not found body. The message is not localized
// so clients can match on it.
func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
}

// writeServiceError maps service errors to HTTP responses. Anything other than
// a not found error is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorNotFound {
		writeNotFound(w, se.Message)
		return
	}
	log.Printf("api: %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
