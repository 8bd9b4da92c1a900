package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/boost-backend/internal/checkout"
	"github.com/xtding233/boost-backend/internal/engine"
	"github.com/xtding233/boost-backend/internal/order"
	"github.com/xtding233/boost-backend/internal/pricing"
	"github.com/xtding233/boost-backend/internal/rank"
	"github.com/xtding233/boost-backend/internal/token"
)

// server is the local preview harness: one engine, one checkout coordinator.
type server struct {
	eng   *engine.Engine
	coord *checkout.Coordinator
	ids   *token.OrderIDs
	reg   *prometheus.Registry
	log   logrus.FieldLogger
}

func newServer(eng *engine.Engine, coord *checkout.Coordinator, ids *token.OrderIDs, reg *prometheus.Registry, log logrus.FieldLogger) *server {
	return &server{eng: eng, coord: coord, ids: ids, reg: reg, log: log}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	r.Get("/products", s.handleProducts)
	r.Get("/quote/{product}", s.handleQuote)
	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/", s.handleInitiate)
		r.Post("/complete", s.handleComplete)
		r.Post("/close", s.handleClose)
		r.Post("/retry", s.handleRetry)
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

type productInfo struct {
	Product   string         `json:"product"`
	Title     string         `json:"title"`
	Unit      string         `json:"unit"`
	Variants  []string       `json:"variants,omitempty"`
	Modifiers []modifierInfo `json:"modifiers"`
	Levels    *rank.Window   `json:"levels,omitempty"`
	Default   order.Config   `json:"default"`
	Quote     engine.Quote   `json:"quote"`
}

type modifierInfo struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	DisplayValue string `json:"display_value"`
	List         string `json:"list,omitempty"`
}

type quoteResp struct {
	Config order.Config `json:"config"`
	Quote  engine.Quote `json:"quote"`
}

type errResp struct {
	Err string `json:"err"`
}

func (s *server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	cat := s.eng.Catalog()
	out := make([]productInfo, 0, len(cat.Rules))
	for _, p := range order.Products {
		rule, ok := cat.Rule(string(p))
		if !ok {
			continue
		}
		cfg, q, err := s.eng.NewOrder(p)
		if err != nil {
			continue
		}
		info := productInfo{
			Product: string(p),
			Title:   rule.Title,
			Unit:    rule.Unit,
			Default: cfg,
			Quote:   q,
		}
		if len(rule.Rates) > 1 || rule.DefaultVariant != "" {
			info.Variants = rule.Variants()
		}
		if p == order.ProductLeveling || p == order.ProductMastery {
			levels := rule.Levels
			info.Levels = &levels
		}
		for _, m := range rule.Modifiers {
			info.Modifiers = append(info.Modifiers, modifierInfo{
				Name:         m.Name,
				Label:        m.Label,
				DisplayValue: pricing.DisplayValue(m, rule.Currency),
				List:         m.List,
			})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":     cat.Game,
		"version":  cat.Version,
		"servers":  cat.Servers,
		"products": out,
	})
}

// handleQuote prices the product's default order with the query's edits applied.
func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	cfg, q, err := s.configure(chi.URLParam(r, "product"), r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResp{Config: cfg, Quote: q})
}

func (s *server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErr(w, err)
		return
	}
	cfg, _, err := s.configure(r.Form.Get("product"), r.Form)
	if err != nil {
		writeErr(w, err)
		return
	}
	o, err := s.eng.Assemble(cfg)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.coord.Initiate(o); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.coord.Snapshot())
}

// handleComplete simulates the payment step; an order id is generated when
// the request does not carry one.
func (s *server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErr(w, err)
		return
	}
	id := r.Form.Get("order_id")
	if id == "" {
		id = s.ids.Next()
	}
	if err := s.coord.Complete(id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.coord.Snapshot())
}

func (s *server) handleClose(w http.ResponseWriter, _ *http.Request) {
	if err := s.coord.Close(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.coord.Snapshot())
}

func (s *server) handleRetry(w http.ResponseWriter, _ *http.Request) {
	if err := s.coord.Retry(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.coord.Snapshot())
}

func (s *server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Snapshot())
}

func (s *server) configure(product string, q url.Values) (order.Config, engine.Quote, error) {
	cfg, _, err := s.eng.NewOrder(order.Product(product))
	if err != nil {
		return order.Config{}, engine.Quote{}, err
	}
	cfg, quote := s.eng.Update(cfg, editsFromQuery(q)...)
	return cfg, quote, nil
}

// editsFromQuery maps request parameters onto order edits. Values that do
// not parse are skipped, like any other invalid input.
func editsFromQuery(q url.Values) []order.Edit {
	var edits []order.Edit
	if v := q.Get("boost_type"); v != "" {
		edits = append(edits, order.SetBoostType(order.BoostType(strings.ToLower(v))))
	}
	for _, name := range splitList(q.Get("options")) {
		edits = append(edits, order.SetOption(name, true))
	}
	for _, name := range splitList(q.Get("off")) {
		edits = append(edits, order.SetOption(name, false))
	}
	if p, err := rank.Parse(q.Get("current")); err == nil {
		edits = append(edits, order.SetCurrentRank(p))
	}
	if p, err := rank.Parse(q.Get("desired")); err == nil {
		edits = append(edits, order.SetDesiredRank(p))
	}
	if v, ok := q["count"]; ok {
		edits = append(edits, order.SetCountText(v[0]))
	}
	if v := q.Get("mode"); v != "" {
		edits = append(edits, order.SetMode(v))
	}
	if v, ok := q["current_level"]; ok {
		edits = append(edits, order.SetLevelText(rank.EditedCurrent, v[0]))
	}
	if v, ok := q["desired_level"]; ok {
		edits = append(edits, order.SetLevelText(rank.EditedDesired, v[0]))
	}
	if v := q.Get("champion"); v != "" {
		edits = append(edits, order.SetChampion(v))
	}
	if v := q.Get("flash"); v != "" {
		edits = append(edits, order.SetFlash(order.Flash(strings.ToUpper(v))))
	}
	if v := q.Get("coach_tier"); v != "" {
		edits = append(edits, order.SetCoachTier(v))
	}
	if v, ok := q["hours"]; ok {
		edits = append(edits, order.SetHoursText(v[0]))
	}
	if v := q.Get("server"); v != "" {
		edits = append(edits, order.SetServer(v))
	}
	if v := q.Get("promo"); v != "" {
		edits = append(edits, order.SetPromoCode(v))
	}
	if v, ok := q["roles"]; ok {
		edits = append(edits, order.SetRoles(splitList(v[0])...))
	}
	if v, ok := q["champions"]; ok {
		edits = append(edits, order.SetChampions(splitList(v[0])...))
	}
	return edits
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, order.ErrUnknownProduct), errors.Is(err, checkout.ErrNoSession):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrIllegalTransition):
		status = http.StatusConflict
	}
	writeJSON(w, status, errResp{Err: err.Error()})
}
