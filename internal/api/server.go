// Package api implements the crnident HTTP API.
//
// The API exposes the pairwise identity search, clustering, and embedding
// detection over JSON. Networks travel inline in request bodies using the
// same interchange format the CLI reads from disk.
//
// # Endpoints
//
//   - GET  /healthz     liveness probe
//   - POST /v1/compare  decide identity of two networks
//   - POST /v1/cluster  partition a collection into identity classes
//   - POST /v1/subnet   find a network embedded inside others
//
// Searches are budgeted per request; an exhausted budget yields the
// "undetermined" outcome rather than an error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crn-tools/crnident/pkg/cache"
	"github.com/crn-tools/crnident/pkg/cluster"
	apperrors "github.com/crn-tools/crnident/pkg/errors"
	"github.com/crn-tools/crnident/pkg/ident"
	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/subnet"
)

// maxBodyBytes caps request bodies; collections beyond this belong on disk,
// not in a request.
const maxBodyBytes = 16 << 20

// Server handles HTTP requests.
type Server struct {
	logger   *log.Logger
	searcher *ident.CachedSearcher

	// MaxBudget caps the per-request search budget. Zero means no cap.
	MaxBudget int64
}

// NewServer creates a server. A nil cache disables result reuse.
func NewServer(logger *log.Logger, store cache.Cache) *Server {
	if logger == nil {
		logger = log.Default()
	}
	searcher := &ident.CachedSearcher{Cache: store, Keyer: cache.NewDefaultKeyer()}
	return &Server{logger: logger, searcher: searcher}
}

// Handler returns the chi router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Post("/cluster", s.handleCluster)
		r.Post("/subnet", s.handleSubnet)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchParams are the knobs shared by all search endpoints.
type searchParams struct {
	Relation  string `json:"relation"`   // weak (default) | strong
	Budget    int64  `json:"budget"`     // 0 = unlimited (subject to server cap)
	TimeoutMS int64  `json:"timeout_ms"` // 0 = none
	Workers   int    `json:"workers"`
}

func (p searchParams) relation() (ident.Relation, error) {
	switch p.Relation {
	case "", "weak":
		return ident.Weak, nil
	case "strong":
		return ident.Strong, nil
	default:
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown relation %q", p.Relation)
	}
}

type compareRequest struct {
	searchParams
	Subset    bool            `json:"subset"`
	Reference json.RawMessage `json:"reference"`
	Target    json.RawMessage `json:"target"`
}

type compareResponse struct {
	Outcome    string            `json:"outcome"`
	Relation   string            `json:"relation"`
	Mode       string            `json:"mode"`
	Cached     bool              `json:"cached"`
	Assignment *ident.Assignment `json:"assignment,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}
	rel, err := req.relation()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ref, err := decodeNetwork(req.Reference, "reference")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	target, err := decodeNetwork(req.Target, "target")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := ident.Options{
		Relation: rel,
		Budget:   s.clampBudget(req.Budget),
		Timeout:  time.Duration(req.TimeoutMS) * time.Millisecond,
		Workers:  req.Workers,
	}
	if req.Subset {
		opts.Mode = ident.Subset
	}

	a, cached, err := s.searcher.SearchWithInfo(r.Context(), ref, target, opts)
	resp := compareResponse{
		Relation: opts.Relation.String(),
		Mode:     opts.Mode.String(),
		Cached:   cached,
	}
	switch {
	case errors.Is(err, ident.ErrUndetermined):
		resp.Outcome = "undetermined"
	case errors.Is(err, ident.ErrShapeMismatch):
		resp.Outcome = "none"
	case err != nil:
		s.writeError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "compare failed"))
		return
	case a != nil:
		resp.Outcome = "match"
		resp.Assignment = a
	default:
		resp.Outcome = "none"
	}
	writeJSON(w, http.StatusOK, resp)
}

type clusterRequest struct {
	searchParams
	Algorithm string            `json:"algorithm"` // sirn (default) | naive
	Networks  []json.RawMessage `json:"networks"`
}

type clusterResponse struct {
	Algorithm    string              `json:"algorithm"`
	Relation     string              `json:"relation"`
	Clusters     [][]string          `json:"clusters"`
	Undetermined []cluster.Pair      `json:"undetermined,omitempty"`
	Violations   []cluster.Violation `json:"violations,omitempty"`
	Searched     int                 `json:"searched"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if !s.decode(w, r, &req) {
		return
	}
	rel, err := req.relation()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var algo cluster.Algorithm
	switch req.Algorithm {
	case "", "sirn":
		algo = cluster.SIRN
	case "naive":
		algo = cluster.Naive
	default:
		s.writeError(w, http.StatusBadRequest,
			apperrors.New(apperrors.ErrCodeInvalidInput, "unknown algorithm %q", req.Algorithm))
		return
	}
	nets, err := decodeNetworks(req.Networks)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := cluster.Build(r.Context(), nets, cluster.Options{
		Relation:      rel,
		Algorithm:     algo,
		Budget:        s.clampBudget(req.Budget),
		PairTimeout:   time.Duration(req.TimeoutMS) * time.Millisecond,
		SearchWorkers: req.Workers,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "clustering failed"))
		return
	}

	resp := clusterResponse{
		Algorithm:    res.Algorithm.String(),
		Relation:     res.Relation.String(),
		Clusters:     [][]string{},
		Undetermined: res.Undetermined,
		Violations:   res.Violations,
		Searched:     res.Searched,
	}
	for _, cl := range res.Clusters {
		names := make([]string, len(cl.Members))
		for i, n := range cl.Members {
			names[i] = n.Name()
		}
		resp.Clusters = append(resp.Clusters, names)
	}
	writeJSON(w, http.StatusOK, resp)
}

type subnetRequest struct {
	searchParams
	Needle    json.RawMessage   `json:"needle"`
	Haystacks []json.RawMessage `json:"haystacks"`
}

type subnetResponse struct {
	Needle       string      `json:"needle"`
	Relation     string      `json:"relation"`
	Matches      []subnetHit `json:"matches"`
	Undetermined []string    `json:"undetermined,omitempty"`
}

type subnetHit struct {
	Network    string            `json:"network"`
	Assignment *ident.Assignment `json:"assignment"`
}

func (s *Server) handleSubnet(w http.ResponseWriter, r *http.Request) {
	var req subnetRequest
	if !s.decode(w, r, &req) {
		return
	}
	rel, err := req.relation()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	needle, err := decodeNetwork(req.Needle, "needle")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	haystacks, err := decodeNetworks(req.Haystacks)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := subnet.FindAll(r.Context(), needle, haystacks, subnet.Options{
		Relation: rel,
		Budget:   s.clampBudget(req.Budget),
		Timeout:  time.Duration(req.TimeoutMS) * time.Millisecond,
		Workers:  req.Workers,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "subnet search failed"))
		return
	}

	resp := subnetResponse{
		Needle:       needle.Name(),
		Relation:     rel.String(),
		Matches:      []subnetHit{},
		Undetermined: rep.Undetermined,
	}
	for _, m := range rep.Matches {
		resp.Matches = append(resp.Matches, subnetHit{
			Network:    m.Network.Name(),
			Assignment: m.Assignment,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) clampBudget(budget int64) int64 {
	if s.MaxBudget > 0 && (budget <= 0 || budget > s.MaxBudget) {
		return s.MaxBudget
	}
	return budget
}

func decodeNetwork(raw json.RawMessage, field string) (*network.Network, error) {
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "missing %s network", field)
	}
	n, err := network.ReadNetwork(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidNetwork, err, "invalid %s network", field)
	}
	if err := apperrors.ValidateNetworkName(n.Name()); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeNetworks(raws []json.RawMessage) ([]*network.Network, error) {
	nets := make([]*network.Network, 0, len(raws))
	for i, raw := range raws {
		n, err := network.ReadNetwork(bytes.NewReader(raw))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidNetwork, err, "invalid network %d", i)
		}
		if err := apperrors.ValidateNetworkName(n.Name()); err != nil {
			return nil, err
		}
		nets = append(nets, n)
	}
	return nets, nil
}

type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	s.logger.Debug("request failed", "status", status, "code", code, "err", err)
	writeJSON(w, status, errorResponse{Code: code, Message: apperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
