// Package api serves a running map over HTTP. Every request is answered on
// the engine's loop goroutine, so handlers never race with ticks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/talgya/lookout/internal/editor"
	"github.com/talgya/lookout/internal/engine"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/world"
)

// maxScriptBytes caps the size of a posted edit script.
const maxScriptBytes = 1 << 20

// Server serves the map state over HTTP.
type Server struct {
	Eng      *engine.Engine
	Addr     string
	AdminKey string        // Bearer token for POST endpoints. Empty = POST disabled.
	Timeout  time.Duration // How long a request waits for the loop

	editLimiter *RateLimiter
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	if s.editLimiter == nil {
		s.editLimiter = NewRateLimiter(60, time.Minute)
	}
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/cell/{id}", s.handleCell)
	mux.HandleFunc("GET /api/v1/chunk/{id}", s.handleChunk)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("POST /api/v1/edit", s.adminOnly(RateLimitMiddleware(s.editLimiter, s.handleEdit)))
	return mux
}

// Start serves until ctx ends, then shuts the listener down.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// Query states. The loop and the handler race to move a query out of
// queryPending; whoever wins decides whether fn runs.
const (
	queryPending int32 = iota
	queryStarted
	queryAbandoned
)

// query runs fn on the loop goroutine and waits for it to finish. A nil
// error means fn ran; any error means it never will.
func (s *Server) query(r *http.Request, fn engine.Edit) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var state atomic.Int32
	done := make(chan struct{})
	if err := s.Eng.Submit(ctx, func(g *world.Grid) {
		if !state.CompareAndSwap(queryPending, queryStarted) {
			return
		}
		fn(g)
		close(done)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(queryPending, queryAbandoned) {
			return ctx.Err()
		}
		// Already running on the loop; it finishes within the tick.
		<-done
		return nil
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrQueueClosed) {
		http.Error(w, "engine stopped", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "engine busy", http.StatusGatewayTimeout)
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	err := s.query(r, func(g *world.Grid) {
		st := s.Eng.Stats()
		status = map[string]any{
			"tick":         s.Eng.Tick,
			"width":        g.Width(),
			"height":       g.Height(),
			"chunks":       len(g.Chunks()),
			"seed":         g.Surface().Seed(),
			"edits":        st.Edits,
			"rebuilt":      st.Rebuilt,
			"saves":        st.Saves,
			"dirty_chunks": len(g.DirtyChunks()),
		}
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, status)
}

type cellView struct {
	ID         int            `json:"id"`
	X          int            `json:"x"`
	Z          int            `json:"z"`
	Chunk      int            `json:"chunk"`
	Terrain    string         `json:"terrain"`
	Elevation  int            `json:"elevation"`
	WaterLevel int            `json:"water_level"`
	Underwater bool           `json:"underwater"`
	Urban      int            `json:"urban"`
	Farm       int            `json:"farm"`
	Plant      int            `json:"plant"`
	Walled     bool           `json:"walled"`
	City       bool           `json:"city"`
	Base       string         `json:"base,omitempty"`
	Army       string         `json:"army,omitempty"`
	Incoming   *string        `json:"incoming_river,omitempty"`
	Outgoing   *string        `json:"outgoing_river,omitempty"`
	Roads      []string       `json:"roads,omitempty"`
	Neighbors  map[string]int `json:"neighbors"`
}

func viewOf(g *world.Grid, c *world.Cell) cellView {
	x, z := c.Coord().Offset()
	v := cellView{
		ID:         c.ID(),
		X:          x,
		Z:          z,
		Chunk:      c.Chunk(),
		Terrain:    c.Terrain().String(),
		Elevation:  c.Elevation(),
		WaterLevel: c.WaterLevel(),
		Underwater: c.IsUnderwater(),
		Urban:      c.UrbanLevel(),
		Farm:       c.FarmLevel(),
		Plant:      c.PlantLevel(),
		Walled:     c.Walled(),
		City:       c.HasCity(),
		Neighbors:  make(map[string]int),
	}
	if c.Base().Playable() {
		v.Base = c.Base().String()
	}
	if c.Army().Playable() {
		v.Army = c.Army().String()
	}
	if d, ok := c.IncomingRiver(); ok {
		name := d.String()
		v.Incoming = &name
	}
	if d, ok := c.OutgoingRiver(); ok {
		name := d.String()
		v.Outgoing = &name
	}
	for _, d := range hex.Directions {
		if c.HasRoadThroughEdge(d) {
			v.Roads = append(v.Roads, d.String())
		}
		if n := g.Neighbor(c, d); n != nil {
			v.Neighbors[d.String()] = n.ID()
		}
	}
	return v
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid cell id", http.StatusBadRequest)
		return
	}
	var (
		view  cellView
		found bool
	)
	err = s.query(r, func(g *world.Grid) {
		if c := g.Cell(id); c != nil {
			view, found = viewOf(g, c), true
		}
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	if !found {
		http.Error(w, "cell not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

type chunkView struct {
	Chunk      int            `json:"chunk"`
	Cells      []int          `json:"cells"`
	Triangles  map[string]int `json:"triangles"`
	Placements map[string]int `json:"placements"`
	Digest     string         `json:"digest"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid chunk id", http.StatusBadRequest)
		return
	}
	var (
		view  chunkView
		found bool
	)
	err = s.query(r, func(g *world.Grid) {
		m := s.Eng.Refresher().Mesh(id)
		if m == nil {
			return
		}
		found = true
		view = chunkView{
			Chunk:      id,
			Cells:      g.Chunks()[id].Cells,
			Triangles:  make(map[string]int),
			Placements: make(map[string]int),
		}
		for _, l := range m.Layers() {
			view.Triangles[l.Name] = l.TriangleCount()
		}
		for _, p := range m.Placements {
			view.Placements[p.Kind.String()]++
		}
		view.Digest = m.Digest()
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	if !found {
		http.Error(w, "chunk not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

// handleEdit applies a YAML edit script. The edits land before the next
// refresh, so the reply already reflects the new cell state.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxScriptBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	script, err := editor.ParseScript(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		presses int
		runErr  error
	)
	err = s.query(r, func(g *world.Grid) {
		presses, runErr = editor.New(g).Run(script)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	if runErr != nil {
		slog.Warn("edit script rejected", "presses", presses, "error", runErr)
		writeJSONStatus(w, http.StatusUnprocessableEntity, map[string]any{"presses": presses, "error": runErr.Error()})
		return
	}
	slog.Info("edit script applied", "strokes", len(script.Strokes), "presses", presses)
	writeJSON(w, map[string]any{"presses": presses})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
