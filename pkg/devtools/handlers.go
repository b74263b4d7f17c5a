package devtools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/sprout/internal/archive"
	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/internal/scenario"
	"github.com/vango-dev/sprout/pkg/host/memhost"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Code: errors.Code(err)})
}

// withPlayer runs fn on the loop goroutine.
func (s *Server) withPlayer(w http.ResponseWriter, r *http.Request, fn func(p *scenario.Player)) bool {
	err := s.loop.Call(r.Context(), func() { fn(s.player) })
	if err != nil {
		s.logger.Error("player call failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	var (
		snap memhost.Snapshot
		text string
	)
	ok := s.withPlayer(w, r, func(p *scenario.Player) {
		switch format {
		case "html":
			text = s.host.Serialize(p.Root())
		case "text":
			text = s.host.Tree(p.Root())
		default:
			snap = s.host.Snapshot(p.Root())
		}
	})
	if !ok {
		return
	}
	switch format {
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(text))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("since must be a non-negative integer"))
			return
		}
		since = n
	}
	ops := []memhost.Op{}
	for _, op := range s.host.Ops() {
		if op.Seq > since {
			ops = append(ops, op)
		}
	}
	writeJSON(w, http.StatusOK, ops)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var (
		st   scenario.StepTrace
		more bool
	)
	if !s.withPlayer(w, r, func(p *scenario.Player) { st, more = p.Step() }) {
		return
	}
	if !more {
		writeError(w, http.StatusConflict, fmt.Errorf("scenario %s has no steps left", s.sc.Name))
		return
	}
	s.stream.Publish(Message{Type: MessageStep, Step: &st})
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var mount scenario.StepTrace
	ok := s.withPlayer(w, r, func(p *scenario.Player) {
		p.Unmount()
		s.player = s.newPlayer()
		mount = s.player.Mount()
	})
	if !ok {
		return
	}
	s.stream.Publish(Message{Type: MessageReset, Step: &mount})
	writeJSON(w, http.StatusOK, mount)
}

func (s *Server) currentTrace(w http.ResponseWriter, r *http.Request) (*scenario.Trace, bool) {
	var trace *scenario.Trace
	ok := s.withPlayer(w, r, func(p *scenario.Player) { trace = p.Trace() })
	return trace, ok
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	trace, ok := s.currentTrace(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(trace.Text()))
		return
	}
	writeJSON(w, http.StatusOK, trace)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.cfg.Store == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("trace archive is not configured"))
		return false
	}
	return true
}

func (s *Server) handleSaveTrace(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	trace, ok := s.currentTrace(w, r)
	if !ok {
		return
	}
	data, err := trace.JSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	id, err := s.cfg.Store.Put(r.Context(), data)
	if err != nil {
		s.logger.Error("archive trace", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("trace archived", "id", id, "scenario", trace.Scenario)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListTraces(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	entries, err := s.cfg.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	data, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Code(err) == "E151" {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
