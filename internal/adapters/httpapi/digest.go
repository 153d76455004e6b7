package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cinedigest/cinedigest/internal/app"
	"github.com/cinedigest/cinedigest/internal/httpjson"
	"github.com/cinedigest/cinedigest/internal/ports"
)

func (s *Server) handleDigestHTML(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.LastResult()
	if errors.Is(err, ports.ErrNotFound) {
		http.Error(w, "no digest yet, trigger a run first", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(result.HTML))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.LastResult()
	if errors.Is(err, ports.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "no digest yet")
		return
	}
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, result.Schedule)
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.LastResult()
	if errors.Is(err, ports.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "no run yet")
		return
	}
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

// handleRun déclenche un run en arrière-plan. La requête n'attend pas la fin:
// l'issue arrive sur /api/v1/events.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	done := make(chan error, 1)
	// Détaché du contexte de la requête: le run survit à la réponse.
	go func() {
		_, err := s.runner.Run(context.Background())
		done <- err
		if err != nil && !errors.Is(err, app.ErrRunInProgress) {
			s.logger.Error().Err(err).Msg("triggered run failed")
		}
	}()

	// Petit délai de grâce: un conflit ou un échec immédiat répondent avec
	// leur statut, un run qui démarre vraiment répond 202.
	select {
	case err := <-done:
		if errors.Is(err, app.ErrRunInProgress) {
			httpjson.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "completed"})
	case <-time.After(200 * time.Millisecond):
		httpjson.Write(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}
