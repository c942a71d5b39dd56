package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/opd-ai/go-aviator/pkg/engine"
	"github.com/opd-ai/go-aviator/pkg/logging"
	"github.com/opd-ai/go-aviator/pkg/validation"
	"github.com/opd-ai/go-aviator/pkg/vehicle"
)

var errUnknownAction = errors.New("unknown action")

// commandHandler queues pilot commands posted as form values:
// action=toggle_engine|respawn|flip|select and, for select, vehicle=<archetype>.
type commandHandler struct {
	ctx     context.Context
	sim     *engine.Simulation
	limiter *validation.RateLimiter
	logger  *logging.Logger
}

func (h *commandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	client := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		client = host
	}
	if !h.limiter.Allow(client) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	action, err := validation.ValidateToken(r.FormValue("action"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("action: %v", err)})
		return
	}
	if err := h.apply(action, r.FormValue("vehicle")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.logger.Info(h.ctx, "command queued", "action", action, "client", client)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "action": action})
}

func (h *commandHandler) apply(action, target string) error {
	switch action {
	case "toggle_engine":
		h.sim.Enqueue(vehicle.ToggleEngineCommand())
	case "respawn":
		h.sim.Enqueue(vehicle.RespawnCommand())
	case "flip":
		h.sim.Enqueue(vehicle.FlipCommand())
	case "select":
		name, err := validation.ValidateToken(target)
		if err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}
		a, err := vehicle.ParseArchetype(name)
		if err != nil {
			return err
		}
		return h.sim.Select(a)
	default:
		return fmt.Errorf("%w %q", errUnknownAction, action)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
