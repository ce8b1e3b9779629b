package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pc-control-dashboard/internal/agent"
)

// proxyRequest is the browser-facing body for all four proxy endpoints.
// Only the fields an operation needs are required.
type proxyRequest struct {
	IP       string                `json:"ip"`
	Port     int                   `json:"port"`
	Password string                `json:"password"`
	Schedule *agent.ScheduleConfig `json:"schedule"`
}

// proxyError is the JSON error shape the proxy relays. Details carries the
// device agent's decoded body when one exists.
type proxyError struct {
	Error   string         `json:"error"`
	Details agent.Response `json:"details,omitempty"`
}

// ProxyLockHandler forwards a lock command to the device agent at the
// given address and relays the agent's response verbatim.
func (h *DashboardHandler) ProxyLockHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProxyRequest(w, r)
	if !ok {
		return
	}
	if req.IP == "" || req.Port == 0 || req.Password == "" {
		h.sendProxyError(w, http.StatusBadRequest, "Missing ip, port, or password", nil)
		return
	}

	data, err := h.Agent.Lock(r.Context(), req.IP, req.Port, req.Password)
	h.relayAgentResult(w, data, err)
}

// ProxyUnlockHandler forwards an unlock command to the device agent.
func (h *DashboardHandler) ProxyUnlockHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProxyRequest(w, r)
	if !ok {
		return
	}
	if req.IP == "" || req.Port == 0 || req.Password == "" {
		h.sendProxyError(w, http.StatusBadRequest, "Missing ip, port, or password", nil)
		return
	}

	data, err := h.Agent.Unlock(r.Context(), req.IP, req.Port, req.Password)
	h.relayAgentResult(w, data, err)
}

// ProxyStatusHandler queries the device agent's lock state. No password is
// required for status reads.
func (h *DashboardHandler) ProxyStatusHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProxyRequest(w, r)
	if !ok {
		return
	}
	if req.IP == "" || req.Port == 0 {
		h.sendProxyError(w, http.StatusBadRequest, "Missing ip or port", nil)
		return
	}

	data, err := h.Agent.Status(r.Context(), req.IP, req.Port)
	h.relayAgentResult(w, data, err)
}

// ProxyScheduleHandler forwards a schedule configuration to the device
// agent.
func (h *DashboardHandler) ProxyScheduleHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProxyRequest(w, r)
	if !ok {
		return
	}
	if req.IP == "" || req.Port == 0 || req.Password == "" || req.Schedule == nil {
		h.sendProxyError(w, http.StatusBadRequest, "Missing ip, port, password, or schedule", nil)
		return
	}

	data, err := h.Agent.SetSchedule(r.Context(), req.IP, req.Port, req.Password, *req.Schedule)
	h.relayAgentResult(w, data, err)
}

// decodeProxyRequest decodes the common proxy body, answering 400 on
// malformed JSON before any outbound call is attempted.
func (h *DashboardHandler) decodeProxyRequest(w http.ResponseWriter, r *http.Request) (*proxyRequest, bool) {
	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Printf("Proxy request decode error: %v", err)
		h.sendProxyError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return nil, false
	}
	return &req, true
}

// relayAgentResult translates the agent client's outcome into the proxy
// contract: the agent's own status and message on agent-reported failure, a
// fixed 500 on transport failure, and the decoded body on success.
func (h *DashboardHandler) relayAgentResult(w http.ResponseWriter, data agent.Response, err error) {
	if err == nil {
		h.ErrorHandler.SendJSONResponse(w, http.StatusOK, data)
		return
	}

	var agentErr *agent.Error
	if errors.As(err, &agentErr) {
		h.sendProxyError(w, agentErr.StatusCode, agentErr.Message, agentErr.Details)
		return
	}

	var unreachable *agent.UnreachableError
	if errors.As(err, &unreachable) {
		h.sendProxyError(w, http.StatusInternalServerError, unreachable.Error(), nil)
		return
	}

	h.Logger.Printf("Unexpected proxy error: %v", err)
	h.sendProxyError(w, http.StatusInternalServerError, "Proxy error", nil)
}

func (h *DashboardHandler) sendProxyError(w http.ResponseWriter, statusCode int, message string, details agent.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(proxyError{Error: message, Details: details}); err != nil {
		h.Logger.Printf("Failed to encode proxy error response: %v", err)
	}
}
