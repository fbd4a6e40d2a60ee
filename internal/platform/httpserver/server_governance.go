package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	governancehttp "condogov/contexts/assembly-governance/governance-engine/transport/http"
)

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceUser(w, r)
	if !ok {
		return
	}
	var req governancehttp.CreateMeetingRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CreateMeetingHandler(r.Context(), userID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetMeetingHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMeetingGates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GatesHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMeetingProxyCaps(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.MeetingProxyCapsHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddAttendance(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.AddAttendanceRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.AddAttendanceHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluateQuorum(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	resp, err := s.governance.Handler.EvaluateQuorumHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantProxies(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.GrantProxiesRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.GrantProxiesHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePreviewProxies(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.GrantProxiesRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.PreviewProxiesHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddAgendaItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.AddAgendaItemRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.AddAgendaItemHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.AddDocumentRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.AddDocumentHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.CreateDecisionRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CreateDecisionHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		r.PathValue("meeting_id"),
		req,
	)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleCastVotes(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.CastVotesRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CastVotesHandler(r.Context(), r.PathValue("decision_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetDecisionText(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	var req governancehttp.SetDecisionTextRequest
	if !decodeGovernanceBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.SetDecisionTextHandler(r.Context(), r.PathValue("decision_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteMeeting(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	resp, err := s.governance.Handler.CompleteMeetingHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompileMinutes(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceUser(w, r); !ok {
		return
	}
	resp, err := s.governance.Handler.CompileMinutesHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleProxyCaps(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	units, err := strconv.Atoi(strings.TrimSpace(query.Get("units")))
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_units", "units must be an integer", nil)
		return
	}
	landShare := query.Get("land_share")
	if strings.TrimSpace(landShare) == "" {
		landShare = "0"
	}
	resp, err := s.governance.Handler.ProxyCapsHandler(units, landShare)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireGovernanceUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required", nil)
		return "", false
	}
	return userID, true
}

func decodeGovernanceBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return false
	}
	return true
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	var lifecycleErr *domainerrors.LifecycleError
	if errors.As(err, &lifecycleErr) {
		details := map[string]any{
			"meeting_id": lifecycleErr.MeetingID,
			"operation":  lifecycleErr.Operation,
			"state":      lifecycleErr.State,
		}
		if code := lifecycleCauseCode(lifecycleErr.Cause); code != "" {
			details["cause"] = code
		}
		writeGovernanceError(w, http.StatusConflict, "operation_not_permitted", err.Error(), details)
		return
	}
	var limitErr *domainerrors.ProxyLimitError
	if errors.As(err, &limitErr) {
		writeGovernanceError(w, http.StatusUnprocessableEntity, "proxy_limit_exceeded", err.Error(), map[string]any{
			"count_exceeded":      limitErr.CountExceeded,
			"land_share_exceeded": limitErr.LandShareExceeded,
			"count_after":         limitErr.CountAfter,
			"max_count":           limitErr.MaxCount,
			"land_share_after":    limitErr.LandShareAfter.StringFixed(2),
			"max_land_share":      limitErr.MaxLandShare.StringFixed(2),
		})
		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrMeetingNotFound):
		writeGovernanceError(w, http.StatusNotFound, "meeting_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrSiteNotFound):
		writeGovernanceError(w, http.StatusNotFound, "site_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrUnitNotFound):
		writeGovernanceError(w, http.StatusNotFound, "unit_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrDecisionNotFound):
		writeGovernanceError(w, http.StatusNotFound, "decision_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidReceiverPhone):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_receiver_phone", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidInput):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrSelfDelegation):
		writeGovernanceError(w, http.StatusUnprocessableEntity, "self_delegation", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrVoterNotAttending):
		writeGovernanceError(w, http.StatusUnprocessableEntity, "voter_not_attending", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrGiverAlreadyDelegated):
		writeGovernanceError(w, http.StatusConflict, "giver_already_delegated", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeGovernanceError(w, http.StatusConflict, "idempotency_conflict", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrConflict):
		writeGovernanceError(w, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func lifecycleCauseCode(cause error) string {
	switch {
	case cause == nil:
		return ""
	case errors.Is(cause, domainerrors.ErrNoDecisions):
		return "no_decisions"
	case errors.Is(cause, domainerrors.ErrMeetingAlreadyCompleted):
		return "meeting_already_completed"
	case errors.Is(cause, domainerrors.ErrMeetingNotCompleted):
		return "meeting_not_completed"
	default:
		return ""
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}
