package handler

import (
	"net/http"

	"sentinel/internal/domain"
)

// ListPolicies returns policies, optionally for one framework
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.List(r.Context(), r.URL.Query().Get("framework"))
	if err != nil {
		h.fail(w, "Failed to list policies", err)
		return
	}
	writeJSON(w, policies, http.StatusOK)
}

// CreatePolicy stores a new policy
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var p domain.Policy
	if err := decodeBody(w, r, &p); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	created, err := h.policies.Create(r.Context(), p)
	if err != nil {
		h.fail(w, "Failed to create policy", err)
		return
	}
	writeJSON(w, created, http.StatusCreated)
}

// GetPolicy returns one policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Policy not found", err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

// DeletePolicy removes a policy
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policies.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete policy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EvaluatePolicy runs a policy rule against the current hosts
func (h *Handler) EvaluatePolicy(w http.ResponseWriter, r *http.Request) {
	eval, err := h.policies.Evaluate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to evaluate policy", err)
		return
	}
	writeJSON(w, eval, http.StatusOK)
}

// GetFrameworks returns the compliance catalog
func (h *Handler) GetFrameworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.frameworks.Current(), http.StatusOK)
}

