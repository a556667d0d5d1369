package rules

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"chaser-agent-backend/internal/auth"
)

type rulePayload struct {
	RuleID            int        `json:"rule_id,omitempty"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	IsActive          *bool      `json:"is_active"`
	TriggerType       string     `json:"trigger_type"`
	TriggerConditions Conditions `json:"trigger_conditions"`
	Actions           []Action   `json:"actions"`
}

func (p *rulePayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "name is required"
	}
	if !ValidTrigger(p.TriggerType) {
		return "invalid trigger type"
	}
	if len(p.Actions) == 0 {
		return "at least one action is required"
	}
	for _, a := range p.Actions {
		if !ValidAction(a.Type) {
			return "invalid action type: " + a.Type
		}
	}
	return ""
}

func GetRulesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := store.ListByOwner(r.Context(), uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateRuleHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body rulePayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if msg := body.validate(); msg != "" {
			http.Error(w, msg, 400)
			return
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		rule, err := store.Create(r.Context(), Rule{
			Name:              body.Name,
			Description:       strings.TrimSpace(body.Description),
			IsActive:          active,
			TriggerType:       body.TriggerType,
			TriggerConditions: body.TriggerConditions,
			Actions:           body.Actions,
			CreatedBy:         uid,
		})
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rule)
	}
}

func UpdateRuleHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body rulePayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.RuleID == 0 {
			http.Error(w, "rule_id required", 400)
			return
		}
		if msg := body.validate(); msg != "" {
			http.Error(w, msg, 400)
			return
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		rule, err := store.Update(r.Context(), uid, Rule{
			ID:                body.RuleID,
			Name:              body.Name,
			Description:       strings.TrimSpace(body.Description),
			IsActive:          active,
			TriggerType:       body.TriggerType,
			TriggerConditions: body.TriggerConditions,
			Actions:           body.Actions,
		})
		if err == sql.ErrNoRows {
			http.Error(w, "rule not found", 404)
			return
		}
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rule)
	}
}

func DeleteRuleHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			RuleID int `json:"rule_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.RuleID == 0 {
			http.Error(w, "rule_id required", 400)
			return
		}

		err := store.Delete(r.Context(), uid, body.RuleID)
		if err == sql.ErrNoRows {
			http.Error(w, "rule not found", 404)
			return
		}
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": body.RuleID})
	}
}
