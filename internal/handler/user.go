package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/auth"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

type createUserRequest struct {
	Username     string                 `json:"username"`
	Password     string                 `json:"password"`
	Name         string                 `json:"name"`
	PhoneNumber  string                 `json:"phoneNumber"`
	Tier         user.Tier              `json:"tier"`
	Role         user.Role              `json:"role"`
	CustomPrices map[string]json.Number `json:"customPrices"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "username and name are required")
		return
	}
	if req.Tier == "" {
		req.Tier = user.TierRetail
	}
	if req.Role == "" {
		req.Role = user.RoleClient
	}
	if !req.Tier.Valid() || !req.Role.Valid() {
		writeMessage(w, http.StatusBadRequest, "invalid tier or role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	prices, ok := parseCustomPrices(w, req.CustomPrices)
	if !ok {
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Tier:         req.Tier,
		Role:         req.Role,
		CustomPrices: prices,
		TotalDebt:    decimal.Zero,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user created",
		"user":    toUserResponse(u),
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := user.ListFilter{
		Search: r.URL.Query().Get("search"),
		Role:   user.Role(r.URL.Query().Get("role")),
	}

	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type updateUserRequest struct {
	Username     string                 `json:"username"`
	Password     string                 `json:"password"`
	Name         string                 `json:"name"`
	PhoneNumber  string                 `json:"phoneNumber"`
	Tier         user.Tier              `json:"tier"`
	Role         user.Role              `json:"role"`
	CustomPrices map[string]json.Number `json:"customPrices"`
}

// updateUser applies a partial admin edit: empty fields keep their current
// values. A present customPrices map replaces the stored one wholesale, so
// overrides can be removed by omitting them.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.PhoneNumber != "" {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Tier != "" {
		if !req.Tier.Valid() {
			writeMessage(w, http.StatusBadRequest, "invalid tier")
			return
		}
		u.Tier = req.Tier
	}
	if req.Role != "" {
		if !req.Role.Valid() {
			writeMessage(w, http.StatusBadRequest, "invalid role")
			return
		}
		u.Role = req.Role
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		u.PasswordHash = hash
	}
	if req.CustomPrices != nil {
		prices, ok := parseCustomPrices(w, req.CustomPrices)
		if !ok {
			return
		}
		u.CustomPrices = prices
	}

	if err := h.users.Update(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "user updated",
		"user":    toUserResponse(u),
	})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "user deleted")
}

type settleDebtRequest struct {
	Amount json.Number `json:"amount"`
}

// settleDebt overwrites the user's aggregate debt with an absolute value.
// Non-numeric amounts are rejected with no mutation.
func (h *Handler) settleDebt(w http.ResponseWriter, r *http.Request) {
	var req settleDebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid settlement amount")
		return
	}

	u, err := h.debts.Settle(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "debt settled",
		"user":    toUserResponse(u),
	})
}

// parseCustomPrices converts the wire map to the domain type. A zero price is
// a real override and round-trips as such.
func parseCustomPrices(w http.ResponseWriter, in map[string]json.Number) (user.CustomPrices, bool) {
	if in == nil {
		return nil, true
	}
	prices := make(user.CustomPrices, len(in))
	for id, n := range in {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid custom price for product "+id)
			return nil, false
		}
		prices[id] = d
	}
	return prices, true
}
