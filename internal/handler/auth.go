package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/auth"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// userResponse is the public view of a user account. The password hash never
// leaves the server.
type userResponse struct {
	ID           string             `json:"id"`
	Username     string             `json:"username"`
	Name         string             `json:"name"`
	PhoneNumber  string             `json:"phoneNumber"`
	Tier         user.Tier          `json:"tier"`
	Role         user.Role          `json:"role"`
	CustomPrices map[string]float64 `json:"customPrices,omitempty"`
	TotalDebt    float64            `json:"totalDebt"`
}

func toUserResponse(u *user.User) userResponse {
	resp := userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Tier:        u.Tier,
		Role:        u.Role,
		TotalDebt:   u.TotalDebt.InexactFloat64(),
	}
	if len(u.CustomPrices) > 0 {
		resp.CustomPrices = make(map[string]float64, len(u.CustomPrices))
		for id, price := range u.CustomPrices {
			resp.CustomPrices[id] = price.InexactFloat64()
		}
	}
	return resp
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "wrong username or password")
			return
		}
		writeError(w, r, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "wrong username or password")
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := sessionFrom(r.Context())

	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

type profileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// updateProfile lets any authenticated user change their own name, phone
// number, and password.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := sessionFrom(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.PhoneNumber != "" {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		u.PasswordHash = hash
	}

	if err := h.users.Update(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated",
		"user":    toUserResponse(u),
	})
}
