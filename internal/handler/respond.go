package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/debt"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/order"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// messageResponse is the JSON body for plain status messages and errors.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized
// surfaces as a generic 500 after being logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnf *order.ProductNotFoundError
		iq  *order.InvalidQuantityError
	)
	switch {
	case errors.As(err, &pnf):
		writeMessage(w, http.StatusNotFound, pnf.Error())
	case errors.As(err, &iq):
		writeMessage(w, http.StatusBadRequest, iq.Error())
	case errors.Is(err, order.ErrEmptyItems):
		writeMessage(w, http.StatusBadRequest, "items required")
	case errors.Is(err, order.ErrInvalidStatus):
		writeMessage(w, http.StatusBadRequest, "invalid order status")
	case errors.Is(err, debt.ErrInvalidAmount):
		writeMessage(w, http.StatusBadRequest, "invalid settlement amount")
	case errors.Is(err, order.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, order.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrClientNotFound):
		writeMessage(w, http.StatusNotFound, "client not found")
	case errors.Is(err, user.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "user not found")
	case errors.Is(err, brand.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "brand not found")
	case errors.Is(err, product.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "product not found")
	case errors.Is(err, user.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, "username already taken")
	case errors.Is(err, brand.ErrNameTaken):
		writeMessage(w, http.StatusConflict, "brand name already taken")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses the request body into dst. It returns false after
// writing a 400 response when the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
