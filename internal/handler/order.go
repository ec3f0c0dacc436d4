package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/order"
)

type orderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	Items      []orderItemRequest `json:"items"`
	AmountPaid json.Number        `json:"amountPaid"`
}

type orderItemResponse struct {
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type orderResponse struct {
	ID               string              `json:"id"`
	User             string              `json:"user"`
	Items            []orderItemResponse `json:"items"`
	TotalPrice       float64             `json:"totalPrice"`
	AmountPaid       float64             `json:"amountPaid"`
	RemainingDebt    float64             `json:"remainingDebt"`
	Status           order.Status        `json:"status"`
	ReceiptGenerated bool                `json:"receiptGenerated"`
	CreatedAt        time.Time           `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			Product:   it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:               o.ID,
		User:             o.UserID,
		Items:            items,
		TotalPrice:       o.TotalPrice.InexactFloat64(),
		AmountPaid:       o.AmountPaid.InexactFloat64(),
		RemainingDebt:    o.RemainingDebt.InexactFloat64(),
		Status:           o.Status,
		ReceiptGenerated: o.ReceiptGenerated,
		CreatedAt:        o.CreatedAt,
	}
}

func toItemRequests(items []orderItemRequest) []order.ItemRequest {
	out := make([]order.ItemRequest, len(items))
	for i, it := range items {
		out[i] = order.ItemRequest{ProductID: it.Product, Quantity: it.Quantity}
	}
	return out
}

// parseAmount converts a wire amount to a decimal. An absent amount decodes
// as zero.
func parseAmount(n json.Number) (decimal.Decimal, bool) {
	if n == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// checkout places a client order. Pricing is resolved per the session user,
// and a missing product rejects the whole order.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	claims, _ := sessionFrom(r.Context())

	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amountPaid, ok := parseAmount(req.AmountPaid)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid amountPaid")
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), claims.Subject, order.PlaceOrderRequest{
		Items:      toItemRequests(req.Items),
		AmountPaid: amountPaid,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "order created",
		"order":   toOrderResponse(o),
	})
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := sessionFrom(r.Context())

	orders, err := h.orders.ListByUser(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type orderWithUserResponse struct {
	orderResponse
	UserName string `json:"userName"`
	UserTier string `json:"userTier"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderWithUserResponse, len(orders))
	for i := range orders {
		out[i] = orderWithUserResponse{
			orderResponse: toOrderResponse(&orders[i].Order),
			UserName:      orders[i].UserName,
			UserTier:      orders[i].UserTier,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type statusRequest struct {
	Status order.Status `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order status updated",
		"order":   toOrderResponse(o),
	})
}

type updateOrderRequest struct {
	Items      []orderItemRequest `json:"items"`
	AmountPaid *json.Number       `json:"amountPaid"`
	Status     *order.Status      `json:"status"`
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := order.UpdateRequest{
		Items:  toItemRequests(req.Items),
		Status: req.Status,
	}
	if req.AmountPaid != nil {
		amount, ok := parseAmount(*req.AmountPaid)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "invalid amountPaid")
			return
		}
		upd.AmountPaid = &amount
	}

	o, err := h.orders.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order updated",
		"order":   toOrderResponse(o),
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "order deleted")
}

type receiptItemResponse struct {
	orderItemResponse
	ProductName string `json:"productName"`
}

type receiptResponse struct {
	Order orderResponse         `json:"order"`
	Items []receiptItemResponse `json:"items"`
	User  struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		PhoneNumber string  `json:"phoneNumber"`
		TotalDebt   float64 `json:"totalDebt"`
	} `json:"user"`
}

// viewReceipt returns the receipt document. The totalDebt figure is the
// on-demand sum over the owner's outstanding orders, not the stored running
// balance.
func (h *Handler) viewReceipt(w http.ResponseWriter, r *http.Request) {
	claims, _ := sessionFrom(r.Context())

	receipt, err := h.orders.ViewReceipt(r.Context(), r.PathValue("id"), claims.Subject, claims.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var resp receiptResponse
	resp.Order = toOrderResponse(receipt.Order)
	resp.Items = make([]receiptItemResponse, len(receipt.Items))
	for i, it := range receipt.Items {
		resp.Items[i] = receiptItemResponse{
			orderItemResponse: orderItemResponse{
				Product:   it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice.InexactFloat64(),
			},
			ProductName: it.ProductName,
		}
	}
	resp.User.ID = receipt.UserID
	resp.User.Name = receipt.UserName
	resp.User.PhoneNumber = receipt.UserPhone
	resp.User.TotalDebt = receipt.OutstandingDebt.InexactFloat64()

	writeJSON(w, http.StatusOK, resp)
}

type adminOrderRequest struct {
	User       string             `json:"user"`
	Items      []orderItemRequest `json:"items"`
	AmountPaid json.Number        `json:"amountPaid"`
}

// createOrderForClient places an order on behalf of a client. Unknown
// products in the item list are skipped.
func (h *Handler) createOrderForClient(w http.ResponseWriter, r *http.Request) {
	var req adminOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.User == "" || len(req.Items) == 0 {
		writeMessage(w, http.StatusBadRequest, "user and items are required")
		return
	}
	amountPaid, ok := parseAmount(req.AmountPaid)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid amountPaid")
		return
	}

	o, err := h.orders.PlaceOrderForClient(r.Context(), order.AdminOrderRequest{
		UserID:     req.User,
		Items:      toItemRequests(req.Items),
		AmountPaid: amountPaid,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

type summaryResponse struct {
	ClientCount int64   `json:"clientCount"`
	OrderCount  int64   `json:"orderCount"`
	TotalDebt   float64 `json:"totalDebt"`
}

func (h *Handler) adminSummary(w http.ResponseWriter, r *http.Request) {
	clients, orders, totalDebt, err := h.stats.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		ClientCount: clients,
		OrderCount:  orders,
		TotalDebt:   totalDebt.InexactFloat64(),
	})
}
