package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/debt"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/pricing"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// Sentinel errors for order operations.
var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyItems     = errors.New("items required")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrClientNotFound = errors.New("client not found")
	ErrForbidden      = errors.New("not allowed to view this order")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ItemRequest is one requested line of an incoming order.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// PlaceOrderRequest holds the input for client checkout.
type PlaceOrderRequest struct {
	Items      []ItemRequest
	AmountPaid decimal.Decimal
}

// AdminOrderRequest holds the input for an admin-created order on behalf of
// a client.
type AdminOrderRequest struct {
	UserID     string
	Items      []ItemRequest
	AmountPaid decimal.Decimal
}

// UpdateRequest holds the input for an admin full-order update. Nil fields
// are left unchanged.
type UpdateRequest struct {
	Items      []ItemRequest
	AmountPaid *decimal.Decimal
	Status     *Status
}

// ReceiptItem is an order line enriched with the product name for display.
type ReceiptItem struct {
	Item
	ProductName string
}

// Receipt is the document returned by the receipt view: the order, its lines
// with product names, owner display fields, and the on-demand outstanding
// debt total (never written back to the user record).
type Receipt struct {
	Order           *Order
	Items           []ReceiptItem
	UserID          string
	UserName        string
	UserPhone       string
	OutstandingDebt decimal.Decimal
}

// Service encapsulates order placement, repricing, lifecycle, and receipt
// business logic.
type Service struct {
	users    user.Repository
	products product.Repository
	orders   Repository
	ledger   Ledger
	debts    *debt.Service
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	users user.Repository,
	products product.Repository,
	orders Repository,
	ledger Ledger,
	debts *debt.Service,
) *Service {
	return &Service{
		users:    users,
		products: products,
		orders:   orders,
		ledger:   ledger,
		debts:    debts,
	}
}

// PlaceOrder prices and persists a client checkout. Every requested product
// must exist; a missing product aborts the whole order and nothing is
// written. Unit prices are resolved per the viewer's overrides and tier and
// snapshotted on the order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}

	items := make([]Item, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}

		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: it.ProductID}
			}
			return nil, errors.Wrapf(err, "get product %s", it.ProductID)
		}

		price := pricing.Resolve(p, u)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, Item{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        u.ID,
		Items:         items,
		TotalPrice:    total,
		AmountPaid:    req.AmountPaid,
		RemainingDebt: total.Sub(req.AmountPaid),
		Status:        StatusPending,
	}
	if err := s.ledger.CreateOrder(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// PlaceOrderForClient prices and persists an order entered by an admin on
// behalf of a client. Unlike client checkout, line items referencing unknown
// products are skipped rather than rejected: back-office entry tolerates
// stale product lists.
func (s *Service) PlaceOrderForClient(ctx context.Context, req AdminOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	client, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, errors.Wrap(err, "get client")
	}
	if client.Role != user.RoleClient {
		return nil, ErrClientNotFound
	}

	items := make([]Item, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}

		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "get product %s", it.ProductID)
		}

		price := pricing.Resolve(p, client)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, Item{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        client.ID,
		Items:         items,
		TotalPrice:    total,
		AmountPaid:    req.AmountPaid,
		RemainingDebt: total.Sub(req.AmountPaid),
		Status:        StatusPending,
	}
	if err := s.ledger.CreateOrder(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Update reprices and rewrites an existing order. Prices are re-snapshotted
// against the owner's current overrides and tier. The owner's aggregate debt
// moves by the delta between the new and previous remaining debt, atomically
// with the order write.
func (s *Service) Update(ctx context.Context, orderID string, req UpdateRequest) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get order owner")
	}

	prevRemaining := o.RemainingDebt

	if len(req.Items) > 0 {
		items := make([]Item, 0, len(req.Items))
		total := decimal.Zero
		for _, it := range req.Items {
			if it.Quantity <= 0 {
				return nil, &InvalidQuantityError{ProductID: it.ProductID}
			}

			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return nil, &ProductNotFoundError{ProductID: it.ProductID}
				}
				return nil, errors.Wrapf(err, "get product %s", it.ProductID)
			}

			price := pricing.Resolve(p, owner)
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, Item{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: price,
			})
		}
		o.Items = items
		o.TotalPrice = total
	}

	if req.AmountPaid != nil {
		o.AmountPaid = *req.AmountPaid
	}
	o.RemainingDebt = o.TotalPrice.Sub(o.AmountPaid)

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		o.Status = *req.Status
	}

	if err := s.ledger.UpdateOrder(ctx, o, prevRemaining); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// UpdateStatus sets the order's status. All four statuses are accepted from
// any current state.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetStatus(ctx, orderID, status); err != nil {
		return nil, errors.Wrap(err, "set status")
	}
	o.Status = status
	return o, nil
}

// Delete removes an order and subtracts its remaining debt from the owner's
// aggregate, atomically.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.ledger.DeleteOrder(ctx, o); err != nil {
		return errors.Wrap(err, "delete order")
	}
	return nil
}

// ListByUser returns the given user's orders.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order with owner display fields.
func (s *Service) ListAll(ctx context.Context) ([]WithUser, error) {
	return s.orders.ListAll(ctx)
}

// ViewReceipt returns the receipt document for an order. Only the order's
// owner or an admin may view it; the first authorized view flips the one-shot
// receiptGenerated flag, later views leave it unchanged. The outstanding debt
// figure is summed on demand from the owner's orders and is authoritative for
// this view only.
func (s *Service) ViewReceipt(ctx context.Context, orderID, viewerID string, viewerRole user.Role) (*Receipt, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if viewerRole != user.RoleAdmin && o.UserID != viewerID {
		return nil, ErrForbidden
	}

	owner, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get order owner")
	}

	outstanding, err := s.debts.Outstanding(ctx, o.UserID)
	if err != nil {
		return nil, err
	}

	if !o.ReceiptGenerated {
		if err := s.orders.MarkReceiptGenerated(ctx, o.ID); err != nil {
			return nil, errors.Wrap(err, "mark receipt generated")
		}
		o.ReceiptGenerated = true
	}

	items := make([]ReceiptItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = ReceiptItem{Item: it}
		if p, err := s.products.GetByID(ctx, it.ProductID); err == nil {
			items[i].ProductName = p.Name
		}
	}

	return &Receipt{
		Order:           o,
		Items:           items,
		UserID:          owner.ID,
		UserName:        owner.Name,
		UserPhone:       owner.PhoneNumber,
		OutstandingDebt: outstanding,
	}, nil
}
