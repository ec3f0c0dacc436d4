package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/pricing"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// productFolder is the image host folder for product images.
const productFolder = "ETS/products"

type basePricesResponse struct {
	Retail         float64 `json:"Retail"`
	Wholesale      float64 `json:"Wholesale"`
	SuperWholesale float64 `json:"SuperWholesale"`
}

type productResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Brand       *brandResponse `json:"brand,omitempty"`
	// Price is the effective unit price for the requesting viewer.
	Price      float64            `json:"price"`
	BasePrices basePricesResponse `json:"basePrices"`
	InStock    bool               `json:"inStock"`
}

func (h *Handler) toProductResponse(r *http.Request, p *product.Product, viewer *user.User) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       pricing.Resolve(p, viewer).InexactFloat64(),
		BasePrices: basePricesResponse{
			Retail:         p.BasePrices.Retail.InexactFloat64(),
			Wholesale:      p.BasePrices.Wholesale.InexactFloat64(),
			SuperWholesale: p.BasePrices.SuperWholesale.InexactFloat64(),
		},
		InStock: p.InStock,
	}
	if b, err := h.brands.GetByID(r.Context(), p.BrandID); err == nil {
		br := toBrandResponse(b)
		resp.Brand = &br
	}
	return resp
}

// viewer loads the authenticated user for price resolution. Anonymous
// sessions (and stale tokens for deleted users) resolve to nil, which means
// Retail pricing.
func (h *Handler) viewer(r *http.Request) *user.User {
	claims, ok := sessionFrom(r.Context())
	if !ok {
		return nil
	}
	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		return nil
	}
	return u
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	viewer := h.viewer(r)
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = h.toProductResponse(r, &products[i], viewer)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(r, p, h.viewer(r)))
}

// parseBasePrices decodes the three-tier price table sent as a JSON object
// in a multipart field. All three entries are required and must be
// non-negative.
func parseBasePrices(raw string) (product.BasePrices, error) {
	var in struct {
		Retail         *json.Number `json:"Retail"`
		Wholesale      *json.Number `json:"Wholesale"`
		SuperWholesale *json.Number `json:"SuperWholesale"`
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return product.BasePrices{}, errors.Wrap(err, "decode base prices")
	}
	if in.Retail == nil || in.Wholesale == nil || in.SuperWholesale == nil {
		return product.BasePrices{}, errors.New("all three tier prices are required")
	}

	parse := func(n *json.Number) (decimal.Decimal, error) {
		return decimal.NewFromString(n.String())
	}
	retail, err := parse(in.Retail)
	if err != nil {
		return product.BasePrices{}, err
	}
	wholesale, err := parse(in.Wholesale)
	if err != nil {
		return product.BasePrices{}, err
	}
	super, err := parse(in.SuperWholesale)
	if err != nil {
		return product.BasePrices{}, err
	}

	prices := product.BasePrices{Retail: retail, Wholesale: wholesale, SuperWholesale: super}
	if !prices.Valid() {
		return product.BasePrices{}, errors.New("tier prices must be non-negative")
	}
	return prices, nil
}

// createProduct accepts a multipart form: name, description, brand,
// basePrices (JSON object), quantityAvailable, and an image file.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	name := r.FormValue("name")
	brandID := r.FormValue("brand")
	rawPrices := r.FormValue("basePrices")
	image, header, err := r.FormFile("image")
	if name == "" || brandID == "" || rawPrices == "" || err != nil {
		writeMessage(w, http.StatusBadRequest, "name, brand, image, and prices are required")
		return
	}
	defer image.Close()

	prices, err := parseBasePrices(rawPrices)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.brands.GetByID(r.Context(), brandID); err != nil {
		if errors.Is(err, brand.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "unknown brand")
			return
		}
		writeError(w, r, err)
		return
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantityAvailable"))

	imageURL, err := h.images.Upload(r.Context(), productFolder, header.Filename, image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &product.Product{
		ID:                uuid.New().String(),
		Name:              name,
		Description:       r.FormValue("description"),
		Image:             imageURL,
		BrandID:           brandID,
		BasePrices:        prices,
		QuantityAvailable: quantity,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "product created",
		"product": h.toProductResponse(r, p, nil),
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if name := r.FormValue("name"); name != "" {
		p.Name = name
	}
	if desc := r.FormValue("description"); desc != "" {
		p.Description = desc
	}
	if brandID := r.FormValue("brand"); brandID != "" {
		p.BrandID = brandID
	}
	if rawPrices := r.FormValue("basePrices"); rawPrices != "" {
		prices, err := parseBasePrices(rawPrices)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		p.BasePrices = prices
	}
	if qty := r.FormValue("quantityAvailable"); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "invalid quantity")
			return
		}
		p.QuantityAvailable = n
	}
	if image, header, err := r.FormFile("image"); err == nil {
		defer image.Close()
		imageURL, err := h.images.Upload(r.Context(), productFolder, header.Filename, image)
		if err != nil {
			writeError(w, r, err)
			return
		}
		p.Image = imageURL
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "product updated",
		"product": h.toProductResponse(r, p, nil),
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "product deleted")
}
