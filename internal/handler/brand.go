package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
)

// maxUploadSize caps multipart form memory for logo and image uploads.
const maxUploadSize = 10 << 20

// brandFolder is the image host folder for brand logos.
const brandFolder = "ETS/brands"

type brandResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

func toBrandResponse(b *brand.Brand) brandResponse {
	return brandResponse{ID: b.ID, Name: b.Name, Logo: b.Logo}
}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]brandResponse, len(brands))
	for i := range brands {
		out[i] = toBrandResponse(&brands[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// createBrand accepts a multipart form with a name field and a logo file.
func (h *Handler) createBrand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	name := r.FormValue("name")
	logo, header, err := r.FormFile("logo")
	if name == "" || err != nil {
		writeMessage(w, http.StatusBadRequest, "name and logo are required")
		return
	}
	defer logo.Close()

	logoURL, err := h.images.Upload(r.Context(), brandFolder, header.Filename, logo)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b := &brand.Brand{
		ID:   uuid.New().String(),
		Name: name,
		Logo: logoURL,
	}
	if err := h.brands.Create(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "brand created",
		"brand":   toBrandResponse(b),
	})
}

func (h *Handler) updateBrand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	b, err := h.brands.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if name := r.FormValue("name"); name != "" {
		b.Name = name
	}
	if logo, header, err := r.FormFile("logo"); err == nil {
		defer logo.Close()
		logoURL, err := h.images.Upload(r.Context(), brandFolder, header.Filename, logo)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b.Logo = logoURL
	}

	if err := h.brands.Update(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "brand updated",
		"brand":   toBrandResponse(b),
	})
}

func (h *Handler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.brands.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "brand deleted")
}
