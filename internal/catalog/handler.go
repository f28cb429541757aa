package catalog

import (
	"net/http"
	"strings"

	"github.com/revomotors/api-leads/internal/utils"
)

type Handler struct {
	Catalog Provider
}

func NewHandler(p Provider) *Handler {
	return &Handler{Catalog: p}
}

type vehicleQuery struct {
	Make  string `json:"make" validate:"required"`
	Model string `json:"model" validate:"required"`
}

func pair(r *http.Request) (vehicleQuery, error) {
	q := vehicleQuery{
		Make:  strings.TrimSpace(r.URL.Query().Get("make")),
		Model: strings.TrimSpace(r.URL.Query().Get("model")),
	}
	return q, utils.Validate(q)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GET /api/cars/makes
func (h *Handler) Makes(w http.ResponseWriter, r *http.Request) {
	makes, err := h.Catalog.Makes(r.Context())
	if err != nil {
		utils.InternalError(w, r, "list makes", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"makes": emptyIfNil(makes)})
}

// GET /api/cars/models?make=
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	mk := strings.TrimSpace(r.URL.Query().Get("make"))
	if mk == "" {
		utils.Error(w, http.StatusBadRequest, "make is required")
		return
	}
	names, err := h.Catalog.Models(r.Context(), mk)
	if err != nil {
		utils.InternalError(w, r, "list models", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"make": mk, "models": emptyIfNil(names)})
}

// vehicleField answers the trims and years endpoints, which only differ in
// the field they return. Unknown vehicles give an empty list.
func (h *Handler) vehicleField(w http.ResponseWriter, r *http.Request, field string, pick func(Vehicle) any) {
	q, err := pair(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	v, ok, err := h.Catalog.Vehicle(r.Context(), q.Make, q.Model)
	if err != nil {
		utils.InternalError(w, r, "load vehicle", err)
		return
	}
	var value any = []string{}
	if ok {
		value = pick(v)
	}
	utils.JSON(w, http.StatusOK, map[string]any{"make": q.Make, "model": q.Model, field: value})
}

// GET /api/cars/trims?make=&model=
func (h *Handler) Trims(w http.ResponseWriter, r *http.Request) {
	h.vehicleField(w, r, "trims", func(v Vehicle) any { return v.Trims })
}

// GET /api/cars/years?make=&model=
func (h *Handler) Years(w http.ResponseWriter, r *http.Request) {
	h.vehicleField(w, r, "years", func(v Vehicle) any { return v.Years })
}

// GET /api/cars/details?make=&model=
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	q, err := pair(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	v, ok, err := h.Catalog.Vehicle(r.Context(), q.Make, q.Model)
	if err != nil {
		utils.InternalError(w, r, "load vehicle", err)
		return
	}
	if !ok {
		utils.Error(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	utils.JSON(w, http.StatusOK, v)
}

// GET /api/cars/search?query=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	if len([]rune(q)) < 2 {
		utils.Error(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}
	results, err := h.Catalog.Search(r.Context(), q)
	if err != nil {
		utils.InternalError(w, r, "search catalog", err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) attribute(attr Attribute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := h.Catalog.Attribute(r.Context(), attr)
		if err != nil {
			utils.InternalError(w, r, "list "+string(attr), err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{string(attr): emptyIfNil(values)})
	}
}

// GET /api/cars/all-body-types
func (h *Handler) AllBodyTypes(w http.ResponseWriter, r *http.Request) {
	h.attribute(BodyTypes)(w, r)
}

// GET /api/cars/all-transmissions
func (h *Handler) AllTransmissions(w http.ResponseWriter, r *http.Request) {
	h.attribute(Transmissions)(w, r)
}

// GET /api/cars/all-fuel-types
func (h *Handler) AllFuelTypes(w http.ResponseWriter, r *http.Request) {
	h.attribute(FuelTypes)(w, r)
}
