package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/mealbox/internal/domain/meal"
)

// ListMeals returns the meal catalog. The optional providerId and
// available query parameters narrow it down.
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var onlyAvailable bool
	if v := q.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "available must be true or false")
			return
		}
		onlyAvailable = b
	}
	providerID := q.Get("providerId")

	meals, err := h.meals.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range meals {
		m := &meals[i]
		if (onlyAvailable && !m.Available) || (providerID != "" && m.ProviderID != providerID) {
			continue
		}
		h.encodeMeal(&e, m)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// CreateMeal adds a meal to the calling provider's menu.
func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, patch, err := decodeMealPatch(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.catalog.Create(r.Context(), p, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMeal(w, http.StatusCreated, m)
}

// UpdateMeal applies the fields present in the body to one of the caller's
// meals. Sending only {"availability": false} takes a meal off the menu.
func (h *Handler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, patch, err := decodeMealPatch(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.catalog.Update(r.Context(), p, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMeal(w, http.StatusOK, m)
}

// DeleteMeal removes one of the caller's meals.
func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeMeal(w http.ResponseWriter, code int, m *meal.Meal) {
	var e jx.Encoder
	h.encodeMeal(&e, m)
	writeJSON(w, code, &e)
}

// GetMeal returns a single meal with its portions.
func (h *Handler) GetMeal(w http.ResponseWriter, r *http.Request) {
	m, err := h.meals.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMeal(w, http.StatusOK, m)
}

// ListAddOns returns the add-on catalog.
func (h *Handler) ListAddOns(w http.ResponseWriter, r *http.Request) {
	addOns, err := h.addOns.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, a := range addOns {
		encodeAddOn(&e, a)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}
