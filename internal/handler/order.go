package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/mealbox/internal/domain/auth"
	"github.com/xenking/mealbox/internal/domain/order"
)

// QuoteOrder prices a draft without placing it.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := decodeDraft(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.orders.Quote(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeQuote(&e, res)
	writeJSON(w, http.StatusOK, &e)
}

// PlaceOrder validates the draft and creates a pending order for the caller.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := decodeDraft(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), p, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeOrder(w, http.StatusCreated, p, o)
}

// ListOrders returns the caller's orders split into active and previous.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.orders.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list := func(e *jx.Encoder, orders []order.Order) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i], h.view(p, &orders[i], false))
		}
		e.ArrEnd()
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("active", func(e *jx.Encoder) { list(e, b.Active) })
		e.Field("previous", func(e *jx.Encoder) { list(e, b.Previous) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// GetOrder returns one order with its bucket and the statuses the caller
// may move it to.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Get(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeOrder(w, http.StatusOK, p, o)
}

// UpdateOrderStatus applies {"status": "..."} to an order.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := decodeStatus(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), p, r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeOrder(w, http.StatusOK, p, o)
}

// CancelOrder cancels an order on behalf of the caller.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Cancel(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeOrder(w, http.StatusOK, p, o)
}

func (h *Handler) writeOrder(w http.ResponseWriter, code int, p auth.Principal, o *order.Order) {
	var e jx.Encoder
	encodeOrder(&e, o, h.view(p, o, true))
	writeJSON(w, code, &e)
}
