package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/feed"
)

// decodeItems parses the request items array. The sugar, ice and aloe keys
// are optional; providing any of them yields a customization filled from the
// form defaults.
func decodeItems(d *jx.Decoder) ([]order.ItemInput, error) {
	var items []order.ItemInput
	if err := d.Arr(func(d *jx.Decoder) error {
		var in order.ItemInput
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			custom := func() *order.Customization {
				if in.Custom == nil {
					in.Custom = order.DefaultCustomization()
				}
				return in.Custom
			}
			switch key {
			case "itemId":
				v, err := d.Str()
				if err != nil {
					return err
				}
				in.MenuID = v
			case "quantity":
				v, err := d.Int()
				if err != nil {
					return err
				}
				in.Quantity = v
			case "sugar":
				v, err := d.Int()
				if err != nil {
					return err
				}
				custom().Sugar = v
			case "ice":
				v, err := d.Int()
				if err != nil {
					return err
				}
				custom().Ice = v
			case "aloe":
				v, err := d.Bool()
				if err != nil {
					return err
				}
				custom().Aloe = v
			default:
				return d.Skip()
			}
			return nil
		}); err != nil {
			return err
		}
		items = append(items, in)
		return nil
	}); err != nil {
		return nil, err
	}
	return items, nil
}

// decodeItemsRequest parses a {"items":[...]} body.
func decodeItemsRequest(body io.Reader) ([]order.ItemInput, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	var items []order.ItemInput
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		items, err = decodeItems(d)
		return err
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItemsRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	placed, err := h.orders.Place(r.Context(), items)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var e jx.Encoder
	feed.EncodeOrder(&e, *placed)
	writeJSON(w, http.StatusCreated, e.Bytes())
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := order.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = parsed
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed.EncodeOrders(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var e jx.Encoder
	feed.EncodeOrder(&e, *o)
	writeJSON(w, http.StatusOK, e.Bytes())
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var raw string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		raw, err = d.Str()
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, err := order.ParseStatus(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), next); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateItems(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItemsRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.orders.UpdateItems(r.Context(), chi.URLParam(r, "orderID"), items)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// An emptied order is deleted rather than saved.
	if updated == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var e jx.Encoder
	feed.EncodeOrder(&e, *updated)
	writeJSON(w, http.StatusOK, e.Bytes())
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
