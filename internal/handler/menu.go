package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/tdhoang/teahouse/internal/domain/menu"
)

func encodeMenuItem(e *jx.Encoder, it menu.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("basePrice", func(e *jx.Encoder) { e.RawStr(it.BasePrice.String()) })
		e.Field("hasCustomization", func(e *jx.Encoder) { e.Bool(it.HasCustomization) })
	})
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			encodeMenuItem(e, it)
		}
	})
	writeJSON(w, http.StatusOK, e.Bytes())
}
