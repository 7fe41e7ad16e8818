package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
)

func eventsHandler(eventStore core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			From  uint64 `json:"from"`
			Limit int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		events, err := eventStore.List(ctx, params.From, params.Limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, events)
	}
}
