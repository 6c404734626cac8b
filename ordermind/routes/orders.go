package routes

import (
	"errors"
	"net/http"
	"strconv"

	"ordermind/ordermind/controllers"
	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/types"

	"github.com/go-chi/chi/v5"
)

func OrderRoutes(ctrl *controllers.OrderController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		orders, err := ctrl.GetAllOrders(r.Context())
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		order, err := ctrl.CreateOrder(r.Context(), req)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := orderID(w, r)
		if !ok {
			return
		}
		order, err := ctrl.GetOrder(r.Context(), id)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := orderID(w, r)
		if !ok {
			return
		}
		var req types.UpdateOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		order, err := ctrl.UpdateOrder(r.Context(), id, req)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := orderID(w, r)
		if !ok {
			return
		}
		if err := ctrl.DeleteOrder(r.Context(), id); err != nil {
			writeOrderError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func orderID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return id, true
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, controllers.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dao.ErrNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	default:
		writeInternal(w, r, err)
	}
}
