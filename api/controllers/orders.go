package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartkisan/kisan-backend/api/middleware"
	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/api/validators"
	ordersvc "github.com/smartkisan/kisan-backend/internal/orders"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

const (
	msgOrderPlaced   = "Order placed successfully"
	msgOrderReplayed = "Order already placed"
	msgOrderUpdated  = "Order status updated"
)

// OrderPlace converts the caller's cart into an order. A repeated
// Idempotency-Key returns the existing order with 200.
func OrderPlace(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := requestOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.IdempotencyKey = strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))

		result, err := svc.Place(r.Context(), owner, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Replayed {
			responses.WriteMessage(w, http.StatusOK, msgOrderReplayed, result.Order)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, msgOrderPlaced, result.Order)
	}
}

func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := requestOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, orders, len(orders), "")
	}
}

func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := requestOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), owner, chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderUpdateStatus is the admin status transition endpoint.
func OrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ordersvc.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msgOrderUpdated, order)
	}
}
