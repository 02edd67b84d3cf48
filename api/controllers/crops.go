package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/api/validators"
	cropsvc "github.com/smartkisan/kisan-backend/internal/crops"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/pagination"
)

const defaultMaxDistance = 10000

// CropList is the public crop listing with filters, cursor pagination and
// optional proximity search.
func CropList(svc cropsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseCropListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result.Crops, len(result.Crops), result.NextCursor)
	}
}

func CropGet(svc cropsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		crop, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, crop)
	}
}

func CropCreate(svc cropsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cropsvc.CreateCropInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		crop, err := svc.Create(r.Context(), identity, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, crop)
	}
}

func CropUpdate(svc cropsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cropsvc.UpdateCropInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		crop, err := svc.Update(r.Context(), identity, chi.URLParam(r, "id"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, crop)
	}
}

func CropDelete(svc cropsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, struct{}{})
	}
}

func parseCropListInput(r *http.Request) (cropsvc.ListInput, error) {
	query := r.URL.Query()
	var input cropsvc.ListInput

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	input.Pagination = pagination.Params{Limit: limit, Cursor: strings.TrimSpace(query.Get("cursor"))}

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := enums.ParseCropCategory(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid category "+raw)
		}
		input.Filters.Category = &category
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseCropStatus(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid status "+raw)
		}
		input.Filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("farmer")); raw != "" {
		farmerID, err := uuid.Parse(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "Invalid farmer id")
		}
		input.Filters.FarmerID = &farmerID
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return input, err
	}
	input.Filters.Featured = featured
	input.Filters.Query = validators.SanitizeString(query.Get("q"), 100)

	lng, err := validators.ParseQueryFloat(r, "lng")
	if err != nil {
		return input, err
	}
	lat, err := validators.ParseQueryFloat(r, "lat")
	if err != nil {
		return input, err
	}
	if (lng == nil) != (lat == nil) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "lng and lat must be provided together")
	}
	if lng != nil {
		maxDistance, err := validators.ParseQueryFloat(r, "maxDistance")
		if err != nil {
			return input, err
		}
		distance := float64(defaultMaxDistance)
		if maxDistance != nil && *maxDistance > 0 {
			distance = *maxDistance
		}
		input.Near = cropsvc.NearFrom(*lng, *lat, distance)
	}
	return input, nil
}
