package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/pkg/db"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

const (
	msgDuplicateField = "Duplicate field value entered"
	msgInvalidToken   = "Invalid token"
	msgTokenExpired   = "Token expired"
)

var exposeStack atomic.Bool

// ExposeStacks toggles stack traces on 500 responses. Only development
// enables it.
func ExposeStacks(enabled bool) {
	exposeStack.Store(enabled)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteEnvelope(w, status, types.SuccessEnvelope{Data: data})
}

// WriteMessage writes {success, message, data}.
func WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	WriteEnvelope(w, status, types.SuccessEnvelope{Message: message, Data: data})
}

// WriteList writes {success, count, data, nextCursor}.
func WriteList(w http.ResponseWriter, data any, count int, nextCursor string) {
	WriteEnvelope(w, http.StatusOK, types.SuccessEnvelope{Count: &count, Data: data, NextCursor: nextCursor})
}

func WriteEnvelope(w http.ResponseWriter, status int, env types.SuccessEnvelope) {
	env.Success = true
	WriteJSON(w, status, env)
}

// WriteError renders err with the public error envelope and logs it.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := Translate(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal && typed.Code() != pkgerrors.CodeDependency {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Success: false,
		Message: msg,
		Code:    string(typed.Code()),
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Details = details
		}
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		payload.Error = rootMessage(err)
		if exposeStack.Load() {
			payload.Stack = string(debug.Stack())
		}
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		logCtx := logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logCtx, "request.error", err)
		} else {
			logg.Warn(logCtx, "request.error")
		}
	}

	WriteJSON(w, meta.HTTPStatus, payload)
}

// Translate maps driver and token errors onto typed errors. Typed errors
// pass through unchanged.
func Translate(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Resource not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, msgDuplicateField)
	case errors.Is(err, jwt.ErrTokenExpired):
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenExpired)
	case isTokenError(err):
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
}

func isTokenError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenInvalidClaims,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
