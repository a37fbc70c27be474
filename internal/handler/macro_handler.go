package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/metrics"
	"github.com/yusufkecer/macro-tracker-backend/internal/middleware"
	"go.uber.org/zap"
)

type MacroUpdater interface {
	Update(ctx context.Context, u domain.MacroUpdate) (domain.MacroTally, error)
}

type MacroHandler struct {
	svc    MacroUpdater
	logger *zap.Logger
}

func NewMacroHandler(svc MacroUpdater, logger *zap.Logger) *MacroHandler {
	return &MacroHandler{svc: svc, logger: logger}
}

func (h *MacroHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writePlain(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writePlain(w, StatusClientError, "request body could not be read")
		return
	}

	update, err := domain.ParseMacroUpdate(body)
	if err != nil {
		metrics.IncMacroUpdate(metrics.OutcomeInvalid)
		writePlain(w, StatusClientError, err.Error())
		return
	}

	if subject, ok := middleware.UserIDFromContext(r.Context()); ok && subject != update.UserID {
		writeError(w, http.StatusForbidden, "token does not belong to this user")
		return
	}

	tally, err := h.svc.Update(r.Context(), update)
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		writePlain(w, StatusClientError, invalid.Error())
		return
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		writePlain(w, StatusClientError, fmt.Sprintf("user '%s' not found", update.UserID))
		return
	}
	if err != nil {
		h.logger.Error("macro update failed", zap.String("user_id", update.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, domain.MacroResponse{Macros: tally})
}
