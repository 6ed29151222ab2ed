package api

import (
	"net/http"
	"time"

	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/handler/httperr"
	"parking-hold-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// abortWithDomainError maps the ledger's error taxonomy onto HTTP. Conflict and InvalidState carry
// enough detail for the caller to retry later or pick another slot.
func abortWithDomainError(c *gin.Context, err error) {
	var (
		notFound *errs.NotFoundError
		invalid  *errs.InvalidArgumentError
		conflict *errs.ConflictError
		state    *errs.InvalidStateError
	)

	switch {
	case errs.As(err, &conflict):
		httperr.AbortWithError(c, http.StatusConflict, err, conflictMessage(conflict.Reason), resdto.ConflictDetail{
			SlotID:         conflict.SlotID,
			Reason:         string(conflict.Reason),
			BlockingHoldID: conflict.BlockingHoldID,
			BlockingStatus: conflict.BlockingStatus,
			Until:          conflict.Until,
		})
	case errs.As(err, &state):
		httperr.AbortWithError(c, http.StatusConflict, err, "Hold is not in a state that allows this operation", resdto.InvalidStateDetail{
			HoldID:    state.HoldID,
			Status:    state.Status,
			Operation: state.Operation,
		})
	case errs.As(err, &notFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", resdto.NotFoundDetail{
			Resource: notFound.Resource,
			ID:       notFound.ID,
		})
	case errs.As(err, &invalid):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", resdto.InvalidArgumentDetail{
			Field:  invalid.Field,
			Reason: invalid.Reason,
		})
	case errs.Is(err, errs.ErrUnavailable):
		httperr.AbortUnavailable(c, err, "Service temporarily unavailable", time.Second)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func conflictMessage(reason errs.ConflictReason) string {
	switch reason {
	case errs.ConflictHeld:
		return "Slot is already held"
	case errs.ConflictOccupied:
		return "Slot is occupied"
	case errs.ConflictReserved:
		return "Slot is reserved"
	case errs.ConflictExists:
		return "Slot already exists"
	default:
		return "Conflict"
	}
}

func abortBadRequest(c *gin.Context, err error, field string) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", resdto.InvalidArgumentDetail{
		Field:  field,
		Reason: err.Error(),
	})
}
