package api

import (
	"context"
	"net/http"

	"parking-hold-engine/internal/domain/hold"
	reqdto "parking-hold-engine/internal/handler/dto/request"
	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/handler/middleware"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HoldHandler struct {
	cmds commands.HoldCommands
	q    queries.HoldQueries
}

func NewHoldHandler(cmds commands.HoldCommands, q queries.HoldQueries) *HoldHandler {
	return &HoldHandler{cmds: cmds, q: q}
}

// @Summary Place hold
// @Description Place a short-lived hold on a slot. Fails with 409 naming the blocking hold when the slot is held, occupied or reserved.
// @Tags holds
// @Accept json
// @Produce json
// @Param request body reqdto.PlaceHoldRequest true "Place hold request"
// @Success 201 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response{detail=resdto.ConflictDetail}
// @Failure 503 {object} httperr.Response
// @Router /holds [post]
func (h *HoldHandler) PlaceHold(c *gin.Context) {
	var req reqdto.PlaceHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "body")
		return
	}

	// The auth provider's token wins over a user id in the body
	userID := req.UserID
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	held, err := h.cmds.PlaceHold(c.Request.Context(), commands.PlaceHoldInput{
		SlotID:      req.SlotID,
		HoldMinutes: req.HoldMinutes,
		UserID:      userID,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromHold(held))
}

// @Summary Confirm hold
// @Description Check in: turns an unexpired hold into a parking session
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response{detail=resdto.InvalidStateDetail}
// @Router /holds/{id}/confirm [post]
func (h *HoldHandler) ConfirmHold(c *gin.Context) {
	h.transition(c, h.cmds.ConfirmHold)
}

// @Summary Cancel hold
// @Description Cancel an unexpired hold and free the slot
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response{detail=resdto.InvalidStateDetail}
// @Router /holds/{id}/cancel [post]
func (h *HoldHandler) CancelHold(c *gin.Context) {
	h.transition(c, h.cmds.CancelHold)
}

// @Summary Release hold
// @Description End the parking session of a confirmed hold
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response{detail=resdto.InvalidStateDetail}
// @Router /holds/{id}/release [post]
func (h *HoldHandler) ReleaseHold(c *gin.Context) {
	h.transition(c, h.cmds.ReleaseHold)
}

// @Summary Get hold
// @Description Get a hold with its effective status
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /holds/{id} [get]
func (h *HoldHandler) GetHold(c *gin.Context) {
	id, ok := parseHoldID(c)
	if !ok {
		return
	}
	view, err := h.q.GetHold(c.Request.Context(), id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromHoldView(view)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HoldHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*hold.Hold, error)) {
	id, ok := parseHoldID(c)
	if !ok {
		return
	}
	updated, err := op(c.Request.Context(), id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHold(updated))
}

func parseHoldID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, err, "id")
		return uuid.Nil, false
	}
	return id, true
}
