package api

import (
	"errors"
	"net/http"

	reqdto "parking-hold-engine/internal/handler/dto/request"
	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var errEmptyPatch = errors.New("at least one of zone_id, polygon, vehicle_type_hint is required")

type SlotHandler struct {
	cmds  commands.SlotCommands
	q     queries.SlotQueries
	avail queries.AvailabilityQueries
}

func NewSlotHandler(cmds commands.SlotCommands, q queries.SlotQueries, avail queries.AvailabilityQueries) *SlotHandler {
	return &SlotHandler{cmds: cmds, q: q, avail: avail}
}

// @Summary Create slot
// @Description Register a slot together with its (free) occupancy record
// @Tags slots
// @Accept json
// @Produce json
// @Security EdgeKey
// @Param request body reqdto.CreateSlotRequest true "Create slot request"
// @Success 201 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /slots [post]
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var req reqdto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "body")
		return
	}
	created, err := h.cmds.CreateSlot(c.Request.Context(), commands.CreateSlotInput{
		SlotID:          req.SlotID,
		ZoneID:          req.ZoneID,
		Polygon:         req.Polygon,
		VehicleTypeHint: req.VehicleTypeHint,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromSlotView(queries.ToSlotView(created))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Update slot
// @Description Administrative edit of zone, polygon or vehicle type hint
// @Tags slots
// @Accept json
// @Produce json
// @Security EdgeKey
// @Param id path string true "Slot ID"
// @Param request body reqdto.UpdateSlotRequest true "Update slot request"
// @Success 200 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /slots/{id} [patch]
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	var req reqdto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "body")
		return
	}
	if req.IsEmpty() {
		abortBadRequest(c, errEmptyPatch, "body")
		return
	}
	updated, err := h.cmds.UpdateSlot(c.Request.Context(), c.Param("id"), commands.UpdateSlotInput{
		ZoneID:          req.ZoneID,
		Polygon:         req.Polygon,
		VehicleTypeHint: req.VehicleTypeHint,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromSlotView(queries.ToSlotView(updated))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get slot
// @Tags slots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} resdto.SlotResponse
// @Failure 404 {object} httperr.Response
// @Router /slots/{id} [get]
func (h *SlotHandler) GetSlot(c *gin.Context) {
	view, err := h.q.GetSlot(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromSlotView(view)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List slots
// @Tags slots
// @Produce json
// @Param zone_id query string false "Filter by zone"
// @Success 200 {array} resdto.SlotResponse
// @Router /slots [get]
func (h *SlotHandler) ListSlots(c *gin.Context) {
	views, err := h.q.ListSlots(c.Request.Context(), zoneFilter(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromSlotViews(views)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": resp})
}

// @Summary Slot availability
// @Description Whether the slot can be held right now, and what blocks it otherwise
// @Tags availability
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /slots/{id}/availability [get]
func (h *SlotHandler) GetAvailability(c *gin.Context) {
	view, err := h.avail.GetSlotAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromAvailabilityView(view)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Availability grid
// @Description Availability of every slot, optionally within one zone
// @Tags availability
// @Produce json
// @Param zone_id query string false "Filter by zone"
// @Success 200 {array} resdto.AvailabilityResponse
// @Failure 503 {object} httperr.Response
// @Router /availability [get]
func (h *SlotHandler) ListAvailability(c *gin.Context) {
	views, err := h.avail.ListAvailability(c.Request.Context(), zoneFilter(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromAvailabilityViews(views)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": resp})
}

func zoneFilter(c *gin.Context) *string {
	if zone := c.Query("zone_id"); zone != "" {
		return &zone
	}
	return nil
}
