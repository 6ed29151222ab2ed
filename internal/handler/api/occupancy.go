package api

import (
	"net/http"

	"parking-hold-engine/internal/domain/occupancy"
	reqdto "parking-hold-engine/internal/handler/dto/request"
	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OccupancyHandler struct {
	cmds commands.OccupancyCommands
	q    queries.SlotQueries
}

func NewOccupancyHandler(cmds commands.OccupancyCommands, q queries.SlotQueries) *OccupancyHandler {
	return &OccupancyHandler{cmds: cmds, q: q}
}

// @Summary Get occupancy
// @Tags occupancy
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} resdto.OccupancyResponse
// @Failure 404 {object} httperr.Response
// @Router /slots/{id}/occupancy [get]
func (h *OccupancyHandler) GetOccupancy(c *gin.Context) {
	view, err := h.q.GetOccupancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.render(c, view)
}

// @Summary Report occupancy
// @Description Detection pipeline write-back of sensed occupancy
// @Tags occupancy
// @Accept json
// @Produce json
// @Security EdgeKey
// @Param id path string true "Slot ID"
// @Param request body reqdto.SetOccupancyRequest true "Sensed occupancy"
// @Success 200 {object} resdto.OccupancyResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /slots/{id}/occupancy [put]
func (h *OccupancyHandler) SetOccupancy(c *gin.Context) {
	var req reqdto.SetOccupancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "body")
		return
	}
	rec, err := h.cmds.SetOccupancy(c.Request.Context(), c.Param("id"), occupancy.Sensing{
		Occupied:    *req.Occupied,
		Confidence:  *req.Confidence,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.render(c, queries.ToOccupancyView(rec))
}

// @Summary Report prediction
// @Description Prediction service write-back of expected minutes until the slot frees up
// @Tags occupancy
// @Accept json
// @Produce json
// @Security EdgeKey
// @Param id path string true "Slot ID"
// @Param request body reqdto.SetPredictionRequest true "Prediction"
// @Success 200 {object} resdto.OccupancyResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /slots/{id}/prediction [put]
func (h *OccupancyHandler) SetPrediction(c *gin.Context) {
	var req reqdto.SetPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err, "body")
		return
	}
	rec, err := h.cmds.SetPrediction(c.Request.Context(), c.Param("id"), commands.SetPredictionInput{
		PredictedFreeMinutes: *req.PredictedFreeMinutes,
		Confidence:           *req.PredictionConfidence,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.render(c, queries.ToOccupancyView(rec))
}

func (h *OccupancyHandler) render(c *gin.Context, view *queries.OccupancyView) {
	resp, err := resdto.FromOccupancyView(view)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
