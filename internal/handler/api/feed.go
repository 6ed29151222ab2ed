package api

import (
	"net/http"
	"strconv"

	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/usecase/queries"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// FeedHandler serves the read feeds consumed by analytics and the violation notifier.
type FeedHandler struct {
	events    queries.EventQueries
	overstays queries.OverstayQueries
}

func NewFeedHandler(events queries.EventQueries, overstays queries.OverstayQueries) *FeedHandler {
	return &FeedHandler{events: events, overstays: overstays}
}

// @Summary List events
// @Description Replay the event log in sequence order
// @Tags events
// @Produce json
// @Param after query int false "Return events with seq greater than this"
// @Param slot_id query string false "Filter by slot"
// @Param limit query int false "Max items (default 100, max 1000)"
// @Success 200 {object} resdto.EventPageResponse
// @Failure 400 {object} httperr.Response
// @Router /events [get]
func (h *FeedHandler) ListEvents(c *gin.Context) {
	var filter shared.EventFilter
	if v := c.Query("after"); v != "" {
		after, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			abortBadRequest(c, err, "after")
			return
		}
		filter.AfterSeq = after
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			abortBadRequest(c, err, "limit")
			return
		}
		filter.Limit = limit
	}
	if slotID := c.Query("slot_id"); slotID != "" {
		filter.SlotID = &slotID
	}

	page, err := h.events.ListEvents(c.Request.Context(), filter)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromEventPage(page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List overstays
// @Description Confirmed parking sessions running past the configured bound plus grace
// @Tags overstays
// @Produce json
// @Success 200 {array} resdto.OverstayResponse
// @Router /overstays [get]
func (h *FeedHandler) ListOverstays(c *gin.Context) {
	views, err := h.overstays.ListOverstays(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	resp, err := resdto.FromOverstayViews(views)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overstays": resp})
}
