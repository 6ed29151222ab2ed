//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/handler/api"
	resdto "parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/pkg/ptr"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"
	"parking-hold-engine/tests/common/builder"
	"parking-hold-engine/tests/common/httptest"
	"parking-hold-engine/tests/common/testutil"
	commandsmock "parking-hold-engine/tests/mock/commands"
	queriesmock "parking-hold-engine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SlotHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockSlotCmds  *commandsmock.MockSlotCommands
	mockOccCmds   *commandsmock.MockOccupancyCommands
	mockSlotQ     *queriesmock.MockSlotQueries
	mockAvailable *queriesmock.MockAvailabilityQueries
}

func (s *SlotHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockSlotCmds = commandsmock.NewMockSlotCommands(s.mockCtrl)
	s.mockOccCmds = commandsmock.NewMockOccupancyCommands(s.mockCtrl)
	s.mockSlotQ = queriesmock.NewMockSlotQueries(s.mockCtrl)
	s.mockAvailable = queriesmock.NewMockAvailabilityQueries(s.mockCtrl)

	slots := api.NewSlotHandler(s.mockSlotCmds, s.mockSlotQ, s.mockAvailable)
	occ := api.NewOccupancyHandler(s.mockOccCmds, s.mockSlotQ)

	s.router.POST("/slots", slots.CreateSlot)
	s.router.GET("/slots", slots.ListSlots)
	s.router.PATCH("/slots/:id", slots.UpdateSlot)
	s.router.GET("/slots/:id/availability", slots.GetAvailability)
	s.router.GET("/availability", slots.ListAvailability)
	s.router.PUT("/slots/:id/occupancy", occ.SetOccupancy)
	s.router.PUT("/slots/:id/prediction", occ.SetPrediction)
}

func (s *SlotHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSlotHandlerSuite(t *testing.T) {
	suite.Run(t, new(SlotHandlerTestSuite))
}

func (s *SlotHandlerTestSuite) TestCreateSlot() {
	reqBody := builder.NewSlotBuilder().BuildCreateRequestDTO()
	created, err := builder.NewSlotBuilder().BuildDomain()
	s.Require().NoError(err)

	s.Run("success: 201", func() {
		s.mockSlotCmds.EXPECT().CreateSlot(gomock.Any(), gomock.Any()).Return(created, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", reqBody, "")

		var body resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("slot_001", body.ID)
		s.Equal("zone_a", body.ZoneID)
	})

	s.Run("error: 400 on missing fields", func() {
		for _, field := range []string{"slot_id", "zone_id"} {
			body := testutil.DtoMap(s.T(), reqBody, testutil.Field(field, nil))
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", body, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		}
	})

	s.Run("error: 409 on duplicate id", func() {
		s.mockSlotCmds.EXPECT().CreateSlot(gomock.Any(), gomock.Any()).
			Return(nil, &errs.ConflictError{SlotID: "slot_001", Reason: errs.ConflictExists}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/slots", reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Slot already exists")
	})
}

func (s *SlotHandlerTestSuite) TestUpdateSlot() {
	s.Run("error: 400 on empty patch", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/slots/slot_001", map[string]any{}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("success: passes only the given fields", func() {
		updated, err := builder.NewSlotBuilder().WithZoneID("zone_b").BuildDomain()
		s.Require().NoError(err)
		s.mockSlotCmds.EXPECT().UpdateSlot(gomock.Any(), "slot_001", gomock.Any()).
			DoAndReturn(func(_ any, _ string, in commands.UpdateSlotInput) (*slot.Slot, error) {
				s.Require().NotNil(in.ZoneID)
				s.Equal("zone_b", *in.ZoneID)
				s.Nil(in.VehicleTypeHint)
				s.Empty(in.Polygon)
				return updated, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/slots/slot_001", map[string]any{"zone_id": "zone_b"}, "")

		var body resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("zone_b", body.ZoneID)
	})
}

func (s *SlotHandlerTestSuite) TestAvailability() {
	s.Run("single slot", func() {
		holdID := uuid.New()
		s.mockAvailable.EXPECT().GetSlotAvailability(gomock.Any(), "slot_001").Return(&queries.AvailabilityView{
			SlotID:           "slot_001",
			ZoneID:           "zone_a",
			ActiveHoldID:     &holdID,
			ActiveHoldStatus: ptr.Of("holding"),
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/slots/slot_001/availability", nil, "")

		var body resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.False(body.Available)
		s.Require().NotNil(body.ActiveHoldID)
		s.Equal(holdID, *body.ActiveHoldID)
	})

	s.Run("zone filter is forwarded", func() {
		s.mockAvailable.EXPECT().ListAvailability(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, zoneID *string) ([]*queries.AvailabilityView, error) {
				s.Require().NotNil(zoneID)
				s.Equal("zone_b", *zoneID)
				return []*queries.AvailabilityView{{SlotID: "slot_003", ZoneID: "zone_b", Available: true}}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/availability?zone_id=zone_b", nil, "")

		var body struct {
			Slots []resdto.AvailabilityResponse `json:"slots"`
		}
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Slots, 1)
		s.True(body.Slots[0].Available)
	})

	s.Run("no zone means all slots", func() {
		s.mockSlotQ.EXPECT().ListSlots(gomock.Any(), gomock.Nil()).Return([]*queries.SlotView{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/slots", nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *SlotHandlerTestSuite) TestOccupancy() {
	s.Run("success: false and zero are accepted values", func() {
		s.mockOccCmds.EXPECT().SetOccupancy(gomock.Any(), "slot_001", occupancy.Sensing{Occupied: false, Confidence: 0}).
			Return(&occupancy.Record{SlotID: "slot_001"}, nil).Times(1)

		body := map[string]any{"occupied": false, "confidence": 0}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/slots/slot_001/occupancy", body, "")

		var resp resdto.OccupancyResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal("slot_001", resp.SlotID)
	})

	s.Run("error: 400 on missing occupied", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/slots/slot_001/occupancy", map[string]any{"confidence": 0.9}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 400 from confidence validation", func() {
		s.mockOccCmds.EXPECT().SetOccupancy(gomock.Any(), "slot_001", gomock.Any()).
			Return(nil, errs.InvalidArgument("confidence", "must be within [0, 1]")).Times(1)

		body := map[string]any{"occupied": true, "confidence": 1.5}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/slots/slot_001/occupancy", body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")

		var detail resdto.InvalidArgumentDetail
		httptest.DecodeErrorDetail(s.T(), rec, &detail)
		s.Equal("confidence", detail.Field)
	})

	s.Run("prediction", func() {
		s.mockOccCmds.EXPECT().SetPrediction(gomock.Any(), "slot_001", commands.SetPredictionInput{PredictedFreeMinutes: 12, Confidence: 0.7}).
			Return(&occupancy.Record{SlotID: "slot_001", PredictedFreeMinutes: ptr.Of(12)}, nil).Times(1)

		body := map[string]any{"predicted_free_minutes": 12, "prediction_confidence": 0.7}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, "/slots/slot_001/prediction", body, "")

		var resp resdto.OccupancyResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Require().NotNil(resp.PredictedFreeMinutes)
		s.Equal(12, *resp.PredictedFreeMinutes)
	})
}
