//go:build e2e

package hold_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"parking-hold-engine/internal/handler/dto/response"
	"parking-hold-engine/internal/handler/middleware"
	"parking-hold-engine/tests/common/authtest"
	"parking-hold-engine/tests/common/builder"
	"parking-hold-engine/tests/common/dbtest"
	"parking-hold-engine/tests/common/httptest"
	"parking-hold-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	holdsURL        = "/api/holds"
	holdURL         = "/api/holds/%s"
	holdActionURL   = "/api/holds/%s/%s"
	availabilityURL = "/api/slots/%s/availability"
	occupancyURL    = "/api/slots/%s/occupancy"
	eventsURL       = "/api/events?slot_id=%s"
)

type HoldSuite struct {
	e2e.SharedSuite
}

func (s *HoldSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestHoldSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(HoldSuite))
}

func (s *HoldSuite) placeHold(t *testing.T, slotID string, minutes int) response.HoldResponse {
	t.Helper()
	reqBody := builder.NewHoldBuilder().WithSlotID(slotID).WithMinutes(minutes).BuildPlaceRequestDTO()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created response.HoldResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
	return created
}

func (s *HoldSuite) eventTypes(t *testing.T, slotID string) []string {
	t.Helper()
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(eventsURL, slotID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page response.EventPageResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &page))
	types := make([]string, 0, len(page.Events))
	for _, e := range page.Events {
		types = append(types, e.Type)
	}
	return types
}

// =============================================================================
// TestHoldLifecycle - place, confirm, release over HTTP against PostgreSQL
// =============================================================================

func (s *HoldSuite) TestHoldLifecycle() {
	s.Run("Normal case: hold is placed, confirmed and released", func() {
		t := s.T()

		created := s.placeHold(t, "slot_001", 2)
		require.Equal(t, "holding", created.Status)
		require.WithinDuration(t, time.Now().Add(2*time.Minute), created.HoldUntil, 10*time.Second)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(availabilityURL, "slot_001"), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var avail response.AvailabilityResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &avail))
		require.False(t, avail.Available)
		require.NotNil(t, avail.ActiveHoldID)
		require.Equal(t, created.ID, *avail.ActiveHoldID)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(holdActionURL, created.ID, "confirm"), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var confirmed response.HoldResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &confirmed))
		require.Equal(t, "confirmed", confirmed.Status)
		require.NotNil(t, confirmed.ConfirmedAt)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(holdActionURL, created.ID, "release"), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// The slot is free again
		again := s.placeHold(t, "slot_001", 1)
		require.NotEqual(t, created.ID, again.ID)

		want := []string{"hold_created", "hold_confirmed", "hold_released", "hold_created"}
		if diff := cmp.Diff(want, s.eventTypes(t, "slot_001")); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Normal case: bearer token user is recorded on the hold", func() {
		t := s.T()

		userID := uuid.New()
		token := authtest.NewJWTHelper(e2e.TestJWTSecret).GenerateToken(t, userID)
		reqBody := builder.NewHoldBuilder().WithSlotID("slot_002").BuildPlaceRequestDTO()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created response.HoldResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
		require.NotNil(t, created.UserID)
		require.Equal(t, userID, *created.UserID)
	})
}

// =============================================================================
// TestPlaceHoldConflicts - gates on an already held, occupied or reserved slot
// =============================================================================

func (s *HoldSuite) TestPlaceHoldConflicts() {
	s.Run("Error case: second hold names the first", func() {
		t := s.T()

		first := s.placeHold(t, "slot_001", 5)

		reqBody := builder.NewHoldBuilder().WithSlotID("slot_001").BuildPlaceRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "already held")

		var detail response.ConflictDetail
		httptest.DecodeErrorDetail(t, w, &detail)
		require.NotNil(t, detail.BlockingHoldID)
		require.Equal(t, first.ID, *detail.BlockingHoldID)
		require.NotNil(t, detail.Until)
		require.True(t, first.HoldUntil.Equal(*detail.Until))
	})

	s.Run("Error case: occupied slot with confident detection", func() {
		t := s.T()

		body := map[string]any{"occupied": true, "confidence": 0.9}
		headers := map[string]string{middleware.EdgeKeyHeader: e2e.TestEdgeKey}
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPut, fmt.Sprintf(occupancyURL, "slot_002"), body, headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		reqBody := builder.NewHoldBuilder().WithSlotID("slot_002").BuildPlaceRequestDTO()
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "occupied")
	})

	s.Run("Normal case: low confidence detection does not block", func() {
		t := s.T()

		dbtest.SetTestOccupancy(t, s.DB, "slot_002", true, 0.3)
		s.placeHold(t, "slot_002", 2)
	})

	s.Run("Error case: occupancy writes require the edge key", func() {
		t := s.T()

		body := map[string]any{"occupied": true, "confidence": 0.9}
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, fmt.Sprintf(occupancyURL, "slot_002"), body, "")
		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "edge key")
	})

	s.Run("Error case: hold minutes out of range and unknown slot", func() {
		t := s.T()

		for _, minutes := range []int{0, 61} {
			reqBody := builder.NewHoldBuilder().WithMinutes(minutes).BuildPlaceRequestDTO()
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
			httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid request")
		}

		reqBody := builder.NewHoldBuilder().WithSlotID("slot_999").BuildPlaceRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Not found")
	})
}

// =============================================================================
// TestLazyExpiry - stale holds stop blocking without a sweeper
// =============================================================================

func (s *HoldSuite) TestLazyExpiry() {
	s.Run("Normal case: stale hold is expired on the next placeHold", func() {
		t := s.T()

		staleID := dbtest.CreateTestHold(t, s.DB, "slot_001", "holding", time.Now().Add(-time.Minute))

		created := s.placeHold(t, "slot_001", 2)
		require.NotEqual(t, staleID, created.ID)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(holdURL, staleID), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var stale response.HoldResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &stale))
		require.Equal(t, "expired", stale.Status)
		require.Equal(t, 1, dbtest.CountEvents(t, s.DB, "slot_001", "hold_expired"))
	})

	s.Run("Error case: confirming a stale hold fails and records the expiry", func() {
		t := s.T()

		staleID := dbtest.CreateTestHold(t, s.DB, "slot_003", "holding", time.Now().Add(-time.Second))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(holdActionURL, staleID, "confirm"), nil, "")
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "not in a state")
		require.Equal(t, 1, dbtest.CountEvents(t, s.DB, "slot_003", "hold_expired"))
	})
}

// =============================================================================
// TestConcurrentPlaceHold - exactly one winner per slot
// =============================================================================

func (s *HoldSuite) TestConcurrentPlaceHold() {
	s.Run("Normal case: one of many concurrent holds wins", func() {
		t := s.T()

		const workers = 16
		codes := make([]int, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				reqBody := builder.NewHoldBuilder().WithSlotID("slot_001").BuildPlaceRequestDTO()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdsURL, reqBody, "")
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		created, conflicts := 0, 0
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			}
		}
		require.Equal(t, 1, created)
		require.Equal(t, workers-1, conflicts)
		require.Equal(t, 1, dbtest.CountEvents(t, s.DB, "slot_001", "hold_created"))
	})
}
