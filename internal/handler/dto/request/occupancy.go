package request

// Pointers so that "false" and "0" are distinguishable from missing fields.
type SetOccupancyRequest struct {
	Occupied    *bool    `json:"occupied" binding:"required"`
	Confidence  *float64 `json:"confidence" binding:"required"`
	VehicleType *string  `json:"vehicle_type,omitempty"`
}

type SetPredictionRequest struct {
	PredictedFreeMinutes *int     `json:"predicted_free_minutes" binding:"required"`
	PredictionConfidence *float64 `json:"prediction_confidence" binding:"required"`
}
