package services

import (
	"math"

	"sameday/internal/core/domain/model/shipment"
)

const minutesPerDistanceUnit = 2.0

// EstimateDeliveryMinutes gives the expected travel time for a shipment.
// Urgent shipments are driven 30% faster and priority ones 15% faster.
func EstimateDeliveryMinutes(distance float64, priority shipment.Priority) int {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return 0
	}

	percent := 100.0
	switch priority {
	case shipment.PriorityUrgent:
		percent = 70
	case shipment.PriorityHigh:
		percent = 85
	case shipment.PriorityUnknown, shipment.PriorityStandard:
	}
	return int(distance * minutesPerDistanceUnit * percent / 100)
}
