package ports

import (
	"context"

	"sameday/internal/core/domain/model/kernel"
)

// AssignmentScheduler asks for a dispatch attempt to run outside the current request.
type AssignmentScheduler interface {
	ScheduleAssignment(ctx context.Context, shipmentID kernel.UUID) error
}
