// Package queue schedules dispatch attempts on an asynq queue backed by Redis.
package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue = "dispatch"

	TypeAssignShipment = "shipment:assign"
)

type AssignShipmentPayload struct {
	ShipmentID string `json:"shipment_id"`
}

func NewAssignShipmentTask(payload AssignShipmentPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAssignShipment, body), nil
}
