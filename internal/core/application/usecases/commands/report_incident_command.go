package commands

import (
	"errors"
	"strings"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var (
	ErrReportIncidentCommandIsNotConstructed = errors.New(
		"ReportIncidentCommand must be created via NewReportIncidentCommand constructor",
	)
	ErrResolveIncidentCommandIsNotConstructed = errors.New(
		"ResolveIncidentCommand must be created via NewResolveIncidentCommand constructor",
	)
)

// ReportIncidentCommand opens an incident on a shipment. The incident id is
// generated here.
type ReportIncidentCommand struct {
	incidentID  kernel.UUID
	shipmentID  kernel.UUID
	kind        incident.Type
	description string

	guard guard.ConstructorGuard
}

// NewReportIncidentCommand creates the command and generates the incident id.
//
// Parameters:
//   - shipmentID: the shipment the incident happened to
//   - kind: one of the incident types
//   - description: free text, trimmed; must not be blank
//
// Returns:
//   - ReportIncidentCommand: the command, with IncidentID already set
//   - error: the joined validation errors
func NewReportIncidentCommand(
	shipmentID kernel.UUID,
	kind incident.Type,
	description string,
) (ReportIncidentCommand, error) {
	description = strings.TrimSpace(description)

	var descriptionErr error
	if description == "" {
		descriptionErr = incident.ErrDescriptionIsRequired
	}
	if err := errors.Join(shipmentID.Validate(), kind.Validate(), descriptionErr); err != nil {
		return ReportIncidentCommand{}, err
	}

	return ReportIncidentCommand{
		incidentID:  kernel.NewUUID(),
		shipmentID:  shipmentID,
		kind:        kind,
		description: description,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReportIncidentCommandIsNotConstructed if validation fails.
func (c ReportIncidentCommand) Validate() error {
	return c.guard.Validate(ErrReportIncidentCommandIsNotConstructed)
}

// IncidentID returns the id the incident will be stored under.
func (c ReportIncidentCommand) IncidentID() kernel.UUID {
	return c.incidentID
}

// ShipmentID returns the affected shipment.
func (c ReportIncidentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

// Type returns what happened.
func (c ReportIncidentCommand) Type() incident.Type {
	return c.kind
}

// Description returns the reporter's account.
func (c ReportIncidentCommand) Description() string {
	return c.description
}

// ResolveIncidentCommand closes an incident with the applied solution.
type ResolveIncidentCommand struct {
	incidentID kernel.UUID
	solution   string

	guard guard.ConstructorGuard
}

// NewResolveIncidentCommand creates the command. Returns
// incident.ErrSolutionIsRequired for a blank solution.
func NewResolveIncidentCommand(incidentID kernel.UUID, solution string) (ResolveIncidentCommand, error) {
	if err := incidentID.Validate(); err != nil {
		return ResolveIncidentCommand{}, err
	}
	solution = strings.TrimSpace(solution)
	if solution == "" {
		return ResolveIncidentCommand{}, incident.ErrSolutionIsRequired
	}

	return ResolveIncidentCommand{
		incidentID: incidentID,
		solution:   solution,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrResolveIncidentCommandIsNotConstructed if validation fails.
func (c ResolveIncidentCommand) Validate() error {
	return c.guard.Validate(ErrResolveIncidentCommandIsNotConstructed)
}

// IncidentID returns the incident to close.
func (c ResolveIncidentCommand) IncidentID() kernel.UUID {
	return c.incidentID
}

// Solution returns how the incident was handled.
func (c ResolveIncidentCommand) Solution() string {
	return c.solution
}
