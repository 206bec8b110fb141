package models

import (
	"errors"
	"time"
)

// Status policies live here so call sites never compare status strings
// themselves. Project and lead policies are currently permissive: any valid
// status may follow any other.

var (
	ErrUnknownStatus           = errors.New("unknown status")
	ErrUnknownAssignmentAction = errors.New("unknown assignment action")
)

func ProjectStatusChangeAllowed(from ProjectStatus, to ProjectStatus) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	return nil
}

func LeadStatusChangeAllowed(from LeadStatus, to LeadStatus) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	return nil
}

// AssignmentStatusChangeAllowed covers admin edits, the only path that can
// set no_show.
func AssignmentStatusChangeAllowed(from AssignmentStatus, to AssignmentStatus) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	return nil
}

type AssignmentAction string

const (
	AssignmentActionCheckIn        AssignmentAction = "check_in"
	AssignmentActionCheckOut       AssignmentAction = "check_out"
	AssignmentActionToggleComplete AssignmentAction = "toggle_complete"
)

func (action AssignmentAction) Valid() bool {
	switch action {
	case AssignmentActionCheckIn, AssignmentActionCheckOut, AssignmentActionToggleComplete:
		return true
	default:
		return false
	}
}

// AssignmentTransition is the set of columns a worker action rewrites.
// Timestamps are only touched when the matching Set flag is true.
type AssignmentTransition struct {
	Status       AssignmentStatus
	SetCheckIn   bool
	CheckInTime  *time.Time
	SetCheckOut  bool
	CheckOutTime *time.Time
}

// NextAssignmentState resolves a worker action against the current status.
//
// Check-in/check-out and the complete toggle are two independent controls.
// Neither guards against the other: checking out before checking in is
// accepted, and check_out_time is never compared with check_in_time.
// Un-completing clears check_out_time and leaves check_in_time as it was.
func NextAssignmentState(current AssignmentStatus, action AssignmentAction, now time.Time) (AssignmentTransition, error) {
	stamp := now
	switch action {
	case AssignmentActionCheckIn:
		return AssignmentTransition{
			Status:      AssignmentStatusInProgress,
			SetCheckIn:  true,
			CheckInTime: &stamp,
		}, nil
	case AssignmentActionCheckOut:
		return AssignmentTransition{
			Status:       AssignmentStatusCompleted,
			SetCheckOut:  true,
			CheckOutTime: &stamp,
		}, nil
	case AssignmentActionToggleComplete:
		if current == AssignmentStatusCompleted {
			return AssignmentTransition{
				Status:      AssignmentStatusInProgress,
				SetCheckOut: true,
			}, nil
		}
		return AssignmentTransition{
			Status:       AssignmentStatusCompleted,
			SetCheckOut:  true,
			CheckOutTime: &stamp,
		}, nil
	default:
		return AssignmentTransition{}, ErrUnknownAssignmentAction
	}
}

func (transition AssignmentTransition) ApplyTo(assignment *Assignment) {
	assignment.Status = transition.Status
	if transition.SetCheckIn {
		assignment.CheckInTime = transition.CheckInTime
	}
	if transition.SetCheckOut {
		assignment.CheckOutTime = transition.CheckOutTime
	}
}

func (transition AssignmentTransition) Columns() map[string]any {
	columns := map[string]any{"status": transition.Status}
	if transition.SetCheckIn {
		columns["check_in_time"] = transition.CheckInTime
	}
	if transition.SetCheckOut {
		columns["check_out_time"] = transition.CheckOutTime
	}
	return columns
}
