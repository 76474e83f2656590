package service

import (
	"fmt"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/store/model"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id any, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %v not found", resourceType, id)}
}

func NewErrJobNotFound(id int64) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

func NewErrTranslatorNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "translator")
}

// ErrNotEligible means the translator may not take the job. Retrying will not help.
type ErrNotEligible struct {
	error
}

func NewErrNotEligible(jobID int64, translatorID string, reason string) *ErrNotEligible {
	return &ErrNotEligible{fmt.Errorf("translator %s is not eligible for job %d: %s", translatorID, jobID, reason)}
}

// ErrAlreadyTaken means another translator won the job.
type ErrAlreadyTaken struct {
	error
}

func NewErrAlreadyTaken(jobID int64) *ErrAlreadyTaken {
	return &ErrAlreadyTaken{fmt.Errorf("job %d is no longer available", jobID)}
}

type ErrInvalidTransition struct {
	error
}

func NewErrInvalidTransition(jobID int64, from, to model.JobStatus) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("job %d cannot move from %s to %s", jobID, from, to)}
}

func NewErrTransitionConflict(jobID int64, to model.JobStatus) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("job %d kept changing while moving to %s", jobID, to)}
}

type ErrForbidden struct {
	error
}

func NewErrForbidden(user auth.User, operation string) *ErrForbidden {
	return &ErrForbidden{fmt.Errorf("%s %s is not allowed to %s", user.Role, user.ID, operation)}
}

type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(message string) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("bad request: %s", message)}
}
