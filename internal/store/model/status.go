package model

import (
	"database/sql/driver"
	"fmt"
)

type JobStatus string

const (
	JobStatusOpen           JobStatus = "open"
	JobStatusAssigned       JobStatus = "assigned"
	JobStatusInProgress     JobStatus = "in_progress"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusCancelled      JobStatus = "cancelled"
	JobStatusCustomerNoShow JobStatus = "customer_no_show"
	// JobStatusReopened is only ever read from legacy rows. It behaves like JobStatusOpen.
	JobStatusReopened JobStatus = "reopened"
)

var knownStatuses = map[JobStatus]struct{}{
	JobStatusOpen:           {},
	JobStatusAssigned:       {},
	JobStatusInProgress:     {},
	JobStatusCompleted:      {},
	JobStatusCancelled:      {},
	JobStatusCustomerNoShow: {},
	JobStatusReopened:       {},
}

// validTransitions maps from-state to allowed to-states
var validTransitions = map[JobStatus]map[JobStatus]bool{
	JobStatusOpen: {
		JobStatusAssigned:  true,
		JobStatusCancelled: true,
	},
	JobStatusReopened: {
		JobStatusAssigned:  true,
		JobStatusCancelled: true,
	},
	JobStatusAssigned: {
		JobStatusInProgress:     true,
		JobStatusCompleted:      true,
		JobStatusCancelled:      true,
		JobStatusCustomerNoShow: true,
	},
	JobStatusInProgress: {
		JobStatusCompleted:      true,
		JobStatusCancelled:      true,
		JobStatusCustomerNoShow: true,
	},
	JobStatusCancelled: {
		JobStatusOpen: true,
	},
	JobStatusCustomerNoShow: {
		JobStatusOpen: true,
	},
	JobStatusCompleted: {},
}

func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return status, nil
}

func (s JobStatus) IsValid() bool {
	_, ok := knownStatuses[s]
	return ok
}

func (s JobStatus) String() string {
	return string(s)
}

// IsOpen reports whether a job in this status can be accepted.
func (s JobStatus) IsOpen() bool {
	return s == JobStatusOpen || s == JobStatusReopened
}

// IsActive reports whether a translator holds the job.
func (s JobStatus) IsActive() bool {
	return s == JobStatusAssigned || s == JobStatusInProgress
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusCustomerNoShow
}

func CanTransition(from, to JobStatus) bool {
	return validTransitions[from][to]
}

func (s JobStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("refusing to store unknown job status %q", string(s))
	}
	return string(s), nil
}

func (s *JobStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into JobStatus", src)
	}
	status, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

func (s *JobStatus) UnmarshalText(text []byte) error {
	status, err := ParseJobStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}
