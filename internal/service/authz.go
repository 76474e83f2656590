package service

import (
	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/store/model"
)

// jobRule decides whether user may run an operation on job.
type jobRule func(user auth.User, job model.Job) bool

func isAdmin(user auth.User, _ model.Job) bool {
	return user.Role.IsAdmin()
}

func isOwningCustomer(user auth.User, job model.Job) bool {
	return user.Role == auth.RoleCustomer && job.CustomerID == user.ID
}

func isAssignedTranslator(user auth.User, job model.Job) bool {
	return user.Role == auth.RoleTranslator && job.IsAssignedTo(user.ID)
}

func isLastTranslator(user auth.User, job model.Job) bool {
	return user.Role == auth.RoleTranslator && job.LastTranslatorID != nil && *job.LastTranslatorID == user.ID
}

func isTranslatorOnOpenJob(user auth.User, job model.Job) bool {
	return user.Role == auth.RoleTranslator && job.Status.IsOpen()
}

func anyOf(rules ...jobRule) jobRule {
	return func(user auth.User, job model.Job) bool {
		for _, r := range rules {
			if r(user, job) {
				return true
			}
		}
		return false
	}
}

var (
	canViewJob      = anyOf(isAdmin, isOwningCustomer, isAssignedTranslator, isLastTranslator, isTranslatorOnOpenJob)
	canStartJob     = anyOf(isAdmin, isAssignedTranslator)
	canEndJob       = anyOf(isAdmin, isAssignedTranslator, isOwningCustomer)
	canCancelJob    = anyOf(isAdmin, isOwningCustomer, isAssignedTranslator)
	canReportNoShow = anyOf(isAdmin, isAssignedTranslator)
	canReopenJob    = anyOf(isAdmin, isOwningCustomer)
)

func requireAdmin(user auth.User, operation string) error {
	if !user.Role.IsAdmin() {
		return NewErrForbidden(user, operation)
	}
	return nil
}
