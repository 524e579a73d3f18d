package services

import (
	portsrepo "github.com/SscSPs/cashbook_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/platform/breaker"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, dbBreaker *breaker.Breaker, opts ...ServiceOption) *portssvc.ServiceContainer {
	// The authorizer is shared: every other service checks permissions through it
	authorizer := NewCashbookAuthorizer(repos, opts...)

	return &portssvc.ServiceContainer{
		Authorizer:     authorizer,
		Entry:          NewEntryService(repos, authorizer, opts...),
		DeleteRequest:  NewDeleteRequestService(repos, authorizer, opts...),
		Reconciliation: NewReconciliationService(repos, authorizer, dbBreaker, opts...),
		Report:         NewReportService(repos, authorizer, dbBreaker, opts...),
	}
}
