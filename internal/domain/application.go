package domain

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the state of a rental application. Values outside
// the known set are stored verbatim.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusDenied   ApplicationStatus = "Denied"
)

// IsTerminal reports whether no further transition is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// Application is a tenant's request to rent a property.
type Application struct {
	ID              int64             `json:"id"`
	ApplicationDate time.Time         `json:"applicationDate"`
	Status          ApplicationStatus `json:"status"`
	PropertyID      int64             `json:"propertyId"`
	TenantCognitoID string            `json:"tenantCognitoId"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	PhoneNumber     string            `json:"phoneNumber"`
	Message         string            `json:"message"`
	LeaseID         *int64            `json:"leaseId"`
	Property        *Property         `json:"property,omitempty"`
	Tenant          *Tenant           `json:"tenant,omitempty"`
	Lease           *Lease            `json:"lease,omitempty"`
}

// ApplicationFilter restricts listings to one tenant or to the properties of
// one manager. The zero value matches every application.
type ApplicationFilter struct {
	TenantID  string
	ManagerID string
}

// ApplicationFilterFor scopes the listing query to the caller. userID and
// userType are optional, but when given they must name the caller.
func ApplicationFilterFor(caller Principal, userID, userType string) (ApplicationFilter, error) {
	if userID != "" && userID != caller.ID {
		return ApplicationFilter{}, fmt.Errorf("applications of %q: %w", userID, ErrForbidden)
	}
	if userType != "" && Role(strings.ToLower(userType)) != caller.Role {
		return ApplicationFilter{}, fmt.Errorf("applications as %q: %w", userType, ErrForbidden)
	}
	switch caller.Role {
	case RoleTenant:
		return ApplicationFilter{TenantID: caller.ID}, nil
	case RoleManager:
		return ApplicationFilter{ManagerID: caller.ID}, nil
	}
	return ApplicationFilter{}, fmt.Errorf("role %q: %w", caller.Role, ErrForbidden)
}

// PropertySummary is a property with its location address flattened.
type PropertySummary struct {
	Property
	Address string `json:"address"`
}

// LeaseSchedule is a lease plus its derived next due date.
type LeaseSchedule struct {
	Lease
	NextPaymentDate time.Time `json:"nextPaymentDate"`
}

// ApplicationView is the enriched listing row returned to dashboards.
type ApplicationView struct {
	Application
	Property *PropertySummary `json:"property"`
	Manager  *Manager         `json:"manager"`
	Lease    *LeaseSchedule   `json:"lease"`
}
