package domain

import "time"

// LeaseTermYears is the fixed lease duration.
const LeaseTermYears = 1

// Lease binds one tenant to one property for a term.
type Lease struct {
	ID              int64     `json:"id"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Rent            float64   `json:"rent"`
	Deposit         float64   `json:"deposit"`
	PropertyID      int64     `json:"propertyId"`
	TenantCognitoID string    `json:"tenantCognitoId"`
	Tenant          *Tenant   `json:"tenant,omitempty"`
	Property        *Property `json:"property,omitempty"`
}

// NewLease prices a lease from the property's current rent and deposit,
// starting at now.
func NewLease(p *Property, tenantID string, now time.Time) *Lease {
	return &Lease{
		StartDate:       now,
		EndDate:         now.AddDate(LeaseTermYears, 0, 0),
		Rent:            p.PricePerMonth,
		Deposit:         p.SecurityDeposit,
		PropertyID:      p.ID,
		TenantCognitoID: tenantID,
	}
}

// LeaseFilter scopes lease listings. Empty fields are not applied.
type LeaseFilter struct {
	TenantID  string
	ManagerID string
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "Pending"
	PaymentPaid          PaymentStatus = "Paid"
	PaymentPartiallyPaid PaymentStatus = "PartiallyPaid"
	PaymentOverdue       PaymentStatus = "Overdue"
)

// Payment is one scheduled rent payment of a lease.
type Payment struct {
	ID            int64         `json:"id"`
	AmountDue     float64       `json:"amountDue"`
	AmountPaid    float64       `json:"amountPaid"`
	DueDate       time.Time     `json:"dueDate"`
	PaymentDate   *time.Time    `json:"paymentDate"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	LeaseID       int64         `json:"leaseId"`
}
