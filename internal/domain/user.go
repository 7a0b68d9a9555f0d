package domain

// Role is the access-control role carried in the identity token.
type Role string

const (
	RoleTenant  Role = "tenant"
	RoleManager Role = "manager"
)

// Tenant is a renter, keyed by the identity provider subject.
type Tenant struct {
	CognitoID   string     `json:"cognitoId"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Favorites   []Property `json:"favorites,omitempty"`
}

// Manager owns and lists properties.
type Manager struct {
	CognitoID   string `json:"cognitoId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Profile is the writable part of a tenant or manager record.
type Profile struct {
	CognitoID   string `json:"cognitoId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Validate checks the fields every profile needs.
func (p Profile) Validate() error {
	if p.CognitoID == "" {
		return Invalid("cognitoId", "is required")
	}
	if p.Name == "" {
		return Invalid("name", "is required")
	}
	if p.Email == "" {
		return Invalid("email", "is required")
	}
	return nil
}

// Principal is the authenticated caller.
type Principal struct {
	ID   string
	Role Role
}

// Is reports whether the caller holds role r.
func (p Principal) Is(r Role) bool { return p.Role == r }
