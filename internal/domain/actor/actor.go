package actor

// Role is resolved by the gateway; this service only records and gates on it.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleApprover Role = "approver"
	RoleTreasury Role = "treasury"
	RoleFarmer   Role = "farmer"
	// RoleSystem marks actions taken by the service itself, e.g. the initial decision.
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleTreasury, RoleFarmer:
		return true
	}
	return false
}

type Actor struct {
	ID   string
	Role Role
}
