package roles

// Role names as they appear on the user record.
const (
	Employee   = "Employee"
	Admin      = "Admin"
	SuperAdmin = "SuperAdmin"
)

// The single source of truth for the hierarchy. Both the minimum-tier and
// the allow-set checks compile from this table.
var tiers = map[string]int{
	Employee:   1,
	Admin:      2,
	SuperAdmin: 3,
}

// Tier returns the permission tier of a role. Unknown roles map to 0 and
// never pass an elevated check.
func Tier(role string) int {
	return tiers[role]
}

func Known(role string) bool {
	_, ok := tiers[role]
	return ok
}

// Requirement is either a minimum tier or an explicit allow-set.
type Requirement struct {
	minTier int
	allowed map[string]struct{}
}

// MinRole requires at least the tier of the given role.
func MinRole(role string) Requirement {
	return Requirement{minTier: Tier(role)}
}

// AnyOf requires the caller's role to be one of the listed roles exactly.
func AnyOf(names ...string) Requirement {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	return Requirement{allowed: allowed}
}

func (r Requirement) Allows(role string) bool {
	if r.allowed != nil {
		_, ok := r.allowed[role]
		return ok
	}
	return Tier(role) >= r.minTier
}

// CanGrant reports whether a caller may assign the target role to another
// account. SuperAdmin may grant anything, Admin may grant Employee or Admin,
// nobody else grants roles. Unknown target roles are never grantable.
func CanGrant(caller, target string) bool {
	ct, tt := Tier(caller), Tier(target)
	if tt == 0 {
		return false
	}
	return ct >= Tier(Admin) && ct >= tt
}
