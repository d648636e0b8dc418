package domain

// AccessLevelReadOnly is the only access level granted today; patients must
// verify a link before any wider access is considered.
const AccessLevelReadOnly = "read_only"

// Connection is one caregiver/patient link as seen from either side.
type Connection struct {
	FullName    string
	Email       string
	AccessLevel string
	IsVerified  bool
}
