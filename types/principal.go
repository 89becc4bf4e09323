package types

// Principal is an authenticated caller: the verified user identity and
// role extracted from a bearer credential.
type Principal struct {
	UserID int
	Role   Role
}
