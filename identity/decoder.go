package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims mirrors the raw JWT payload issued by the LMS API.
type tokenClaims struct {
	Role string `json:"role"`
	UID  *int64 `json:"uid"`
	SID  *int64 `json:"sid"`
	IID  *int64 `json:"iid"`
	jwt.RegisteredClaims
}

// Decode derives Claims from a bearer credential. It is pure and
// total: the same credential always produces the same result, and
// malformed input of any kind yields (nil, false) rather than an error
// or a partially populated Claims.
//
// The signature is intentionally not verified. The decoded claims only
// steer navigation in the portal; the LMS API re-validates the
// credential on every call it receives, so the server remains the
// actual trust boundary.
func Decode(credential string) (Claims, bool) {
	if credential == "" {
		return nil, false
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	raw := &tokenClaims{}
	if _, _, err := parser.ParseUnverified(credential, raw); err != nil {
		return nil, false
	}
	if raw.UID == nil {
		return nil, false
	}

	switch Role(raw.Role) {
	case RoleStudent:
		if raw.SID == nil {
			return nil, false
		}
		return Student{User: *raw.UID, StudentID: *raw.SID}, true
	case RoleInstructor:
		if raw.IID == nil {
			return nil, false
		}
		return Instructor{User: *raw.UID, InstructorID: *raw.IID}, true
	case RoleAdmin:
		return Admin{User: *raw.UID}, true
	}
	return nil, false
}
