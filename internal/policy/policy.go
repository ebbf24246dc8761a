// Package policy decides whether a principal may act on a user-owned resource.
package policy

import "schedulerapi/internal/domain"

// CanAccess reports whether p is an admin or owns the resource.
// An anonymous principal never owns anything.
func CanAccess(p domain.Principal, ownerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.ID != "" && p.ID == ownerID
}

// Authorize is CanAccess expressed as an error.
func Authorize(p domain.Principal, ownerID string) error {
	if !CanAccess(p, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}
