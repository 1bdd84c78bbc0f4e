// Package policy holds the access rules shared by the REST API and the
// server-rendered pages.
package policy

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Principal is the caller of a request as seen by the access rules.
type Principal struct {
	AccountID     uint
	Authenticated bool
	Staff         bool
}

// Anonymous is the principal of a request without credentials.
var Anonymous = Principal{}

// IsSafeMethod reports whether method never mutates state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminWritePublicRead lets anyone read and only staff write.
func AdminWritePublicRead(p Principal, method string) error {
	if IsSafeMethod(method) {
		return nil
	}
	if !p.Authenticated {
		return ErrUnauthenticated
	}
	if !p.Staff {
		return ErrForbidden
	}
	return nil
}

// OwnerOrAdmin allows staff and the owner of the resource. For account
// resources ownerID is the account's own id.
func OwnerOrAdmin(p Principal, ownerID uint) error {
	if !p.Authenticated {
		return ErrUnauthenticated
	}
	if p.Staff || p.AccountID == ownerID {
		return nil
	}
	return ErrForbidden
}

// StaffOnly allows staff accounts.
func StaffOnly(p Principal) error {
	if !p.Authenticated {
		return ErrUnauthenticated
	}
	if !p.Staff {
		return ErrForbidden
	}
	return nil
}

// AuthenticatedWrite is the page layer's rule for cancer type edits: any
// signed-in account may write. The API applies AdminWritePublicRead to the
// same resource.
func AuthenticatedWrite(p Principal) error {
	if !p.Authenticated {
		return ErrUnauthenticated
	}
	return nil
}
