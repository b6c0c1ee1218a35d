// Package policy decides whether a caller may perform an operation.
//
// Routes declare a Policy once; the middleware evaluates it against the caller
// resolved from the bearer token and the kind of operation the HTTP method implies.
package policy

import (
	"net/http"

	"sweet-shop-api/internal/apperror"

	"github.com/google/uuid"
)

// Caller is the authenticated identity a request acts on behalf of.
type Caller struct {
	UserID   uuid.UUID
	Username string
	IsStaff  bool
}

type Operation int

const (
	Read Operation = iota
	Write
)

func (o Operation) String() string {
	if o == Read {
		return "read"
	}
	return "write"
}

// OperationFor maps an HTTP method to the capability it needs.
func OperationFor(method string) Operation {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	default:
		return Write
	}
}

// Policy returns nil to allow, an ErrUnauthenticated error when the caller is
// missing, or an ErrForbidden error when the caller lacks the role.
type Policy interface {
	Authorize(caller *Caller, op Operation) error
}

type Func func(caller *Caller, op Operation) error

func (f Func) Authorize(caller *Caller, op Operation) error { return f(caller, op) }

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgForbidden        = "You do not have permission to perform this action."
)

var (
	// AllowAny admits everyone, authenticated or not.
	AllowAny Policy = Func(func(*Caller, Operation) error { return nil })

	AuthenticatedOnly Policy = Func(func(c *Caller, _ Operation) error {
		if c == nil {
			return apperror.Unauthenticated(msgNotAuthenticated)
		}
		return nil
	})

	staff Policy = Func(func(c *Caller, _ Operation) error {
		if c == nil || !c.IsStaff {
			return apperror.Forbidden(msgForbidden)
		}
		return nil
	})

	readOrStaff Policy = Func(func(c *Caller, op Operation) error {
		if op == Read {
			return nil
		}
		return staff.Authorize(c, op)
	})

	// AdminOnly requires a staff caller for every operation.
	AdminOnly = All(AuthenticatedOnly, staff)

	// AdminOrReadOnly lets any authenticated caller read and only staff write.
	AdminOrReadOnly = All(AuthenticatedOnly, readOrStaff)
)

// All allows only if every policy allows; the first refusal wins.
func All(policies ...Policy) Policy {
	return Func(func(c *Caller, op Operation) error {
		for _, p := range policies {
			if err := p.Authorize(c, op); err != nil {
				return err
			}
		}
		return nil
	})
}
