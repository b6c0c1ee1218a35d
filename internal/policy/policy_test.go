package policy

import (
	"net/http"
	"testing"

	"sweet-shop-api/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOperationFor(t *testing.T) {
	assert.Equal(t, Read, OperationFor(http.MethodGet))
	assert.Equal(t, Read, OperationFor(http.MethodHead))
	assert.Equal(t, Read, OperationFor(http.MethodOptions))
	assert.Equal(t, Write, OperationFor(http.MethodPost))
	assert.Equal(t, Write, OperationFor(http.MethodPut))
	assert.Equal(t, Write, OperationFor(http.MethodPatch))
	assert.Equal(t, Write, OperationFor(http.MethodDelete))
}

func TestPolicies(t *testing.T) {
	user := &Caller{UserID: uuid.New(), Username: "testuser"}
	admin := &Caller{UserID: uuid.New(), Username: "admin", IsStaff: true}

	tests := []struct {
		name   string
		policy Policy
		caller *Caller
		op     Operation
		want   error
	}{
		{"any anonymous read", AllowAny, nil, Read, nil},
		{"any anonymous write", AllowAny, nil, Write, nil},

		{"authenticated anonymous", AuthenticatedOnly, nil, Write, apperror.ErrUnauthenticated},
		{"authenticated user write", AuthenticatedOnly, user, Write, nil},

		{"read-only anonymous read", AdminOrReadOnly, nil, Read, apperror.ErrUnauthenticated},
		{"read-only user read", AdminOrReadOnly, user, Read, nil},
		{"read-only user write", AdminOrReadOnly, user, Write, apperror.ErrForbidden},
		{"read-only admin write", AdminOrReadOnly, admin, Write, nil},

		{"admin anonymous", AdminOnly, nil, Write, apperror.ErrUnauthenticated},
		{"admin user read", AdminOnly, user, Read, apperror.ErrForbidden},
		{"admin user write", AdminOnly, user, Write, apperror.ErrForbidden},
		{"admin admin write", AdminOnly, admin, Write, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Authorize(tt.caller, tt.op)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAll_FirstRefusalWins(t *testing.T) {
	deny := Func(func(*Caller, Operation) error { return apperror.Forbidden("first") })
	never := Func(func(*Caller, Operation) error {
		t.Fatal("evaluated after refusal")
		return nil
	})

	err := All(AllowAny, deny, never).Authorize(nil, Read)
	assert.EqualError(t, err, "first")
}
