package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNotFoundNamesEntityAndKey(t *testing.T) {
	err := NewNotFoundByID("Technology", 42)

	assert.Equal(t, "Technology with ID 42 not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Technology", err.Entity)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))

	byName := NewNotFoundByName("Project", "Atlas")
	assert.Equal(t, "Project with name Atlas not found", byName.Error())
}

func TestAlreadyExists(t *testing.T) {
	err := NewAlreadyExists("Technology", "Rust")

	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "Technology with name Rust already exists")
}

func TestAuthErrorsUnwrapToBothSentinels(t *testing.T) {
	missing := NewMissingTokenError()
	assert.True(t, errors.Is(missing, ErrUnauthorized))
	assert.True(t, errors.Is(missing, ErrMissingToken))
	assert.Equal(t, http.StatusUnauthorized, missing.StatusCode)

	forbidden := NewInsufficientRoleError([]string{"admin"})
	assert.True(t, IsForbidden(forbidden))
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	assert.Contains(t, forbidden.Error(), "admin")
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		is     error
	}{
		{"translated duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict, ErrAlreadyExists},
		{"postgres duplicate text", errors.New(`ERROR: duplicate key value violates unique constraint "idx_projects_name"`), http.StatusConflict, ErrAlreadyExists},
		{"sqlite unique text", errors.New("UNIQUE constraint failed: technologies.name"), http.StatusConflict, ErrAlreadyExists},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest, ErrForeignKeyConstraint},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, ErrNotFound},
		{"connection", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"anything else", errors.New("syntax error at or near"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("create", "Technology", tt.cause)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestNewDatabaseErrorPassesApiErrThrough(t *testing.T) {
	original := NewNotFoundByID("Question", 3)
	assert.Same(t, original, NewDatabaseError("update", "Question", original))
}

func TestGetFullErrorIncludesCause(t *testing.T) {
	err := NewDatabaseError("list", "Project", errors.New("boom"))
	var apiErr *ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiErr.Error()+" -> boom", apiErr.GetFullError())
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
}
