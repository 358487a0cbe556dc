package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureCorrectUser(t *testing.T) {
	t.Parallel()

	assert.NoError(t, EnsureCorrectUser("alice", "alice"))
	assert.ErrorIs(t, EnsureCorrectUser("alice", "bob"), ErrForbidden)
	assert.ErrorIs(t, EnsureCorrectUser("alice", ""), ErrForbidden)
}

func TestEnsureMessageParty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, EnsureMessageParty("alice", "bob", "alice"))
	assert.NoError(t, EnsureMessageParty("alice", "bob", "bob"))
	assert.ErrorIs(t, EnsureMessageParty("alice", "bob", "carol"), ErrForbidden)
}

func TestEnsureRecipient(t *testing.T) {
	t.Parallel()

	assert.NoError(t, EnsureRecipient("bob", "bob"))
	assert.ErrorIs(t, EnsureRecipient("bob", "alice"), ErrForbidden)
}
