package auth

import "errors"

// ErrForbidden indicates an authenticated user acting on a resource that is
// not theirs.
var ErrForbidden = errors.New("forbidden")

// EnsureCorrectUser checks that the username in the route matches the one the
// token was issued for.
func EnsureCorrectUser(routeUsername, tokenUsername string) error {
	if routeUsername != tokenUsername {
		return ErrForbidden
	}
	return nil
}

// EnsureMessageParty checks that the user is either the sender or the
// recipient of a message.
func EnsureMessageParty(fromUsername, toUsername, username string) error {
	if username != fromUsername && username != toUsername {
		return ErrForbidden
	}
	return nil
}

// EnsureRecipient checks that the user is the message's recipient. Only the
// recipient may mark a message read.
func EnsureRecipient(toUsername, username string) error {
	if username != toUsername {
		return ErrForbidden
	}
	return nil
}
