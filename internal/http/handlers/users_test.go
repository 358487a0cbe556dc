package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely-be/internal/models/dto"
)

func TestListUsersRequiresToken(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestListUsersReturnsSummaries(t *testing.T) {
	ts, _, _ := newTestServer(t)

	token := registerUser(t, ts.URL, "alice", "pw1")
	registerUser(t, ts.URL, "bob", "pw2")

	resp := doJSON(t, http.MethodGet, ts.URL+"/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[dto.UsersResponse](t, resp)
	require.Len(t, body.Users, 2)
	for _, u := range body.Users {
		assert.NotEmpty(t, u.Username)
		assert.NotEmpty(t, u.FirstName)
		assert.NotEmpty(t, u.Phone)
	}
}

func TestGetUserRequiresMatchingToken(t *testing.T) {
	ts, _, _ := newTestServer(t)

	aliceToken := registerUser(t, ts.URL, "alice", "pw1")
	registerUser(t, ts.URL, "bob", "pw2")

	// Own profile works.
	ok := doJSON(t, http.MethodGet, ts.URL+"/users/alice", aliceToken, nil)
	require.Equal(t, http.StatusOK, ok.StatusCode)
	body := decodeBody[dto.UserResponse](t, ok)
	assert.Equal(t, "alice", body.User.Username)
	assert.False(t, body.User.JoinAt.IsZero())

	// Someone else's profile is forbidden even with a valid token.
	forbidden := doJSON(t, http.MethodGet, ts.URL+"/users/bob", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	forbidden.Body.Close()
}

func TestMessageProjections(t *testing.T) {
	ts, _, _ := newTestServer(t)

	aliceToken := registerUser(t, ts.URL, "alice", "pw1")
	bobToken := registerUser(t, ts.URL, "bob", "pw2")

	send := doJSON(t, http.MethodPost, ts.URL+"/messages", aliceToken, dto.SendMessageRequest{
		ToUsername: "bob",
		Body:       "hi",
	})
	require.Equal(t, http.StatusCreated, send.StatusCode)
	send.Body.Close()

	// Outbound projection embeds the recipient summary.
	fromResp := doJSON(t, http.MethodGet, ts.URL+"/users/alice/from", aliceToken, nil)
	require.Equal(t, http.StatusOK, fromResp.StatusCode)
	outbound := decodeBody[dto.OutboundMessagesResponse](t, fromResp)
	require.Len(t, outbound.Messages, 1)
	assert.Equal(t, "bob", outbound.Messages[0].ToUser.Username)
	assert.Equal(t, "hi", outbound.Messages[0].Body)
	assert.Nil(t, outbound.Messages[0].ReadAt)

	// Inbound projection embeds the sender summary.
	toResp := doJSON(t, http.MethodGet, ts.URL+"/users/bob/to", bobToken, nil)
	require.Equal(t, http.StatusOK, toResp.StatusCode)
	inbound := decodeBody[dto.InboundMessagesResponse](t, toResp)
	require.Len(t, inbound.Messages, 1)
	assert.Equal(t, "alice", inbound.Messages[0].FromUser.Username)
	assert.Equal(t, outbound.Messages[0].ID, inbound.Messages[0].ID)

	// A token for another user cannot read either projection.
	denied := doJSON(t, http.MethodGet, ts.URL+"/users/bob/to", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, denied.StatusCode)
	denied.Body.Close()

	denied = doJSON(t, http.MethodGet, ts.URL+"/users/alice/from", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, denied.StatusCode)
	denied.Body.Close()
}

func TestEmptyProjectionsAreArrays(t *testing.T) {
	ts, _, _ := newTestServer(t)

	token := registerUser(t, ts.URL, "alice", "pw1")

	resp := doJSON(t, http.MethodGet, ts.URL+"/users/alice/to", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[dto.InboundMessagesResponse](t, resp)
	assert.NotNil(t, body.Messages)
	assert.Empty(t, body.Messages)
}
