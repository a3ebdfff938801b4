package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pigeon/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	st, err := New("sqlite3", ":memory:")
	require.NoError(t, err)
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)

	user := &models.User{Username: "alice", Password: "hash"}
	req.NoError(st.CreateUser(user))
	req.NotZero(user.ID)

	byName, err := st.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(user.ID, byName.ID)

	byID, err := st.GetUserByID(user.ID)
	req.NoError(err)
	req.Equal("alice", byID.Username)

	// Usernames are unique.
	req.Error(st.CreateUser(&models.User{Username: "alice", Password: "other"}))
}

func TestListUsers(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)

	req.NoError(st.CreateUser(&models.User{Username: "alice", Password: "h"}))
	req.NoError(st.CreateUser(&models.User{Username: "bob", Password: "h"}))

	users, err := st.ListUsers()
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("alice", users[0].Username)
	req.Equal("bob", users[1].Username)
}

func TestMessagesBetweenOrdered(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Interleaved directions, appended out of creation order.
	_, err := st.AppendMessage(1, 2, "second", "", base.Add(time.Second))
	req.NoError(err)
	_, err = st.AppendMessage(2, 1, "first", "", base)
	req.NoError(err)
	_, err = st.AppendMessage(1, 2, "third", "", base.Add(2*time.Second))
	req.NoError(err)
	// Unrelated pair stays out of the result.
	_, err = st.AppendMessage(1, 3, "elsewhere", "", base)
	req.NoError(err)

	messages, err := st.MessagesBetween(1, 2)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("first", messages[0].Text)
	req.Equal("second", messages[1].Text)
	req.Equal("third", messages[2].Text)

	// Both argument orders see the same history.
	reversed, err := st.MessagesBetween(2, 1)
	req.NoError(err)
	req.Equal(messages, reversed)
}

func TestMessagesTieBrokenByInsertOrder(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first, err := st.AppendMessage(1, 2, "a", "", at)
	req.NoError(err)
	second, err := st.AppendMessage(1, 2, "b", "", at)
	req.NoError(err)
	req.Greater(second, first)

	messages, err := st.MessagesBetween(1, 2)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("a", messages[0].Text)
	req.Equal("b", messages[1].Text)
}

func TestAppendFileMessage(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)

	id, err := st.AppendMessage(1, 2, "", "f47ac10b.png", time.Now())
	req.NoError(err)
	req.NotZero(id)

	messages, err := st.MessagesBetween(1, 2)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("f47ac10b.png", messages[0].File)
	req.Empty(messages[0].Text)
}
