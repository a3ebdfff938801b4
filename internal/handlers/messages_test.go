package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"pigeon/internal/auth"
	"pigeon/internal/middleware"
	"pigeon/internal/models"
	"pigeon/internal/store/sqlstore"
)

func TestGetMessages(t *testing.T) {
	req := require.New(t)
	st, err := sqlstore.New("sqlite3", ":memory:")
	req.NoError(err)
	resolver := auth.NewResolver([]byte("test-secret"), time.Hour)

	alice := &models.User{Username: "alice", Password: "h"}
	bob := &models.User{Username: "bob", Password: "h"}
	req.NoError(st.CreateUser(alice))
	req.NoError(st.CreateUser(bob))

	now := time.Now()
	_, err = st.AppendMessage(alice.ID, bob.ID, "hi bob", "", now)
	req.NoError(err)
	_, err = st.AppendMessage(bob.ID, alice.ID, "hi alice", "", now.Add(time.Second))
	req.NoError(err)

	handler := &MessageHandler{Store: st}
	token, err := resolver.IssueToken(alice.ID, alice.Username)
	req.NoError(err)

	r, _ := http.NewRequest("GET", "/messages/2", nil)
	r = mux.SetURLVars(r, map[string]string{"userId": "2"})
	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})

	rr := httptest.NewRecorder()
	middleware.Auth(resolver, http.HandlerFunc(handler.GetMessages)).ServeHTTP(rr, r)
	req.Equal(http.StatusOK, rr.Code)

	var messages []models.Message
	req.NoError(json.NewDecoder(rr.Body).Decode(&messages))
	req.Len(messages, 2)
	req.Equal("hi bob", messages[0].Text)
	req.Equal("hi alice", messages[1].Text)
}

func TestGetMessagesUnauthorized(t *testing.T) {
	req := require.New(t)
	st, err := sqlstore.New("sqlite3", ":memory:")
	req.NoError(err)
	resolver := auth.NewResolver([]byte("test-secret"), time.Hour)

	handler := &MessageHandler{Store: st}
	r, _ := http.NewRequest("GET", "/messages/2", nil)
	rr := httptest.NewRecorder()
	middleware.Auth(resolver, http.HandlerFunc(handler.GetMessages)).ServeHTTP(rr, r)
	req.Equal(http.StatusUnauthorized, rr.Code)
}

func TestGetPeople(t *testing.T) {
	req := require.New(t)
	st, err := sqlstore.New("sqlite3", ":memory:")
	req.NoError(err)

	req.NoError(st.CreateUser(&models.User{Username: "alice", Password: "h"}))
	req.NoError(st.CreateUser(&models.User{Username: "bob", Password: "h"}))

	handler := &MessageHandler{Store: st}
	r, _ := http.NewRequest("GET", "/people", nil)
	rr := httptest.NewRecorder()
	handler.GetPeople(rr, r)
	req.Equal(http.StatusOK, rr.Code)

	var people []map[string]interface{}
	req.NoError(json.NewDecoder(rr.Body).Decode(&people))
	req.Len(people, 2)
	req.Equal("alice", people[0]["username"])
	req.NotNil(people[0]["_id"])
}
