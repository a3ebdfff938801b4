package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pigeon/internal/middleware"
	"pigeon/internal/models"
	"pigeon/internal/store"
)

type MessageHandler struct {
	Store store.Store
}

// GetMessages returns the ordered history between the authenticated
// user and the user in the URL, ascending by creation time.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	otherID, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	messages, err := h.Store.MessagesBetween(claims.UserID, otherID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}

// GetPeople lists every known user as {_id, username}.
func (h *MessageHandler) GetPeople(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	json.NewEncoder(w).Encode(users)
}
