package models

import "time"

type User struct {
	ID       int    `json:"_id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Message is a persisted message between two users. At least one of
// Text and File is set; File holds only the stored filename, the blob
// itself lives under the uploads directory.
//
// The wire spelling "recepient" is kept for client compatibility.
type Message struct {
	ID        int64     `json:"_id"`
	Sender    int       `json:"sender"`
	Recipient int       `json:"recepient"`
	Text      string    `json:"text"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Presence is one entry of the full online list pushed to every client.
type Presence struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}
