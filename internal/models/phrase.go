package models

import "time"

// Phrase is a single emoji phrase owned by a user.
type Phrase struct {
	ID        string    `json:"id"         bson:"_id"`
	UserID    string    `json:"userId"     bson:"user_id"`
	Emoji     string    `json:"emoji"      bson:"emoji"`
	Phrase    string    `json:"phrase"     bson:"phrase"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PhraseRequest is the JSON body for POST /api/v1/phrases.
type PhraseRequest struct {
	Emoji  string `json:"emoji"`
	Phrase string `json:"phrase"`
}
