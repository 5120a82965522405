package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	FullName     string    `json:"full_name"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	ProfilePic   string    `json:"profile_pic,omitempty"`
	Following    []User    `json:"following,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// MediaType classifies an uploaded attachment.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaFile  MediaType = "file"
)

type MediaAttachment struct {
	Url  string    `json:"url"`
	Type MediaType `json:"type"`
}

type Message struct {
	Id         int              `json:"id"`
	SenderId   int              `json:"sender_id"`
	ReceiverId int              `json:"receiver_id"`
	Text       string           `json:"text,omitempty"`
	Media      *MediaAttachment `json:"media"`
	CreatedAt  time.Time        `json:"created_at"`
}

type StatusView struct {
	UserId   int       `json:"user_id"`
	FullName string    `json:"full_name"`
	SeenAt   time.Time `json:"seen_at"`
}

type Status struct {
	Id         int          `json:"id"`
	ExternalId string       `json:"external_id"`
	UserId     int          `json:"user_id"`
	FullName   string       `json:"full_name,omitempty"`
	MediaUrl   string       `json:"media_url"`
	MediaType  MediaType    `json:"media_type"`
	Caption    string       `json:"caption,omitempty"`
	SeenBy     []StatusView `json:"seen_by,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

type Group struct {
	Id         int       `json:"id"`
	ExternalId string    `json:"external_id"`
	Name       string    `json:"name"`
	OwnerId    int       `json:"owner_id"`
	Members    []User    `json:"members,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
