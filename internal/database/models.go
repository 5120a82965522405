package database

import "time"

type User struct {
	Id           int
	FullName     string
	EmailAddress string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	Id         int
	SenderId   int
	ReceiverId int
	Text       string
	MediaUrl   string
	MediaType  string
	CreatedAt  time.Time
}

type StatusView struct {
	AccountId int
	FullName  string
	SeenAt    time.Time
}

type Status struct {
	Id         int
	ExternalId string
	AccountId  int
	FullName   string
	MediaUrl   string
	MediaType  string
	Caption    string
	Views      []StatusView
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type Group struct {
	Id         int
	ExternalId string
	Name       string
	OwnerId    int
	Members    []User
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateAccountParams struct {
	FullName     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId       int
	FullName     string
	PasswordHash string
	ProfilePic   string
}

type CreateMessageParams struct {
	SenderId   int
	ReceiverId int
	Text       string
	MediaUrl   string
	MediaType  string
}

type CreateStatusParams struct {
	ExternalId string
	AccountId  int
	MediaUrl   string
	MediaType  string
	Caption    string
	ExpiresAt  time.Time
}

type CreateGroupParams struct {
	ExternalId string
	Name       string
	OwnerId    int
	MemberIds  []int
}
