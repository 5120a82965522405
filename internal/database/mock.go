package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) ListAccountsExcept(accountId int) ([]User, error) {
	args := m.Called(accountId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockChatRepository) CreateFollow(accountId, targetId int) error {
	args := m.Called(accountId, targetId)
	return args.Error(0)
}
func (m *MockChatRepository) DeleteFollow(accountId, targetId int) error {
	args := m.Called(accountId, targetId)
	return args.Error(0)
}
func (m *MockChatRepository) ListFollowing(accountId int) ([]User, error) {
	args := m.Called(accountId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) ListMessagesBetween(accountA, accountB int) ([]Message, error) {
	args := m.Called(accountA, accountB)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) CreateStatus(params CreateStatusParams) (Status, error) {
	args := m.Called(params)
	return args.Get(0).(Status), args.Error(1)
}
func (m *MockChatRepository) GetStatusByExternalId(externalId string) (Status, error) {
	args := m.Called(externalId)
	return args.Get(0).(Status), args.Error(1)
}
func (m *MockChatRepository) ListActiveStatuses(accountId int) ([]Status, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Status), args.Error(1)
}
func (m *MockChatRepository) ListOwnStatuses(accountId int) ([]Status, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Status), args.Error(1)
}
func (m *MockChatRepository) MarkStatusSeen(statusId, accountId int, fullName string) error {
	args := m.Called(statusId, accountId, fullName)
	return args.Error(0)
}
func (m *MockChatRepository) DeleteStatus(statusId, ownerId int) error {
	args := m.Called(statusId, ownerId)
	return args.Error(0)
}
func (m *MockChatRepository) DeleteExpiredStatuses() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) CreateGroup(params CreateGroupParams) (Group, error) {
	args := m.Called(params)
	return args.Get(0).(Group), args.Error(1)
}
func (m *MockChatRepository) ListGroupsForAccount(accountId int) ([]Group, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Group), args.Error(1)
}
