package database

type ChatRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	ListAccountsExcept(accountId int) ([]User, error)
	CreateFollow(accountId, targetId int) error
	DeleteFollow(accountId, targetId int) error
	ListFollowing(accountId int) ([]User, error)
	CreateMessage(params CreateMessageParams) (Message, error)
	ListMessagesBetween(accountA, accountB int) ([]Message, error)
	CreateStatus(params CreateStatusParams) (Status, error)
	GetStatusByExternalId(externalId string) (Status, error)
	ListActiveStatuses(accountId int) ([]Status, error)
	ListOwnStatuses(accountId int) ([]Status, error)
	MarkStatusSeen(statusId, accountId int, fullName string) error
	DeleteStatus(statusId, ownerId int) error
	DeleteExpiredStatuses() (int64, error)
	CreateGroup(params CreateGroupParams) (Group, error)
	ListGroupsForAccount(accountId int) ([]Group, error)
}
