package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QueryUserOptions struct {
	IDs       []bson.ObjectID
	UserNames []string
	Emails    []string
	// LoginName matches username or email, used by the credential service.
	LoginName string
	Result    []*User
}

type QueryRoleOptions struct {
	IDs    []bson.ObjectID
	Names  []string
	Result []*Role
}

type ListMemberOptions struct {
	Search   string
	Status   MemberStatus
	RoleID   bson.ObjectID
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int

	Result []*Member
	Total  int64
	Pages  int
}

type QueryMemberOptions struct {
	IDs    []bson.ObjectID
	Emails []string
	Result []*Member
}

type QueryAuditLogOptions struct {
	TimestampGTE int64
	TimestampLTE int64
	UserIDs      []bson.ObjectID
	DocumentIDs  []bson.ObjectID
	Actions      []AuditAction
	Limit        int
	Result       []*AuditLog
}

type UpdateMemberOptions struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	DateOfBirth *int64
	Gender      *string
	Status      *MemberStatus
	RoleID      *string
	Notes       *string
}

type UpdateUserOptions struct {
	RoleID   *string
	IsActive *bool
}

type UpdateRoleOptions struct {
	Name        *string
	Description *string
	Permissions *[]string
}

type RoleCount struct {
	RoleID   bson.ObjectID `bson:"_id" json:"roleID"`
	RoleName string        `bson:"-" json:"roleName"`
	Count    int64         `bson:"count" json:"count"`
}

type MonthlyCount struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

type DashboardStats struct {
	TotalMembers    int64                  `json:"totalMembers"`
	TotalUsers      int64                  `json:"totalUsers"`
	MembersByStatus map[MemberStatus]int64 `json:"membersByStatus"`
	MembersByRole   []RoleCount            `json:"membersByRole"`
}

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	QueryUsers(ctx context.Context, opt *QueryUserOptions) error
	CountUsers(ctx context.Context) (int64, error)

	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, roleID bson.ObjectID) error
	QueryRoles(ctx context.Context, opt *QueryRoleOptions) error

	CreateMember(ctx context.Context, member *Member) error
	UpdateMember(ctx context.Context, member *Member) error
	DeleteMember(ctx context.Context, memberID bson.ObjectID) error
	QueryMembers(ctx context.Context, opt *QueryMemberOptions) error
	ListMembers(ctx context.Context, opt *ListMemberOptions) error

	CreateAuditLog(ctx context.Context, log *AuditLog) error
	QueryAuditLogs(ctx context.Context, opt *QueryAuditLogOptions) error

	MemberCountsByStatus(ctx context.Context) (map[MemberStatus]int64, error)
	MemberCountsByRole(ctx context.Context) ([]RoleCount, error)
	MemberMonthlyGrowth(ctx context.Context, months int) ([]MonthlyCount, error)
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

type Service interface {
	Register(ctx context.Context, user *User) error
	Login(ctx context.Context, login, password string) (*User, string, error)
	VerifyJWTToken(ctx context.Context, tokenString string) (Claims, *User, error)
	RefreshToken(ctx context.Context, claims *Claims) (string, error)
	RoleName(ctx context.Context, roleID bson.ObjectID) (string, error)
	CreateAdminUserIfNotExists(ctx context.Context, username, email, password string) error

	QueryUsers(ctx context.Context, opt *QueryUserOptions) error
	UpdateUser(ctx context.Context, operator *Claims, userID string, opt UpdateUserOptions) (*User, map[string]any, error)

	CreateRole(ctx context.Context, operator *Claims, role *Role) error
	UpdateRole(ctx context.Context, operator *Claims, roleID string, opt UpdateRoleOptions) (*Role, map[string]any, error)
	DeleteRole(ctx context.Context, operator *Claims, roleID string) (*Role, error)
	QueryRoles(ctx context.Context, opt *QueryRoleOptions) error

	ListMembers(ctx context.Context, opt *ListMemberOptions) error
	GetMember(ctx context.Context, memberID string) (*Member, error)
	CreateMember(ctx context.Context, operator *Claims, member *Member) error
	UpdateMember(ctx context.Context, operator *Claims, memberID string, opt UpdateMemberOptions) (*Member, map[string]any, error)
	DeleteMember(ctx context.Context, operator *Claims, memberID string) (*Member, error)
	SetMemberPicture(ctx context.Context, operator *Claims, memberID, pictureRef string) (string, error)

	RecordActivity(ctx context.Context, log *AuditLog) error
	QueryAuditLogs(ctx context.Context, opt *QueryAuditLogOptions) error

	DashboardStats(ctx context.Context) (*DashboardStats, error)
	MemberGrowth(ctx context.Context) ([]MonthlyCount, error)
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}
