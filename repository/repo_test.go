package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/membervault/api/config"
	"github.com/membervault/api/domain"
	"github.com/membervault/api/migration"
	"github.com/membervault/api/pkg/container"
	"github.com/membervault/api/pkg/logger"
	"github.com/membervault/api/pkg/util"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

type RepositoryTestSuite struct {
	suite.Suite
	ctx            context.Context
	repo           *repo
	containerBuild *container.ContainerBuilder
	mongoCfg       config.MongoDBConfig
}

func (suite *RepositoryTestSuite) SetupSuite() {
	logger.InitLogger("debug", true)
	suite.ctx = context.Background()

	builder, err := container.NewContainerBuilder("")
	suite.Require().NoError(err, "init container builder")
	suite.containerBuild = builder

	cfg, err := config.InitAppConfig("app_config.test", config.GetAbsPath("config"))
	suite.Require().NoError(err, "load test config")

	conn, err := container.RunMongoContainer(builder, "membervault_repo_test_mongo", container.MongoContainerConnection{
		Username: cfg.MongoDB.User,
		Password: string(cfg.MongoDB.Password),
		Database: cfg.MongoDB.Database,
		Port:     cfg.MongoDB.Port,
	})
	suite.Require().NoError(err, "start mongo container")

	cfg.MongoDB.Host = conn.Host
	cfg.MongoDB.Port = conn.Port
	cfg.MongoDB.User = conn.Username
	cfg.MongoDB.Password = config.SecretValue(conn.Password)
	cfg.MongoDB.Database = conn.Database
	suite.mongoCfg = cfg.MongoDB

	repoInst, err := NewRepository(Params{MongoConfig: cfg.MongoDB})
	suite.Require().NoError(err, "init repository")

	r, ok := repoInst.(*repo)
	suite.Require().True(ok, "repository type assertion")
	suite.repo = r
}

func (suite *RepositoryTestSuite) TearDownSuite() {
	if suite.containerBuild != nil {
		err := suite.containerBuild.PruneAll()
		suite.Require().NoError(err, "prune containers")
	}
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.Require().NotNil(suite.repo, "repository not initialized")
	err := util.MongoCleanup(suite.repo.client, suite.mongoCfg.Database)
	suite.Require().NoError(err, "cleanup database")
	// dropping the database also drops the indexes, so migrations run fresh
	// before every test
	err = migration.RunMongoMigration(suite.mongoCfg)
	suite.Require().NoError(err, "run migrations")
}

func newTestMember(i int) *domain.Member {
	return &domain.Member{
		FirstName: fmt.Sprintf("First%02d", i),
		LastName:  fmt.Sprintf("Last%02d", i),
		Email:     fmt.Sprintf("member%02d@test.local", i),
		Phone:     fmt.Sprintf("555-01%02d", i),
		Status:    domain.MemberStatusActive,
	}
}

func (suite *RepositoryTestSuite) TestCreateAndQueryMember() {
	member := newTestMember(1)
	err := suite.repo.CreateMember(suite.ctx, member)
	suite.Require().NoError(err, "create member")
	suite.NotZero(member.ID, "member id should be assigned")

	opts := &domain.QueryMemberOptions{IDs: []bson.ObjectID{member.ID}}
	err = suite.repo.QueryMembers(suite.ctx, opts)
	suite.Require().NoError(err, "query members")
	suite.Require().Len(opts.Result, 1, "expect one member")
	suite.Equal(member.Email, opts.Result[0].Email, "email should match")
	suite.Equal(domain.MemberStatusActive, opts.Result[0].Status, "status should match")
}

func (suite *RepositoryTestSuite) TestDuplicateMemberEmail() {
	member := newTestMember(2)
	err := suite.repo.CreateMember(suite.ctx, member)
	suite.Require().NoError(err, "create first member")

	dup := newTestMember(3)
	dup.Email = member.Email
	err = suite.repo.CreateMember(suite.ctx, dup)
	suite.Require().ErrorIs(err, domain.ErrDuplicateEmail, "second insert should hit the unique index")
}

func (suite *RepositoryTestSuite) TestUpdateMember() {
	member := newTestMember(4)
	err := suite.repo.CreateMember(suite.ctx, member)
	suite.Require().NoError(err, "create member")

	member.Status = domain.MemberStatusInactive
	member.Notes = "moved away"
	err = suite.repo.UpdateMember(suite.ctx, member)
	suite.Require().NoError(err, "update member")

	opts := &domain.QueryMemberOptions{IDs: []bson.ObjectID{member.ID}}
	err = suite.repo.QueryMembers(suite.ctx, opts)
	suite.Require().NoError(err, "query members by id")
	suite.Require().Len(opts.Result, 1, "expect one member after update")
	suite.Equal(domain.MemberStatusInactive, opts.Result[0].Status, "status should be updated")
	suite.Equal("moved away", opts.Result[0].Notes, "notes should be updated")
}

func (suite *RepositoryTestSuite) TestDeleteMember() {
	member := newTestMember(5)
	err := suite.repo.CreateMember(suite.ctx, member)
	suite.Require().NoError(err, "create member")

	err = suite.repo.DeleteMember(suite.ctx, member.ID)
	suite.Require().NoError(err, "delete member")

	opts := &domain.QueryMemberOptions{IDs: []bson.ObjectID{member.ID}}
	err = suite.repo.QueryMembers(suite.ctx, opts)
	suite.Require().NoError(err, "query deleted member")
	suite.Empty(opts.Result, "deleted member should be gone")

	err = suite.repo.DeleteMember(suite.ctx, member.ID)
	suite.Require().ErrorIs(err, domain.ErrNotFound, "deleting twice should report not found")
}

func (suite *RepositoryTestSuite) TestListMembersPagination() {
	for i := 0; i < 25; i++ {
		err := suite.repo.CreateMember(suite.ctx, newTestMember(i))
		suite.Require().NoError(err, "create member %d", i)
	}

	opts := &domain.ListMemberOptions{Page: 1, Limit: 10}
	err := suite.repo.ListMembers(suite.ctx, opts)
	suite.Require().NoError(err, "list first page")
	suite.Len(opts.Result, 10, "first page should be full")
	suite.Equal(int64(25), opts.Total, "total should count all members")
	suite.Equal(3, opts.Pages, "page count should round up")

	opts = &domain.ListMemberOptions{Page: 3, Limit: 10}
	err = suite.repo.ListMembers(suite.ctx, opts)
	suite.Require().NoError(err, "list last page")
	suite.Len(opts.Result, 5, "last page holds the remainder")
}

func (suite *RepositoryTestSuite) TestListMembersSearchAndFilter() {
	alice := newTestMember(30)
	alice.FirstName = "Alice"
	alice.Status = domain.MemberStatusPending
	err := suite.repo.CreateMember(suite.ctx, alice)
	suite.Require().NoError(err, "create alice")

	bob := newTestMember(31)
	bob.FirstName = "Bob"
	err = suite.repo.CreateMember(suite.ctx, bob)
	suite.Require().NoError(err, "create bob")

	opts := &domain.ListMemberOptions{Search: "alice"}
	err = suite.repo.ListMembers(suite.ctx, opts)
	suite.Require().NoError(err, "search members")
	suite.Require().Len(opts.Result, 1, "search should match case-insensitively")
	suite.Equal("Alice", opts.Result[0].FirstName, "search result should be alice")

	opts = &domain.ListMemberOptions{Status: domain.MemberStatusPending}
	err = suite.repo.ListMembers(suite.ctx, opts)
	suite.Require().NoError(err, "filter by status")
	suite.Require().Len(opts.Result, 1, "one pending member expected")
	suite.Equal(alice.Email, opts.Result[0].Email, "pending member should be alice")
}

func (suite *RepositoryTestSuite) TestSeededRoles() {
	opts := &domain.QueryRoleOptions{Names: []string{domain.AdminRole, domain.DefaultRole}}
	err := suite.repo.QueryRoles(suite.ctx, opts)
	suite.Require().NoError(err, "query seeded roles")
	suite.Len(opts.Result, 2, "migration should seed the built-in roles")
}

func (suite *RepositoryTestSuite) TestAuditLogInsertAndQuery() {
	userID := bson.NewObjectID()
	docID := bson.NewObjectID()
	now := time.Now().UnixMilli()

	logs := []*domain.AuditLog{
		{
			Action:     domain.AuditActionCreate,
			Collection: domain.AuditCollectionMember,
			DocumentID: docID,
			UserID:     userID,
			Changes:    map[string]any{"firstName": "Alice"},
			Timestamp:  now - 1000,
		},
		{
			Action:     domain.AuditActionUpdate,
			Collection: domain.AuditCollectionMember,
			DocumentID: docID,
			UserID:     userID,
			Timestamp:  now,
		},
	}
	for _, log := range logs {
		err := suite.repo.CreateAuditLog(suite.ctx, log)
		suite.Require().NoError(err, "insert audit log")
	}

	opts := &domain.QueryAuditLogOptions{DocumentIDs: []bson.ObjectID{docID}}
	err := suite.repo.QueryAuditLogs(suite.ctx, opts)
	suite.Require().NoError(err, "query audit logs")
	suite.Require().Len(opts.Result, 2, "both records expected")
	suite.Equal(domain.AuditActionUpdate, opts.Result[0].Action, "newest record first")

	opts = &domain.QueryAuditLogOptions{
		Actions: []domain.AuditAction{domain.AuditActionCreate},
	}
	err = suite.repo.QueryAuditLogs(suite.ctx, opts)
	suite.Require().NoError(err, "query by action")
	suite.Require().Len(opts.Result, 1, "one create record expected")
	suite.Equal("Alice", opts.Result[0].Changes["firstName"], "changes payload should round-trip")
}

func (suite *RepositoryTestSuite) TestDashboardAggregates() {
	for i := 0; i < 3; i++ {
		member := newTestMember(40 + i)
		if i == 0 {
			member.Status = domain.MemberStatusInactive
		}
		err := suite.repo.CreateMember(suite.ctx, member)
		suite.Require().NoError(err, "create member")
	}

	byStatus, err := suite.repo.MemberCountsByStatus(suite.ctx)
	suite.Require().NoError(err, "counts by status")
	suite.Equal(int64(2), byStatus[domain.MemberStatusActive], "two active members")
	suite.Equal(int64(1), byStatus[domain.MemberStatusInactive], "one inactive member")

	growth, err := suite.repo.MemberMonthlyGrowth(suite.ctx, 12)
	suite.Require().NoError(err, "monthly growth")
	suite.Require().Len(growth, 1, "all members created this month")
	suite.Equal(int64(3), growth[0].Count, "growth should count all three")
}

func (suite *RepositoryTestSuite) TestRecentActivityJoinsUserName() {
	user := &domain.User{
		UserName: "auditor",
		Email:    "auditor@test.local",
		Password: domain.EncryptedPassword("secret"),
		IsActive: true,
	}
	err := suite.repo.CreateUser(suite.ctx, user)
	suite.Require().NoError(err, "create user")

	log := &domain.AuditLog{
		Action:     domain.AuditActionDelete,
		Collection: domain.AuditCollectionMember,
		DocumentID: bson.NewObjectID(),
		UserID:     user.ID,
		Timestamp:  time.Now().UnixMilli(),
	}
	err = suite.repo.CreateAuditLog(suite.ctx, log)
	suite.Require().NoError(err, "insert audit log")

	entries, err := suite.repo.RecentActivity(suite.ctx, 10)
	suite.Require().NoError(err, "recent activity")
	suite.Require().Len(entries, 1, "one entry expected")
	suite.Equal("auditor", entries[0].UserName, "entry should carry the actor's username")
	suite.Equal(domain.AuditActionDelete, entries[0].Action, "action should match")
}
