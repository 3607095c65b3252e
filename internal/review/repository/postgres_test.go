//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codecollab/reviewd/internal/database/migrate"
	reviewModel "github.com/codecollab/reviewd/internal/review/model"
)

// PostgresRepositorySuite runs the review repository against a real
// PostgreSQL instance with the production migrations applied, covering the
// JSONB round-trips the sqlite tests cannot.
type PostgresRepositorySuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	db          *gorm.DB
	repo        Repository
}

func (s *PostgresRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:12-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(s.T(), err, "failed to start PostgreSQL container")
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "failed to connect to database")
	s.db = db

	s.T().Setenv("MIGRATIONS_PATH", "../../../migrations")
	require.NoError(s.T(), migrate.Migrate(db), "failed to apply migrations")

	s.repo = New(db)
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *PostgresRepositorySuite) SetupTest() {
	require.NoError(s.T(), s.db.Exec("TRUNCATE reviews").Error)
}

func (s *PostgresRepositorySuite) TestCreateAndGet() {
	review := &reviewModel.Review{
		ReviewID:    "1001",
		ChangeID:    "9001",
		Author:      "alice",
		State:       reviewModel.StateNeedsReview,
		Description: "fix the parser",
		HeadVersion: 3,
		Approvals:   map[string][]int{"bob": {2, 3}},
		Votes: map[string]reviewModel.Vote{
			"bob": {Value: 1, Version: 3},
		},
		Participants: map[string]reviewModel.ReviewerEntry{
			"bob": {Required: "true"},
		},
		Projects: map[string][]string{"proj-api": {"main"}},
	}

	_, err := s.repo.Create(s.ctx, review)
	s.Require().NoError(err)

	got, err := s.repo.GetByID(s.ctx, "1001")
	s.Require().NoError(err)
	s.Equal("alice", got.Author)
	s.Equal(reviewModel.StateNeedsReview, got.State)
	s.Equal([]int{2, 3}, got.Approvals["bob"])
	s.Equal(1, got.Votes["bob"].Value)
	s.Equal(reviewModel.Requirement("true"), got.Participants["bob"].Required)
	s.Equal([]string{"main"}, got.Projects["proj-api"])
}

func (s *PostgresRepositorySuite) TestGetMissing() {
	_, err := s.repo.GetByID(s.ctx, "9999")
	s.ErrorIs(err, reviewModel.ErrReviewNotFound)
}

func (s *PostgresRepositorySuite) TestSaveUpdatesAggregate() {
	review := &reviewModel.Review{
		ReviewID:    "1001",
		ChangeID:    "9001",
		Author:      "alice",
		State:       reviewModel.StateNeedsReview,
		HeadVersion: 3,
	}
	_, err := s.repo.Create(s.ctx, review)
	s.Require().NoError(err)

	review.State = reviewModel.StateApproved
	review.Approvals = map[string][]int{"carol": {3}}
	_, err = s.repo.Save(s.ctx, review)
	s.Require().NoError(err)

	got, err := s.repo.GetByID(s.ctx, "1001")
	s.Require().NoError(err)
	s.Equal(reviewModel.StateApproved, got.State)
	s.Equal([]int{3}, got.Approvals["carol"])
}

func (s *PostgresRepositorySuite) TestRevertStateKeepsVotes() {
	review := &reviewModel.Review{
		ReviewID:    "1001",
		ChangeID:    "9001",
		Author:      "alice",
		State:       reviewModel.StateApproved,
		HeadVersion: 3,
		Approvals:   map[string][]int{"bob": {3}},
		Votes: map[string]reviewModel.Vote{
			"bob": {Value: 1, Version: 3},
		},
	}
	_, err := s.repo.Create(s.ctx, review)
	s.Require().NoError(err)

	reverted, err := s.repo.RevertState(s.ctx, review, reviewModel.StateNeedsReview)
	s.Require().NoError(err)
	s.Equal(reviewModel.StateNeedsReview, reverted.State)

	got, err := s.repo.GetByID(s.ctx, "1001")
	s.Require().NoError(err)
	s.Equal(reviewModel.StateNeedsReview, got.State)
	s.Equal([]int{3}, got.Approvals["bob"])
	s.Equal(1, got.Votes["bob"].Value)
}

func (s *PostgresRepositorySuite) TestUpdateDescription() {
	review := &reviewModel.Review{
		ReviewID:    "1001",
		ChangeID:    "9001",
		Author:      "alice",
		State:       reviewModel.StateNeedsReview,
		Description: "old text",
		HeadVersion: 3,
	}
	_, err := s.repo.Create(s.ctx, review)
	s.Require().NoError(err)

	err = s.repo.UpdateDescription(s.ctx, review, "new text", "bob")
	s.Require().NoError(err)

	got, err := s.repo.GetByID(s.ctx, "1001")
	s.Require().NoError(err)
	s.Equal("new text", got.Description)
}

func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}
