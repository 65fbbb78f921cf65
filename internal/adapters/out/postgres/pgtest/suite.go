// Package pgtest starts a disposable PostgreSQL container for repository suites.
package pgtest

import (
	"context"
	"strings"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Suite migrates the given models once and truncates their tables before every test.
//
//	type OfferRepositorySuite struct {
//	    pgtest.Suite
//	}
//
//	func (s *OfferRepositorySuite) SetupSuite() {
//	    s.Models = postgres.Models()
//	    s.Suite.SetupSuite()
//	}
type Suite struct {
	suite.Suite

	Models []any
	DB     *gorm.DB

	container *postgres.PostgresContainer
}

func (s *Suite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	s.Require().NoError(err)
	s.DB = db

	s.Require().NoError(db.AutoMigrate(s.Models...))
}

func (s *Suite) SetupTest() {
	tables := make([]string, 0, len(s.Models))
	for _, m := range s.Models {
		stmt := &gorm.Statement{DB: s.DB}
		s.Require().NoError(stmt.Parse(m))
		tables = append(tables, stmt.Schema.Table)
	}
	if len(tables) == 0 {
		return
	}

	s.Require().NoError(s.DB.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ")).Error)
}

func (s *Suite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}
