package repositories

import (
	"context"
	"testing"
	"time"

	"companyhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OrphanRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrphanRepository
	context context.Context
}

func (suite *OrphanRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrphanRepo(mock)
	suite.context = context.Background()
}

func (suite *OrphanRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestOrphanRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrphanRepoTestSuite))
}

func (suite *OrphanRepoTestSuite) TestCreate() {
	orphan := &models.Orphan{
		ID:       uuid.New(),
		Kind:     models.OrphanIdentity,
		Ref:      uuid.New(),
		Reason:   "identity provider unreachable",
		Attempts: 1,
	}

	suite.mock.ExpectExec(`
		INSERT INTO provisioning_orphans \(id, kind, ref, reason, attempts, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, NOW\(\)\)
	`).WithArgs(orphan.ID, orphan.Kind, orphan.Ref, orphan.Reason, orphan.Attempts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, orphan)
	assert.NoError(suite.T(), err)
}

func (suite *OrphanRepoTestSuite) TestList_OldestFirst() {
	first := uuid.New()
	second := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "kind", "ref", "reason", "attempts", "created_at", "last_attempt_at"}).
		AddRow(first, models.OrphanIdentity, uuid.New(), "timeout", 2, now.Add(-time.Hour), nil).
		AddRow(second, models.OrphanTenant, uuid.New(), "timeout", 1, now, nil)

	suite.mock.ExpectQuery(`SELECT id, kind, ref, reason, attempts, created_at, last_attempt_at\s+FROM provisioning_orphans\s+ORDER BY created_at ASC\s+LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(rows)

	orphans, err := suite.repo.List(suite.context, 50)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orphans, 2)
	assert.Equal(suite.T(), first, orphans[0].ID)
	assert.Equal(suite.T(), models.OrphanTenant, orphans[1].Kind)
}

func (suite *OrphanRepoTestSuite) TestDelete() {
	id := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM provisioning_orphans WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, id)
	assert.NoError(suite.T(), err)
}

func (suite *OrphanRepoTestSuite) TestMarkAttempt() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE provisioning_orphans SET attempts = attempts \+ 1, last_attempt_at = NOW\(\) WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.MarkAttempt(suite.context, id)
	assert.NoError(suite.T(), err)
}
