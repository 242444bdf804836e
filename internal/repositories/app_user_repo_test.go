package repositories

import (
	"context"
	"testing"
	"time"

	"companyhub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AppUserRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        AppUserRepository
	tenantID    uuid.UUID
	identityRef uuid.UUID
	context     context.Context
}

func (suite *AppUserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAppUserRepo(mock)
	suite.tenantID = uuid.New()
	suite.identityRef = uuid.New()
	suite.context = context.Background()
}

func (suite *AppUserRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestAppUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AppUserRepoTestSuite))
}

func (suite *AppUserRepoTestSuite) sampleUser() *models.AppUser {
	return &models.AppUser{
		ID:          uuid.New(),
		TenantID:    suite.tenantID,
		IdentityRef: suite.identityRef,
		Email:       "vanessa@vasbel.co",
		UserName:    "vanessa.b",
		Name:        "Vanessa Bel",
		Role:        models.RoleOwner,
		Active:      true,
	}
}

func (suite *AppUserRepoTestSuite) TestCreate_Success() {
	user := suite.sampleUser()

	suite.mock.ExpectExec(`
		INSERT INTO app_users \(id, tenant_id, identity_ref, email, user_name, name, phone, role, active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, NOW\(\), NOW\(\)\)
	`).WithArgs(user.ID, user.TenantID, user.IdentityRef, user.Email, user.UserName,
		user.Name, user.Phone, user.Role, user.Active).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, user)
	assert.NoError(suite.T(), err)
}

func (suite *AppUserRepoTestSuite) TestCreate_DuplicateUsername() {
	user := suite.sampleUser()

	suite.mock.ExpectExec(`INSERT INTO app_users`).
		WithArgs(user.ID, user.TenantID, user.IdentityRef, user.Email, user.UserName,
			user.Name, user.Phone, user.Role, user.Active).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "app_users_user_name_key"})

	err := suite.repo.Create(suite.context, user)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), IsUniqueViolation(err))
}

func (suite *AppUserRepoTestSuite) TestGetByIdentityRef_Success() {
	user := suite.sampleUser()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "identity_ref", "email", "user_name", "name", "phone", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow(user.ID, user.TenantID, user.IdentityRef, user.Email, user.UserName,
			user.Name, user.Phone, user.Role, user.Active, nil, now, now)

	suite.mock.ExpectQuery(`SELECT id, tenant_id, identity_ref, email, user_name, name, phone, role, active, last_login, created_at, updated_at\s+FROM app_users\s+WHERE identity_ref = \$1`).
		WithArgs(suite.identityRef).
		WillReturnRows(rows)

	got, err := suite.repo.GetByIdentityRef(suite.context, suite.identityRef)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
	assert.Equal(suite.T(), models.RoleOwner, got.Role)
	assert.Nil(suite.T(), got.LastLogin)
}

func (suite *AppUserRepoTestSuite) TestGetByIdentityRef_NotFound() {
	suite.mock.ExpectQuery(`SELECT id, tenant_id, identity_ref, email, user_name, name, phone, role, active, last_login, created_at, updated_at\s+FROM app_users\s+WHERE identity_ref = \$1`).
		WithArgs(suite.identityRef).
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByIdentityRef(suite.context, suite.identityRef)
	assert.Nil(suite.T(), got)
	assert.True(suite.T(), IsNotFound(err))
}

func (suite *AppUserRepoTestSuite) TestUsernameExists() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM app_users WHERE user_name = \$1`).
		WithArgs("vanessa.b").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := suite.repo.UsernameExists(suite.context, "vanessa.b")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *AppUserRepoTestSuite) TestEmailExistsInTenant() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM app_users WHERE tenant_id = \$1 AND email = \$2`).
		WithArgs(suite.tenantID, "vanessa@vasbel.co").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := suite.repo.EmailExistsInTenant(suite.context, suite.tenantID, "vanessa@vasbel.co")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), exists)
}

func (suite *AppUserRepoTestSuite) TestCountActive() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM app_users WHERE tenant_id = \$1 AND active = TRUE`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountActive(suite.context, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *AppUserRepoTestSuite) TestUpdateLastLogin() {
	id := uuid.New()
	at := time.Now().UTC()

	suite.mock.ExpectExec(`UPDATE app_users SET last_login = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(at, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateLastLogin(suite.context, id, at)
	assert.NoError(suite.T(), err)
}

func (suite *AppUserRepoTestSuite) TestDelete() {
	id := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM app_users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, id)
	assert.NoError(suite.T(), err)
}
