package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOpportunityRepository creates a GormOpportunityRepository with a mocked SQL connection
func newMockOpportunityRepository(t *testing.T) (*GormOpportunityRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOpportunityRepository(gormDB), mock, mockDB
}

func TestGormOpportunityRepository_FindByID(t *testing.T) {
	t.Run("finds existing opportunity", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		oppID := uuid.New()
		tenantID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "account_id", "amount", "currency", "status", "probability"}).
			AddRow(oppID, tenantID, "Big Deal", accountID, decimal.NewFromInt(50000), "USD", "open", 40)

		mock.ExpectQuery(`SELECT \* FROM "opportunities" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, oppID, 1).
			WillReturnRows(rows)

		opp, err := repo.FindByID(context.Background(), tenantID, oppID)

		assert.NoError(t, err)
		assert.NotNil(t, opp)
		assert.Equal(t, oppID, opp.ID)
		assert.Equal(t, "Big Deal", opp.Name)
		assert.Equal(t, crm.OpportunityStatusOpen, opp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for non-existent opportunity", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		oppID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "opportunities" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, oppID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		opp, err := repo.FindByID(context.Background(), tenantID, oppID)

		assert.Error(t, err)
		assert.Nil(t, opp)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOpportunityRepository_FindByAccount(t *testing.T) {
	t.Run("scopes by tenant and account", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "account_id", "status"}).
			AddRow(uuid.New(), tenantID, "Renewal", accountID, "open")

		mock.ExpectQuery(`SELECT \* FROM "opportunities" WHERE tenant_id = \$1 AND account_id = \$2 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, accountID).
			WillReturnRows(rows)

		opps, err := repo.FindByAccount(context.Background(), tenantID, accountID, shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Len(t, opps, 1)
		assert.Equal(t, accountID, opps[0].AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOpportunityRepository_CountByStatus(t *testing.T) {
	t.Run("counts won opportunities", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "opportunities" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, "won").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountByStatus(context.Background(), tenantID, crm.OpportunityStatusWon)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOpportunityRepository_CountOpenByStage(t *testing.T) {
	t.Run("counts only open opportunities on the stage", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		stageID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "opportunities" WHERE tenant_id = \$1 AND stage_id = \$2 AND status = \$3`).
			WithArgs(tenantID, stageID, "open").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.CountOpenByStage(context.Background(), tenantID, stageID)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOpportunityRepository_Delete(t *testing.T) {
	t.Run("returns ErrNotFound when nothing deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockOpportunityRepository(t)
		defer mockDB.Close()

		oppID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectExec(`DELETE FROM "opportunities" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, oppID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), tenantID, oppID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
