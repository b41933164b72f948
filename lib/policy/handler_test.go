package policyhandler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"travel-tools-backend/db"
	"travel-tools-backend/models"
	companyapimodels "travel-tools-backend/models/api/company"
	dbmodels "travel-tools-backend/models/db"
)

func setupTest(t *testing.T) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	db.DB = gdb
	require.NoError(t, db.AutoMigrateDB())
	NewHandler()
}

func createCompany(t *testing.T, slug string) string {
	t.Helper()
	rec := dbmodels.Company{Name: slug, Slug: slug, Status: models.CompanyStatusActive}
	require.NoError(t, db.DB.Save(&rec).Error)
	return rec.ID
}

func TestCrud(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t, "acme")

	id, err := Instance.Create(companyID, companyapimodels.PolicyData{
		Name:                   "Экономные поездки",
		RequireManagerApproval: true,
	})
	require.NoError(t, err)

	view, err := Instance.GetByID(companyID, id)
	require.NoError(t, err)
	require.Equal(t, "Экономные поездки", view.Name)
	require.Equal(t, models.PolicyStatusActive, view.Status)

	require.NoError(t, Instance.Update(companyID, id, companyapimodels.PolicyData{
		Name:                   "Экономные поездки",
		RequireManagerApproval: true,
		RequireFinanceApproval: true,
	}))
	view, err = Instance.GetByID(companyID, id)
	require.NoError(t, err)
	require.True(t, view.RequireFinanceApproval)

	list, err := Instance.List(companyID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = Instance.Create(companyID, companyapimodels.PolicyData{
		Name: "Экономные поездки",
	})
	require.Error(t, err)

	require.NoError(t, Instance.Archive(companyID, id))
	view, err = Instance.GetByID(companyID, id)
	require.NoError(t, err)
	require.Equal(t, models.PolicyStatusArchived, view.Status)
}

func TestResolve(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t, "acme")
	otherCompanyID := createCompany(t, "other")

	firstID, err := Instance.Create(companyID, companyapimodels.PolicyData{Name: "Первая"})
	require.NoError(t, err)
	_, err = Instance.Create(companyID, companyapimodels.PolicyData{Name: "Вторая"})
	require.NoError(t, err)

	t.Run("явная политика", func(t *testing.T) {
		rec, err := Instance.Resolve(companyID, firstID)
		require.NoError(t, err)
		require.NotNil(t, rec)
		require.Equal(t, firstID, rec.ID)
	})

	t.Run("политика чужой компании", func(t *testing.T) {
		_, err := Instance.Resolve(otherCompanyID, firstID)
		require.ErrorIs(t, err, models.ErrPolicyNotAvailable)
	})

	t.Run("по умолчанию берётся самая ранняя активная", func(t *testing.T) {
		rec, err := Instance.Resolve(companyID, "")
		require.NoError(t, err)
		require.NotNil(t, rec)
		require.Equal(t, firstID, rec.ID)
	})

	t.Run("архивная политика недоступна", func(t *testing.T) {
		require.NoError(t, Instance.Archive(companyID, firstID))
		_, err := Instance.Resolve(companyID, firstID)
		require.ErrorIs(t, err, models.ErrPolicyNotAvailable)
	})

	t.Run("без политик согласование не требуется", func(t *testing.T) {
		rec, err := Instance.Resolve(otherCompanyID, "")
		require.NoError(t, err)
		require.Nil(t, rec)
	})
}
