package companyhandler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"travel-tools-backend/config"
	"travel-tools-backend/db"
	"travel-tools-backend/lib/audit"
	"travel-tools-backend/lib/notify"
	"travel-tools-backend/lib/smtp"
	"travel-tools-backend/models"
	companyapimodels "travel-tools-backend/models/api/company"
	dbmodels "travel-tools-backend/models/db"
)

func setupTest(t *testing.T) {
	t.Helper()
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.TokenExpiresHours = 1
	config.Conf.Auth.RefreshExpiresHours = 24
	config.Conf.Auth.InviteExpiresDays = 7

	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	db.DB = gdb
	require.NoError(t, db.AutoMigrateDB())

	require.NoError(t, smtp.Connect("", "", "", "", false))
	audit.NewHandler()
	notify.NewHandler()
	NewHandler()
}

func onboard(t *testing.T, name string) companyapimodels.CompanyOnboardedView {
	t.Helper()
	view, err := Instance.Onboard(companyapimodels.CompanyOnboardData{
		Name:          name,
		Currency:      "RUB",
		AdminEmail:    name + "@test.ru",
		AdminName:     "Админ",
		AdminPassword: "secret",
	})
	require.NoError(t, err)
	return view
}

func TestOnboard(t *testing.T) {
	setupTest(t)

	view := onboard(t, "Romashka LLC")
	require.Equal(t, "romashka-llc", view.Company.Slug)
	require.NotEmpty(t, view.AdminUserID)
	require.NotEmpty(t, view.MembershipID)
	require.NotEmpty(t, view.DefaultPolicyID)

	t.Run("администратор с активным членством", func(t *testing.T) {
		members, err := Instance.Members(view.Company.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		require.Equal(t, models.CompanyRoleAdmin, members[0].Role)
		require.Equal(t, models.CompanyUserStatusActive, members[0].Status)
	})

	t.Run("политика по умолчанию", func(t *testing.T) {
		policy := dbmodels.TravelPolicy{}
		require.NoError(t, db.DB.Where("id = ?", view.DefaultPolicyID).First(&policy).Error)
		require.Equal(t, "Default Policy", policy.Name)
		require.True(t, policy.RequireManagerApproval)
		require.False(t, policy.RequireFinanceApproval)
	})

	t.Run("повторная регистрация той же почты", func(t *testing.T) {
		_, err := Instance.Onboard(companyapimodels.CompanyOnboardData{
			Name:          "Другая",
			AdminEmail:    "Romashka LLC@test.ru",
			AdminPassword: "secret",
		})
		require.ErrorIs(t, err, models.ErrEmailAlreadyRegistered)
	})
}

func TestSlugGeneration(t *testing.T) {
	setupTest(t)

	first := onboard(t, "Acme Travel")
	require.Equal(t, "acme-travel", first.Company.Slug)

	second, err := Instance.Onboard(companyapimodels.CompanyOnboardData{
		Name:          "Acme Travel",
		AdminEmail:    "second@test.ru",
		AdminPassword: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "acme-travel-2", second.Company.Slug)
}

func TestLogin(t *testing.T) {
	setupTest(t)
	view := onboard(t, "Acme Travel")

	t.Run("успешный вход", func(t *testing.T) {
		tokens, err := Instance.Login(companyapimodels.LoginData{
			Email:       "Acme Travel@test.ru",
			Password:    "secret",
			CompanySlug: view.Company.Slug,
		})
		require.NoError(t, err)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("обновление токена", func(t *testing.T) {
		tokens, err := Instance.Login(companyapimodels.LoginData{
			Email:       "Acme Travel@test.ru",
			Password:    "secret",
			CompanySlug: view.Company.Slug,
		})
		require.NoError(t, err)

		refreshed, err := Instance.RefreshToken(tokens.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.AccessToken)
		require.NotEmpty(t, refreshed.RefreshToken)
	})

	t.Run("мусорный refresh токен", func(t *testing.T) {
		_, err := Instance.RefreshToken("not-a-token")
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		_, err := Instance.Login(companyapimodels.LoginData{
			Email:       "Acme Travel@test.ru",
			Password:    "wrong",
			CompanySlug: view.Company.Slug,
		})
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("чужая компания", func(t *testing.T) {
		_, err := Instance.Login(companyapimodels.LoginData{
			Email:       "Acme Travel@test.ru",
			Password:    "secret",
			CompanySlug: "unknown",
		})
		require.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestInvitations(t *testing.T) {
	setupTest(t)
	view := onboard(t, "Acme Travel")
	companyID := view.Company.ID

	invitation, err := Instance.Invite(companyID, view.MembershipID, companyapimodels.InvitationData{
		Email: "manager@test.ru",
		Role:  models.CompanyRoleManager,
	})
	require.NoError(t, err)
	require.NotEmpty(t, invitation.Token)
	require.Equal(t, models.InvitationStatusPending, invitation.Status)

	t.Run("повторное приглашение той же почты", func(t *testing.T) {
		_, err := Instance.Invite(companyID, view.MembershipID, companyapimodels.InvitationData{
			Email: "manager@test.ru",
			Role:  models.CompanyRoleManager,
		})
		require.Error(t, err)
	})

	t.Run("принятие с созданием пользователя", func(t *testing.T) {
		accepted, err := Instance.AcceptInvitation(companyapimodels.InvitationAcceptData{
			Token:    invitation.Token,
			FullName: "Новый руководитель",
			Password: "secret",
		})
		require.NoError(t, err)
		require.Equal(t, companyID, accepted.CompanyID)

		members, err := Instance.Members(companyID)
		require.NoError(t, err)
		require.Len(t, members, 2)
	})

	t.Run("повторное принятие", func(t *testing.T) {
		_, err := Instance.AcceptInvitation(companyapimodels.InvitationAcceptData{
			Token:    invitation.Token,
			Password: "secret",
		})
		require.ErrorIs(t, err, models.ErrInviteNotAvailable)
	})

	t.Run("просроченное приглашение", func(t *testing.T) {
		expired, err := Instance.Invite(companyID, view.MembershipID, companyapimodels.InvitationData{
			Email: "late@test.ru",
			Role:  models.CompanyRoleEmployee,
		})
		require.NoError(t, err)
		err = db.DB.Model(&dbmodels.CompanyInvitation{}).
			Where("id = ?", expired.ID).
			Update("expires_at", time.Now().Add(-time.Hour)).Error
		require.NoError(t, err)

		_, err = Instance.AcceptInvitation(companyapimodels.InvitationAcceptData{
			Token:    expired.Token,
			Password: "secret",
		})
		require.ErrorIs(t, err, models.ErrInviteNotAvailable)

		rec := dbmodels.CompanyInvitation{}
		require.NoError(t, db.DB.Where("id = ?", expired.ID).First(&rec).Error)
		require.Equal(t, models.InvitationStatusExpired, rec.Status)
	})
}
