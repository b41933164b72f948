package travelrequesthandler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"travel-tools-backend/config"
	"travel-tools-backend/db"
	"travel-tools-backend/lib/audit"
	xlsexport "travel-tools-backend/lib/export/xls"
	"travel-tools-backend/lib/notify"
	policyhandler "travel-tools-backend/lib/policy"
	"travel-tools-backend/lib/smtp"
	trstore "travel-tools-backend/lib/travel-request/store"
	"travel-tools-backend/models"
	travelapimodels "travel-tools-backend/models/api/travel"
	dbmodels "travel-tools-backend/models/db"
)

func setupTest(t *testing.T) {
	t.Helper()
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.TokenExpiresHours = 1

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	db.DB = gdb
	require.NoError(t, db.AutoMigrateDB())

	require.NoError(t, smtp.Connect("", "", "", "", false))
	audit.NewHandler()
	notify.NewHandler()
	xlsexport.NewHandler()
	policyhandler.NewHandler()
	NewHandler()
}

func createCompany(t *testing.T) string {
	t.Helper()
	rec := dbmodels.Company{
		Name:   "Тестовая компания",
		Slug:   "test-company",
		Status: models.CompanyStatusActive,
	}
	require.NoError(t, db.DB.Save(&rec).Error)
	return rec.ID
}

func addMember(t *testing.T, companyID, email string, role models.CompanyRole) string {
	t.Helper()
	user := dbmodels.User{
		Email:    email,
		Name:     email,
		IsActive: true,
	}
	require.NoError(t, db.DB.Save(&user).Error)
	member := dbmodels.CompanyUser{
		BaseCompanyModel: dbmodels.BaseCompanyModel{
			CompanyID: companyID,
		},
		UserID: user.ID,
		Role:   role,
		Status: models.CompanyUserStatusActive,
	}
	require.NoError(t, db.DB.Save(&member).Error)
	return member.ID
}

func createPolicy(t *testing.T, companyID string, manager, finance bool) string {
	t.Helper()
	rec := dbmodels.TravelPolicy{
		BaseCompanyModel: dbmodels.BaseCompanyModel{
			CompanyID: companyID,
		},
		Name:                   "Основная политика",
		Status:                 models.PolicyStatusActive,
		RequireManagerApproval: manager,
		RequireFinanceApproval: finance,
	}
	require.NoError(t, db.DB.Save(&rec).Error)
	return rec.ID
}

func createRequest(t *testing.T, companyID, employeeID string) string {
	t.Helper()
	id, err := Instance.Create(companyID, employeeID, travelapimodels.TravelRequestCreateData{
		TravelRequestData: travelapimodels.TravelRequestData{
			TripType:    models.TripTypeRoundTrip,
			Origin:      "SVO",
			Destination: "LED",
		},
	})
	require.NoError(t, err)
	return id
}

func getRequest(t *testing.T, companyID, id string) dbmodels.TravelRequest {
	t.Helper()
	rec, err := trstore.NewInstance(db.DB).GetByID(companyID, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return *rec
}

func auditCount(t *testing.T, companyID, event string) int64 {
	t.Helper()
	var count int64
	err := db.DB.Model(&dbmodels.AuditLog{}).
		Where("company_id = ?", companyID).
		Where("event = ?", event).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

// число финальных одобрений в журнале аудита
func finalAuditCount(t *testing.T, companyID string) int64 {
	t.Helper()
	var count int64
	err := db.DB.Model(&dbmodels.AuditLog{}).
		Where("company_id = ?", companyID).
		Where("event = ?", models.AuditTravelRequestApproved).
		Where("details LIKE ?", `%"final_approval":true%`).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestReferenceFormat(t *testing.T) {
	re := regexp.MustCompile(`^TR-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for k := 0; k < 10000; k++ {
		reference := newReference()
		require.True(t, re.MatchString(reference), reference)
		seen[reference] = true
	}
	require.Greater(t, len(seen), 9990)
}

func TestCreate(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)

	t.Run("черновик с номером", func(t *testing.T) {
		id := createRequest(t, companyID, employeeID)
		rec := getRequest(t, companyID, id)
		require.Equal(t, models.TRStatusDraft, rec.Status)
		require.Regexp(t, `^TR-[0-9A-F]{8}$`, rec.Reference)
		require.Equal(t, 1, rec.TravelerCount)
	})

	t.Run("неактивное членство", func(t *testing.T) {
		_, err := Instance.Create(companyID, "несуществующее-членство", travelapimodels.TravelRequestCreateData{})
		require.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestSubmitFanOut(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	manager1 := addMember(t, companyID, "manager1@test.ru", models.CompanyRoleManager)
	manager2 := addMember(t, companyID, "manager2@test.ru", models.CompanyRoleManager)
	financier := addMember(t, companyID, "finance@test.ru", models.CompanyRoleFinance)
	createPolicy(t, companyID, true, true)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusPendingApproval, rec.Status)
	require.NotNil(t, rec.SubmittedAt)
	require.Len(t, rec.Approvals, 3)

	byApprover := map[string]dbmodels.TravelApproval{}
	for _, approval := range rec.Approvals {
		byApprover[approval.ApproverCompanyUserID] = approval
	}
	require.Equal(t, models.ApprovalLevelManager, byApprover[manager1].Level)
	require.Equal(t, models.ApprovalLevelManager, byApprover[manager2].Level)
	require.Equal(t, models.ApprovalLevelFinance, byApprover[financier].Level)

	require.Len(t, rec.ApprovalState.Levels, 2)
	require.Equal(t, models.CompanyRoleManager, rec.ApprovalState.Levels[0].Role)
	require.ElementsMatch(t, []string{manager1, manager2}, rec.ApprovalState.Levels[0].ApproverIDs)
	require.Equal(t, models.CompanyRoleFinance, rec.ApprovalState.Levels[1].Role)

	require.EqualValues(t, 1, auditCount(t, companyID, models.AuditTravelRequestSubmitted))

	t.Run("повторная отправка", func(t *testing.T) {
		require.ErrorIs(t, Instance.Submit(companyID, id, employeeID), models.ErrInvalidState)
	})
}

func TestSubmitOwnerOnly(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	adminID := addMember(t, companyID, "admin@test.ru", models.CompanyRoleAdmin)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	addMember(t, companyID, "manager@test.ru", models.CompanyRoleManager)
	createPolicy(t, companyID, true, false)

	id := createRequest(t, companyID, employeeID)

	// даже администратор не может отправить чужой черновик
	err := Instance.Submit(companyID, id, adminID)
	require.ErrorIs(t, err, models.ErrForbidden)

	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusDraft, rec.Status)
	require.Nil(t, rec.SubmittedAt)
	require.Empty(t, rec.Approvals)

	require.NoError(t, Instance.Submit(companyID, id, employeeID))
}

func TestSubmitAdminFallback(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	adminID := addMember(t, companyID, "admin@test.ru", models.CompanyRoleAdmin)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	createPolicy(t, companyID, true, false)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	rec := getRequest(t, companyID, id)
	require.Len(t, rec.Approvals, 1)
	require.Equal(t, adminID, rec.Approvals[0].ApproverCompanyUserID)
	require.Equal(t, models.CompanyRoleAdmin, rec.ApprovalState.Levels[0].Role)
}

func TestSubmitNoApprovers(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	// финансовый уровень обязателен, но финансистов в компании нет
	createPolicy(t, companyID, false, true)

	id := createRequest(t, companyID, employeeID)
	err := Instance.Submit(companyID, id, employeeID)
	require.ErrorIs(t, err, models.ErrNoApproversConfigured)

	// транзакция откатилась целиком
	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusDraft, rec.Status)
	require.Nil(t, rec.SubmittedAt)
	require.Empty(t, rec.Approvals)
}

func TestSubmitAutoApprove(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	// в компании нет ни одной политики

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusApproved, rec.Status)
	require.NotNil(t, rec.SubmittedAt)
	require.NotNil(t, rec.ApprovedAt)
	require.Empty(t, rec.Approvals)

	// отправка фиксируется одним событием с итоговым статусом
	require.EqualValues(t, 1, auditCount(t, companyID, models.AuditTravelRequestSubmitted))
	require.EqualValues(t, 0, auditCount(t, companyID, models.AuditTravelRequestApproved))
}

func TestApprovalFlow(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	manager1 := addMember(t, companyID, "manager1@test.ru", models.CompanyRoleManager)
	manager2 := addMember(t, companyID, "manager2@test.ru", models.CompanyRoleManager)
	financier := addMember(t, companyID, "finance@test.ru", models.CompanyRoleFinance)
	createPolicy(t, companyID, true, true)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	t.Run("не назначенный согласующий", func(t *testing.T) {
		err := Instance.Approve(companyID, id, employeeID, travelapimodels.DecisionData{})
		require.ErrorIs(t, err, models.ErrNotAssignedApprover)
	})

	t.Run("один руководитель не закрывает уровень", func(t *testing.T) {
		require.NoError(t, Instance.Approve(companyID, id, manager1, travelapimodels.DecisionData{Comment: "ок"}))
		rec := getRequest(t, companyID, id)
		require.Equal(t, models.TRStatusPendingApproval, rec.Status)
		require.Equal(t, models.ApprovalStatusPending, rec.ApprovalState.Levels[0].Status)
		// промежуточное одобрение тоже попадает в журнал
		require.EqualValues(t, 1, auditCount(t, companyID, models.AuditTravelRequestApproved))
		require.EqualValues(t, 0, finalAuditCount(t, companyID))
	})

	t.Run("повторное решение", func(t *testing.T) {
		err := Instance.Approve(companyID, id, manager1, travelapimodels.DecisionData{})
		require.ErrorIs(t, err, models.ErrAlreadyDecided)
	})

	t.Run("второй руководитель закрывает уровень", func(t *testing.T) {
		require.NoError(t, Instance.Approve(companyID, id, manager2, travelapimodels.DecisionData{}))
		rec := getRequest(t, companyID, id)
		require.Equal(t, models.TRStatusPendingApproval, rec.Status)
		require.Equal(t, models.ApprovalStatusApproved, rec.ApprovalState.Levels[0].Status)
		require.Equal(t, models.ApprovalStatusPending, rec.ApprovalState.Levels[1].Status)
	})

	t.Run("финансист финализирует", func(t *testing.T) {
		require.NoError(t, Instance.Approve(companyID, id, financier, travelapimodels.DecisionData{}))
		rec := getRequest(t, companyID, id)
		require.Equal(t, models.TRStatusApproved, rec.Status)
		require.NotNil(t, rec.ApprovedAt)
		require.Equal(t, models.ApprovalStatusApproved, rec.ApprovalState.Levels[1].Status)
		require.EqualValues(t, 3, auditCount(t, companyID, models.AuditTravelRequestApproved))
		require.EqualValues(t, 1, finalAuditCount(t, companyID))
	})

	t.Run("решение по закрытой заявке", func(t *testing.T) {
		err := Instance.Approve(companyID, id, financier, travelapimodels.DecisionData{})
		require.ErrorIs(t, err, models.ErrInvalidState)
	})
}

func TestRejectShortCircuit(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	manager1 := addMember(t, companyID, "manager1@test.ru", models.CompanyRoleManager)
	manager2 := addMember(t, companyID, "manager2@test.ru", models.CompanyRoleManager)
	addMember(t, companyID, "finance@test.ru", models.CompanyRoleFinance)
	createPolicy(t, companyID, true, true)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	require.NoError(t, Instance.Reject(companyID, id, manager1, travelapimodels.DecisionData{Comment: "слишком дорого"}))
	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusRejected, rec.Status)
	require.NotNil(t, rec.RejectedAt)
	require.Equal(t, models.ApprovalStatusRejected, rec.ApprovalState.Levels[0].Status)
	require.EqualValues(t, 1, auditCount(t, companyID, models.AuditTravelRequestRejected))

	// оставшиеся задачи закрыть уже нельзя
	err := Instance.Approve(companyID, id, manager2, travelapimodels.DecisionData{})
	require.ErrorIs(t, err, models.ErrInvalidState)
}

func TestCancel(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	otherID := addMember(t, companyID, "other@test.ru", models.CompanyRoleEmployee)
	manager := addMember(t, companyID, "manager@test.ru", models.CompanyRoleManager)
	createPolicy(t, companyID, true, false)

	t.Run("чужая заявка", func(t *testing.T) {
		id := createRequest(t, companyID, employeeID)
		err := Instance.Cancel(companyID, id, otherID, models.CompanyRoleEmployee)
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("отмена на согласовании", func(t *testing.T) {
		id := createRequest(t, companyID, employeeID)
		require.NoError(t, Instance.Submit(companyID, id, employeeID))
		require.NoError(t, Instance.Cancel(companyID, id, employeeID, models.CompanyRoleEmployee))
		rec := getRequest(t, companyID, id)
		require.Equal(t, models.TRStatusCancelled, rec.Status)
		require.NotNil(t, rec.CancelledAt)
	})

	t.Run("отмена закрытой заявки", func(t *testing.T) {
		id := createRequest(t, companyID, employeeID)
		require.NoError(t, Instance.Submit(companyID, id, employeeID))
		require.NoError(t, Instance.Approve(companyID, id, manager, travelapimodels.DecisionData{}))
		err := Instance.Cancel(companyID, id, employeeID, models.CompanyRoleEmployee)
		require.ErrorIs(t, err, models.ErrInvalidState)
	})
}

func TestUpdateDraftOnly(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	addMember(t, companyID, "manager@test.ru", models.CompanyRoleManager)
	createPolicy(t, companyID, true, false)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Update(companyID, id, employeeID, travelapimodels.TravelRequestData{
		TripType:      models.TripTypeOneWay,
		Origin:        "led",
		Destination:   "KZN",
		Justification: "командировка",
	}))
	rec := getRequest(t, companyID, id)
	require.Equal(t, "LED", rec.Origin)
	require.Equal(t, "KZN", rec.Destination)

	// чужой черновик недоступен для правки даже администратору
	adminID := addMember(t, companyID, "admin@test.ru", models.CompanyRoleAdmin)
	err := Instance.Update(companyID, id, adminID, travelapimodels.TravelRequestData{
		Origin:      "KZN",
		Destination: "LED",
	})
	require.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, Instance.Submit(companyID, id, employeeID))
	err = Instance.Update(companyID, id, employeeID, travelapimodels.TravelRequestData{})
	require.ErrorIs(t, err, models.ErrInvalidState)
}

func TestVersionConflict(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	addMember(t, companyID, "manager@test.ru", models.CompanyRoleManager)
	createPolicy(t, companyID, true, false)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))
	rec := getRequest(t, companyID, id)

	store := trstore.NewInstance(db.DB)
	updated, err := store.UpdateVersioned(companyID, id, rec.LockVersion, map[string]interface{}{"justification": "первый"})
	require.NoError(t, err)
	require.True(t, updated)

	// попытка со старой версией проигрывает
	updated, err = store.UpdateVersioned(companyID, id, rec.LockVersion, map[string]interface{}{"justification": "второй"})
	require.NoError(t, err)
	require.False(t, updated)
}

func TestConcurrentApprovals(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	approvers := make([]string, 0, 4)
	for k := 0; k < 4; k++ {
		approvers = append(approvers, addMember(t, companyID, fmt.Sprintf("manager%v@test.ru", k), models.CompanyRoleManager))
	}
	createPolicy(t, companyID, true, false)

	id := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, id, employeeID))

	wg := sync.WaitGroup{}
	errs := make([]error, len(approvers))
	for k, approverID := range approvers {
		wg.Add(1)
		go func(k int, approverID string) {
			defer wg.Done()
			errs[k] = Instance.Approve(companyID, id, approverID, travelapimodels.DecisionData{})
		}(k, approverID)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	rec := getRequest(t, companyID, id)
	require.Equal(t, models.TRStatusApproved, rec.Status)
	require.NotNil(t, rec.ApprovedAt)

	pending, err := trstore.NewInstance(db.DB).CountPending(id)
	require.NoError(t, err)
	require.EqualValues(t, 0, pending)

	// каждое решение в журнале, финальное - ровно одно
	require.EqualValues(t, 4, auditCount(t, companyID, models.AuditTravelRequestApproved))
	require.EqualValues(t, 1, finalAuditCount(t, companyID))
}

func TestCompanyIsolation(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	id := createRequest(t, companyID, employeeID)

	other := dbmodels.Company{Name: "Другая компания", Slug: "other", Status: models.CompanyStatusActive}
	require.NoError(t, db.DB.Save(&other).Error)

	_, err := Instance.GetByID(other.ID, id, employeeID, models.CompanyRoleAdmin)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListAndInbox(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	otherID := addMember(t, companyID, "other@test.ru", models.CompanyRoleEmployee)
	manager := addMember(t, companyID, "manager@test.ru", models.CompanyRoleManager)
	createPolicy(t, companyID, true, false)

	first := createRequest(t, companyID, employeeID)
	require.NoError(t, Instance.Submit(companyID, first, employeeID))
	createRequest(t, companyID, otherID)

	t.Run("сотрудник видит только свои", func(t *testing.T) {
		list, rowCount, err := Instance.List(companyID, employeeID, models.CompanyRoleEmployee, travelapimodels.TrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 1, rowCount)
		require.Len(t, list, 1)
		require.Equal(t, first, list[0].ID)
	})

	t.Run("администратор видит все", func(t *testing.T) {
		adminID := addMember(t, companyID, "admin@test.ru", models.CompanyRoleAdmin)
		_, rowCount, err := Instance.List(companyID, adminID, models.CompanyRoleAdmin, travelapimodels.TrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 2, rowCount)
	})

	t.Run("входящие согласующего", func(t *testing.T) {
		list, rowCount, err := Instance.Inbox(companyID, manager, travelapimodels.TrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 1, rowCount)
		require.Equal(t, first, list[0].ID)

		require.NoError(t, Instance.Approve(companyID, first, manager, travelapimodels.DecisionData{}))
		_, rowCount, err = Instance.Inbox(companyID, manager, travelapimodels.TrFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 0, rowCount)
	})
}

func TestComments(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	otherID := addMember(t, companyID, "other@test.ru", models.CompanyRoleEmployee)
	id := createRequest(t, companyID, employeeID)

	view, err := Instance.AddComment(companyID, id, employeeID, models.CompanyRoleEmployee, travelapimodels.CommentData{Body: "нужно срочно"})
	require.NoError(t, err)
	require.Equal(t, "internal", view.Visibility)

	list, err := Instance.Comments(companyID, id, employeeID, models.CompanyRoleEmployee)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "нужно срочно", list[0].Body)

	_, err = Instance.AddComment(companyID, id, otherID, models.CompanyRoleEmployee, travelapimodels.CommentData{Body: "чужой"})
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestExport(t *testing.T) {
	setupTest(t)
	companyID := createCompany(t)
	employeeID := addMember(t, companyID, "employee@test.ru", models.CompanyRoleEmployee)
	createRequest(t, companyID, employeeID)

	file, err := Instance.Export(companyID, travelapimodels.TrFilter{})
	require.NoError(t, err)
	require.NotZero(t, file.Len())
}
