package travelrequesthandler

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"travel-tools-backend/db"
	"travel-tools-backend/lib/audit"
	companyusersstore "travel-tools-backend/lib/company/users/store"
	xlsexport "travel-tools-backend/lib/export/xls"
	"travel-tools-backend/lib/notify"
	policyhandler "travel-tools-backend/lib/policy"
	trstore "travel-tools-backend/lib/travel-request/store"
	"travel-tools-backend/models"
	travelapimodels "travel-tools-backend/models/api/travel"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(companyID, employeeCompanyUserID string, data travelapimodels.TravelRequestCreateData) (id string, err error)
	Update(companyID, id, actorCompanyUserID string, data travelapimodels.TravelRequestData) error
	Submit(companyID, id, actorCompanyUserID string) error
	Approve(companyID, id, approverCompanyUserID string, data travelapimodels.DecisionData) error
	Reject(companyID, id, approverCompanyUserID string, data travelapimodels.DecisionData) error
	Cancel(companyID, id, actorCompanyUserID string, actorRole models.CompanyRole) error
	GetByID(companyID, id, viewerCompanyUserID string, viewerRole models.CompanyRole) (item travelapimodels.TravelRequestView, err error)
	List(companyID, viewerCompanyUserID string, viewerRole models.CompanyRole, filter travelapimodels.TrFilter) (list []travelapimodels.TravelRequestView, rowCount int64, err error)
	Inbox(companyID, approverCompanyUserID string, filter travelapimodels.TrFilter) (list []travelapimodels.TravelRequestView, rowCount int64, err error)
	Export(companyID string, filter travelapimodels.TrFilter) (file *bytes.Buffer, err error)
	AddComment(companyID, id, authorCompanyUserID string, viewerRole models.CompanyRole, data travelapimodels.CommentData) (view travelapimodels.CommentView, err error)
	Comments(companyID, id, viewerCompanyUserID string, viewerRole models.CompanyRole) (list []travelapimodels.CommentView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:       trstore.NewInstance(db.DB),
		memberStore: companyusersstore.NewInstance(db.DB),
	}
}

type impl struct {
	store       trstore.Provider
	memberStore companyusersstore.Provider
}

// число повторов операции при проигрыше гонки за версию заявки
const decisionRetries = 5

func newReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TR-" + strings.ToUpper(raw[:8])
}

func (i impl) generateReference() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		reference := newReference()
		exists, err := i.store.ReferenceExists(reference)
		if err != nil {
			return "", err
		}
		if !exists {
			return reference, nil
		}
	}
	return "", errors.New("не удалось подобрать уникальный номер заявки")
}

func (i impl) Create(companyID, employeeCompanyUserID string, data travelapimodels.TravelRequestCreateData) (id string, err error) {
	logger := log.WithField("company_id", companyID)
	if err = data.Validate(); err != nil {
		return "", err
	}
	employee, err := i.memberStore.GetByID(companyID, employeeCompanyUserID)
	if err != nil {
		return "", err
	}
	if employee == nil || employee.Status != models.CompanyUserStatusActive {
		return "", models.ErrForbidden
	}
	reference, err := i.generateReference()
	if err != nil {
		return "", err
	}
	travelerCount := data.TravelerCount
	if travelerCount == 0 {
		travelerCount = 1
	}
	rec := dbmodels.TravelRequest{
		BaseCompanyModel: dbmodels.BaseCompanyModel{
			CompanyID: companyID,
		},
		EmployeeCompanyUserID: employeeCompanyUserID,
		Reference:             reference,
		Status:                models.TRStatusDraft,
		TripType:              data.TripType,
		Origin:                strings.ToUpper(data.Origin),
		Destination:           strings.ToUpper(data.Destination),
		DepartureDate:         data.DepartureDate,
		ReturnDate:            data.ReturnDate,
		Justification:         data.Justification,
		TravelerCount:         travelerCount,
		BudgetMinor:           data.BudgetMinor,
		Currency:              data.Currency,
		RequestedItineraries:  data.RequestedItineraries,
		OfferSnapshot:         data.OfferSnapshot,
	}
	if data.PolicyID != "" {
		rec.PolicyID = &data.PolicyID
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", errors.Wrap(err, "ошибка создания заявки")
	}
	logger.WithField("rec_id", id).Info("заявка на поездку создана")
	if data.AutoSubmit {
		err = i.Submit(companyID, id, employeeCompanyUserID)
		if err != nil {
			return id, err
		}
	}
	return id, nil
}

// canManage: отмена доступна владельцу заявки и администратору компании
func (i impl) canManage(rec dbmodels.TravelRequest, actorCompanyUserID string, actorRole models.CompanyRole) bool {
	return rec.EmployeeCompanyUserID == actorCompanyUserID || actorRole.IsCompanyAdmin()
}

// Update правит черновик. Изменять заявку может только её владелец.
func (i impl) Update(companyID, id, actorCompanyUserID string, data travelapimodels.TravelRequestData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.ErrNotFound
	}
	if rec.EmployeeCompanyUserID != actorCompanyUserID {
		return models.ErrForbidden
	}
	if rec.Status != models.TRStatusDraft {
		return models.ErrInvalidState
	}
	var policyID *string
	if data.PolicyID != "" {
		policyID = &data.PolicyID
	}
	updMap := map[string]interface{}{
		"policy_id":             policyID,
		"trip_type":             data.TripType,
		"origin":                strings.ToUpper(data.Origin),
		"destination":           strings.ToUpper(data.Destination),
		"departure_date":        data.DepartureDate,
		"return_date":           data.ReturnDate,
		"justification":         data.Justification,
		"budget_minor":          data.BudgetMinor,
		"currency":              data.Currency,
		"requested_itineraries": dbmodels.ItinerarySegments(data.RequestedItineraries),
		"offer_snapshot":        dbmodels.JSONMap(data.OfferSnapshot),
	}
	if data.TravelerCount > 0 {
		updMap["traveler_count"] = data.TravelerCount
	}
	return i.store.Update(companyID, id, updMap)
}

// resolveApprovers подбирает согласующих уровня по активным членствам.
// Для первого уровня при отсутствии руководителей согласующим становится
// администратор компании.
func resolveApprovers(memberStore companyusersstore.Provider, companyID string, level int) ([]dbmodels.CompanyUser, models.CompanyRole, error) {
	for _, role := range models.ApproverRolesByLevel[level] {
		approvers, err := memberStore.ListActiveByRole(companyID, role)
		if err != nil {
			return nil, "", err
		}
		if len(approvers) > 0 {
			return approvers, role, nil
		}
	}
	return nil, "", models.ErrNoApproversConfigured
}

// Submit отправляет черновик на согласование: выбирает политику, строит
// снимок цепочки и раздаёт задачи согласующим в одной транзакции.
// Отправить заявку может только её владелец. Если согласование не
// требуется, заявка одобряется автоматически.
func (i impl) Submit(companyID, id, actorCompanyUserID string) error {
	logger := log.
		WithField("company_id", companyID).
		WithField("rec_id", id)
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.ErrNotFound
	}
	if rec.EmployeeCompanyUserID != actorCompanyUserID {
		return models.ErrForbidden
	}
	if rec.Status != models.TRStatusDraft {
		return models.ErrInvalidState
	}

	var notifyApprovers []dbmodels.CompanyUser
	autoApproved := false
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		store := trstore.NewInstance(tx)
		memberStore := companyusersstore.NewInstance(tx)

		var policyID string
		if rec.PolicyID != nil {
			policyID = *rec.PolicyID
		}
		policy, err := policyhandler.NewHandlerWithTx(tx).Resolve(companyID, policyID)
		if err != nil {
			return err
		}

		now := time.Now()
		levels := []int{}
		if policy != nil {
			levels = policy.RequiredLevels()
		}
		if len(levels) == 0 {
			// политик нет или политика не требует согласования
			updMap := map[string]interface{}{
				"status":         models.TRStatusApproved,
				"submitted_at":   &now,
				"approved_at":    &now,
				"approval_state": dbmodels.ApprovalState{Levels: []dbmodels.ApprovalLevelState{}},
			}
			if policy != nil {
				updMap["policy_id"] = &policy.ID
			}
			updated, err := store.UpdateVersioned(companyID, id, rec.LockVersion, updMap)
			if err != nil {
				return err
			}
			if !updated {
				return models.ErrConflict
			}
			autoApproved = true
			return nil
		}

		state := dbmodels.ApprovalState{}
		for _, level := range levels {
			approvers, role, err := resolveApprovers(memberStore, companyID, level)
			if err != nil {
				return err
			}
			levelState := dbmodels.ApprovalLevelState{
				Level:  level,
				Role:   role,
				Status: models.ApprovalStatusPending,
			}
			for _, approver := range approvers {
				_, err = store.CreateApproval(dbmodels.TravelApproval{
					TravelRequestID:       id,
					Level:                 level,
					ApproverCompanyUserID: approver.ID,
					Status:                models.ApprovalStatusPending,
				})
				if err != nil {
					return errors.Wrap(err, "ошибка создания задачи согласования")
				}
				levelState.ApproverIDs = append(levelState.ApproverIDs, approver.ID)
			}
			state.Levels = append(state.Levels, levelState)
			notifyApprovers = append(notifyApprovers, approvers...)
		}

		updated, err := store.UpdateVersioned(companyID, id, rec.LockVersion, map[string]interface{}{
			"status":         models.TRStatusPendingApproval,
			"policy_id":      &policy.ID,
			"submitted_at":   &now,
			"approval_state": state,
		})
		if err != nil {
			return err
		}
		if !updated {
			return models.ErrConflict
		}
		return nil
	})
	if err != nil {
		return err
	}

	status := models.TRStatusPendingApproval
	if autoApproved {
		status = models.TRStatusApproved
	}
	audit.Instance.Record(companyID, models.AuditTravelRequestSubmitted, actorCompanyUserID, map[string]interface{}{
		"reference": rec.Reference,
		"status":    string(status),
	})
	if autoApproved {
		logger.Info("заявка одобрена автоматически, согласование не требуется")
		i.notifyFinalized(companyID, id)
		return nil
	}
	logger.WithField("approvers", len(notifyApprovers)).Info("заявка отправлена на согласование")
	go notify.Instance.ApprovalRequested(*rec, notifyApprovers)
	return nil
}

func (i impl) Approve(companyID, id, approverCompanyUserID string, data travelapimodels.DecisionData) error {
	return i.decide(companyID, id, approverCompanyUserID, models.ApprovalStatusApproved, data.Comment)
}

func (i impl) Reject(companyID, id, approverCompanyUserID string, data travelapimodels.DecisionData) error {
	return i.decide(companyID, id, approverCompanyUserID, models.ApprovalStatusRejected, data.Comment)
}

// decide фиксирует решение согласующего. Смена статуса заявки защищена
// версией записи: проигравшая гонку транзакция откатывается целиком и
// повторяется с перечитыванием оставшихся задач.
func (i impl) decide(companyID, id, approverCompanyUserID string, decision models.ApprovalStatus, comment string) error {
	logger := log.
		WithField("company_id", companyID).
		WithField("rec_id", id).
		WithField("approver_id", approverCompanyUserID)
	var finalStatus models.TRStatus
	var approvalLevel int
	for attempt := 0; attempt < decisionRetries; attempt++ {
		finalStatus = ""
		err := db.DB.Transaction(func(tx *gorm.DB) error {
			store := trstore.NewInstance(tx)
			rec, err := store.GetByID(companyID, id)
			if err != nil {
				return err
			}
			if rec == nil {
				return models.ErrNotFound
			}
			if !rec.Status.AllowDecision() {
				return models.ErrInvalidState
			}
			approval, err := store.GetApprovalForApprover(id, approverCompanyUserID)
			if err != nil {
				return err
			}
			if approval == nil {
				return models.ErrNotAssignedApprover
			}
			if approval.Status != models.ApprovalStatusPending {
				return models.ErrAlreadyDecided
			}
			approvalLevel = approval.Level
			updated, err := store.SetApprovalDecision(approval.ID, decision, comment)
			if err != nil {
				return err
			}
			if !updated {
				return models.ErrAlreadyDecided
			}

			now := time.Now()
			state := rec.ApprovalState
			updMap := map[string]interface{}{}
			if decision == models.ApprovalStatusRejected {
				// одного отказа достаточно для отклонения заявки
				state.SetLevelStatus(approval.Level, models.ApprovalStatusRejected)
				updMap["status"] = models.TRStatusRejected
				updMap["rejected_at"] = &now
				finalStatus = models.TRStatusRejected
			} else {
				pendingOnLevel, err := store.CountPendingByLevel(id, approval.Level)
				if err != nil {
					return err
				}
				if pendingOnLevel == 0 {
					state.SetLevelStatus(approval.Level, models.ApprovalStatusApproved)
				}
				pending, err := store.CountPending(id)
				if err != nil {
					return err
				}
				if pending == 0 {
					updMap["status"] = models.TRStatusApproved
					updMap["approved_at"] = &now
					finalStatus = models.TRStatusApproved
				}
			}
			updMap["approval_state"] = state
			updated, err = store.UpdateVersioned(companyID, id, rec.LockVersion, updMap)
			if err != nil {
				return err
			}
			if !updated {
				return models.ErrConflict
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				logger.WithField("attempt", attempt+1).Warn("гонка за заявку, операция повторяется")
				continue
			}
			return err
		}
		logger.WithField("decision", string(decision)).Info("решение по заявке зафиксировано")
		event := models.AuditTravelRequestApproved
		if decision == models.ApprovalStatusRejected {
			event = models.AuditTravelRequestRejected
		}
		// событие пишется на каждое решение, финальное помечается флагом
		audit.Instance.Record(companyID, event, approverCompanyUserID, map[string]interface{}{
			"rec_id":         id,
			"level":          approvalLevel,
			"final_approval": finalStatus == models.TRStatusApproved,
		})
		if finalStatus != "" {
			i.notifyFinalized(companyID, id)
		}
		return nil
	}
	return models.ErrConflict
}

func (i impl) notifyFinalized(companyID, id string) {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil || rec == nil {
		return
	}
	go notify.Instance.RequestFinalized(*rec, rec.Employee)
}

func (i impl) Cancel(companyID, id, actorCompanyUserID string, actorRole models.CompanyRole) error {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.ErrNotFound
	}
	if !i.canManage(*rec, actorCompanyUserID, actorRole) {
		return models.ErrForbidden
	}
	if !rec.Status.AllowCancel() {
		return models.ErrInvalidState
	}
	now := time.Now()
	updated, err := i.store.UpdateVersioned(companyID, id, rec.LockVersion, map[string]interface{}{
		"status":       models.TRStatusCancelled,
		"cancelled_at": &now,
	})
	if err != nil {
		return err
	}
	if !updated {
		return models.ErrConflict
	}
	audit.Instance.Record(companyID, models.AuditTravelRequestCancelled, actorCompanyUserID, map[string]interface{}{
		"reference": rec.Reference,
	})
	return nil
}

// canView: сотрудник видит свои заявки, администратор - все,
// согласующий - заявки со своей задачей
func (i impl) canView(rec dbmodels.TravelRequest, viewerCompanyUserID string, viewerRole models.CompanyRole) bool {
	if rec.EmployeeCompanyUserID == viewerCompanyUserID || viewerRole.IsCompanyAdmin() {
		return true
	}
	for _, approval := range rec.Approvals {
		if approval.ApproverCompanyUserID == viewerCompanyUserID {
			return true
		}
	}
	return false
}

func (i impl) GetByID(companyID, id, viewerCompanyUserID string, viewerRole models.CompanyRole) (item travelapimodels.TravelRequestView, err error) {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return item, err
	}
	if rec == nil {
		return item, models.ErrNotFound
	}
	if !i.canView(*rec, viewerCompanyUserID, viewerRole) {
		return item, models.ErrForbidden
	}
	return travelapimodels.TravelRequestConvert(*rec), nil
}

func (i impl) List(companyID, viewerCompanyUserID string, viewerRole models.CompanyRole, filter travelapimodels.TrFilter) (list []travelapimodels.TravelRequestView, rowCount int64, err error) {
	page, limit := filter.GetPage()
	storeFilter := trstore.Filter{
		Status: filter.Status,
		Page:   page,
		Limit:  limit,
	}
	if filter.Mine || !viewerRole.IsCompanyAdmin() {
		storeFilter.EmployeeCompanyUserID = viewerCompanyUserID
	}
	recs, rowCount, err := i.store.List(companyID, storeFilter)
	if err != nil {
		return nil, 0, err
	}
	list = make([]travelapimodels.TravelRequestView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, travelapimodels.TravelRequestConvert(rec))
	}
	return list, rowCount, nil
}

func (i impl) Inbox(companyID, approverCompanyUserID string, filter travelapimodels.TrFilter) (list []travelapimodels.TravelRequestView, rowCount int64, err error) {
	page, limit := filter.GetPage()
	storeFilter := trstore.Filter{
		Status: filter.Status,
		Page:   page,
		Limit:  limit,
	}
	recs, rowCount, err := i.store.ListForApprover(companyID, approverCompanyUserID, storeFilter)
	if err != nil {
		return nil, 0, err
	}
	list = make([]travelapimodels.TravelRequestView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, travelapimodels.TravelRequestConvert(rec))
	}
	return list, rowCount, nil
}

// Export выгружает реестр заявок компании в xlsx
func (i impl) Export(companyID string, filter travelapimodels.TrFilter) (*bytes.Buffer, error) {
	recs, _, err := i.store.List(companyID, trstore.Filter{
		Status: filter.Status,
		Page:   1,
		Limit:  10000,
	})
	if err != nil {
		return nil, err
	}
	return xlsexport.Instance.ExportTravelRequestList(recs)
}

func (i impl) AddComment(companyID, id, authorCompanyUserID string, viewerRole models.CompanyRole, data travelapimodels.CommentData) (view travelapimodels.CommentView, err error) {
	if err = data.Validate(); err != nil {
		return view, err
	}
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return view, err
	}
	if rec == nil {
		return view, models.ErrNotFound
	}
	if !i.canView(*rec, authorCompanyUserID, viewerRole) {
		return view, models.ErrForbidden
	}
	visibility := data.Visibility
	if visibility == "" {
		visibility = "internal"
	}
	commentRec := dbmodels.TravelRequestComment{
		TravelRequestID:     id,
		AuthorCompanyUserID: authorCompanyUserID,
		Visibility:          visibility,
		Body:                data.Body,
	}
	commentID, err := i.store.CreateComment(commentRec)
	if err != nil {
		return view, errors.Wrap(err, "ошибка создания комментария")
	}
	commentRec.ID = commentID
	return travelapimodels.CommentConvert(commentRec), nil
}

func (i impl) Comments(companyID, id, viewerCompanyUserID string, viewerRole models.CompanyRole) (list []travelapimodels.CommentView, err error) {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.ErrNotFound
	}
	if !i.canView(*rec, viewerCompanyUserID, viewerRole) {
		return nil, models.ErrForbidden
	}
	recs, err := i.store.ListComments(id)
	if err != nil {
		return nil, err
	}
	list = make([]travelapimodels.CommentView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, travelapimodels.CommentConvert(rec))
	}
	return list, nil
}
