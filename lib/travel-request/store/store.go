package trstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.TravelRequest) (id string, err error)
	GetByID(companyID, id string) (rec *dbmodels.TravelRequest, err error)
	GetByReference(companyID, reference string) (rec *dbmodels.TravelRequest, err error)
	ReferenceExists(reference string) (bool, error)
	Update(companyID, id string, updMap map[string]interface{}) error
	UpdateVersioned(companyID, id string, lockVersion int, updMap map[string]interface{}) (updated bool, err error)
	List(companyID string, filter Filter) (list []dbmodels.TravelRequest, rowCount int64, err error)
	ListForApprover(companyID, approverCompanyUserID string, filter Filter) (list []dbmodels.TravelRequest, rowCount int64, err error)
	CreateApproval(rec dbmodels.TravelApproval) (id string, err error)
	ApprovalsByRequest(requestID string) (list []dbmodels.TravelApproval, err error)
	GetApprovalForApprover(requestID, approverCompanyUserID string) (rec *dbmodels.TravelApproval, err error)
	SetApprovalDecision(approvalID string, decision models.ApprovalStatus, comment string) (updated bool, err error)
	CountPendingByLevel(requestID string, level int) (count int64, err error)
	CountPending(requestID string) (count int64, err error)
	CreateComment(rec dbmodels.TravelRequestComment) (id string, err error)
	ListComments(requestID string) (list []dbmodels.TravelRequestComment, err error)
}

type Filter struct {
	Status                models.TRStatus
	EmployeeCompanyUserID string
	Page                  int
	Limit                 int
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TravelRequest) (id string, err error) {
	err = i.db.
		Omit("Employee", "Policy", "Approvals", "Comments").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(companyID, id string) (*dbmodels.TravelRequest, error) {
	rec := dbmodels.TravelRequest{}
	err := i.db.
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Preload("Employee").
		Preload("Employee.User").
		Preload("Approvals").
		Preload("Approvals.Approver").
		Preload("Approvals.Approver.User").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByReference(companyID, reference string) (*dbmodels.TravelRequest, error) {
	rec := dbmodels.TravelRequest{}
	err := i.db.
		Where("reference = ?", reference).
		Where("company_id = ?", companyID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ReferenceExists(reference string) (bool, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.TravelRequest{}).
		Where("reference = ?", reference).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (i impl) Update(companyID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.TravelRequest{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

// UpdateVersioned применяет изменения только если версия записи не менялась
// с момента чтения, и поднимает версию. updated=false означает, что заявку
// успела изменить параллельная операция.
func (i impl) UpdateVersioned(companyID, id string, lockVersion int, updMap map[string]interface{}) (bool, error) {
	updMap["lock_version"] = lockVersion + 1
	tx := i.db.
		Model(&dbmodels.TravelRequest{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Where("lock_version = ?", lockVersion).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) applyFilter(tx *gorm.DB, companyID string, filter Filter) *gorm.DB {
	tx = tx.Where("travel_requests.company_id = ?", companyID)
	if filter.Status != "" {
		tx = tx.Where("travel_requests.status = ?", filter.Status)
	}
	if filter.EmployeeCompanyUserID != "" {
		tx = tx.Where("travel_requests.employee_company_user_id = ?", filter.EmployeeCompanyUserID)
	}
	return tx
}

func (i impl) List(companyID string, filter Filter) (list []dbmodels.TravelRequest, rowCount int64, err error) {
	list = []dbmodels.TravelRequest{}
	tx := i.applyFilter(i.db.Model(&dbmodels.TravelRequest{}), companyID, filter)
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	err = tx.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Preload("Employee").
		Preload("Employee.User").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return list, rowCount, nil
}

// ListForApprover - заявки, по которым у согласующего есть незакрытая задача
func (i impl) ListForApprover(companyID, approverCompanyUserID string, filter Filter) (list []dbmodels.TravelRequest, rowCount int64, err error) {
	list = []dbmodels.TravelRequest{}
	tx := i.applyFilter(i.db.Model(&dbmodels.TravelRequest{}), companyID, filter).
		Joins("JOIN travel_approvals ON travel_approvals.travel_request_id = travel_requests.id").
		Where("travel_approvals.approver_company_user_id = ?", approverCompanyUserID).
		Where("travel_approvals.status = ?", models.ApprovalStatusPending)
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	err = tx.
		Order("travel_requests.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Preload("Employee").
		Preload("Employee.User").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) CreateApproval(rec dbmodels.TravelApproval) (id string, err error) {
	err = i.db.
		Omit("Approver").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ApprovalsByRequest(requestID string) (list []dbmodels.TravelApproval, err error) {
	list = []dbmodels.TravelApproval{}
	err = i.db.
		Where("travel_request_id = ?", requestID).
		Order("level ASC, created_at ASC").
		Preload("Approver").
		Preload("Approver.User").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) GetApprovalForApprover(requestID, approverCompanyUserID string) (*dbmodels.TravelApproval, error) {
	rec := dbmodels.TravelApproval{}
	err := i.db.
		Where("travel_request_id = ?", requestID).
		Where("approver_company_user_id = ?", approverCompanyUserID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// SetApprovalDecision закрывает задачу согласования, если она ещё не закрыта.
// updated=false означает повторное решение.
func (i impl) SetApprovalDecision(approvalID string, decision models.ApprovalStatus, comment string) (bool, error) {
	now := time.Now()
	tx := i.db.
		Model(&dbmodels.TravelApproval{}).
		Where("id = ?", approvalID).
		Where("status = ?", models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     decision,
			"decision":   decision,
			"decided_at": &now,
			"comment":    comment,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) CountPendingByLevel(requestID string, level int) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.TravelApproval{}).
		Where("travel_request_id = ?", requestID).
		Where("level = ?", level).
		Where("status = ?", models.ApprovalStatusPending).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (i impl) CountPending(requestID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.TravelApproval{}).
		Where("travel_request_id = ?", requestID).
		Where("status = ?", models.ApprovalStatusPending).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (i impl) CreateComment(rec dbmodels.TravelRequestComment) (id string, err error) {
	err = i.db.
		Omit("Author").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListComments(requestID string) (list []dbmodels.TravelRequestComment, err error) {
	list = []dbmodels.TravelRequestComment{}
	err = i.db.
		Where("travel_request_id = ?", requestID).
		Order("created_at ASC").
		Preload("Author").
		Preload("Author.User").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}
