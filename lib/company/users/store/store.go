package companyusersstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.CompanyUser) (id string, err error)
	GetByID(companyID, id string) (rec *dbmodels.CompanyUser, err error)
	FindByUser(companyID, userID string) (rec *dbmodels.CompanyUser, err error)
	FindByEmail(companyID, email string) (rec *dbmodels.CompanyUser, err error)
	ListActiveByRole(companyID string, role models.CompanyRole) (list []dbmodels.CompanyUser, err error)
	List(companyID string) (list []dbmodels.CompanyUser, err error)
	Update(companyID, id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.CompanyUser) (id string, err error) {
	err = i.db.
		Omit("User").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(companyID, id string) (*dbmodels.CompanyUser, error) {
	rec := dbmodels.CompanyUser{}
	err := i.db.
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Preload("User").
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

func (i impl) FindByUser(companyID, userID string) (*dbmodels.CompanyUser, error) {
	rec := dbmodels.CompanyUser{}
	err := i.db.
		Where("user_id = ?", userID).
		Where("company_id = ?", companyID).
		Preload("User").
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

func (i impl) FindByEmail(companyID, email string) (*dbmodels.CompanyUser, error) {
	rec := dbmodels.CompanyUser{}
	err := i.db.
		Joins("JOIN users ON users.id = company_users.user_id").
		Where("users.email = ?", email).
		Where("company_users.company_id = ?", companyID).
		Preload("User").
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

func (i impl) ListActiveByRole(companyID string, role models.CompanyRole) (list []dbmodels.CompanyUser, err error) {
	list = []dbmodels.CompanyUser{}
	err = i.db.
		Where("company_id = ?", companyID).
		Where("role = ?", role).
		Where("status = ?", models.CompanyUserStatusActive).
		Order("created_at ASC").
		Preload("User").
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

func (i impl) List(companyID string) (list []dbmodels.CompanyUser, err error) {
	list = []dbmodels.CompanyUser{}
	err = i.db.
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Preload("User").
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

func (i impl) Update(companyID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.CompanyUser{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
