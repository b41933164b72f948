package policystore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.TravelPolicy) (id string, err error)
	GetByID(companyID, id string) (rec *dbmodels.TravelPolicy, err error)
	NameExists(companyID, name, excludeID string) (bool, error)
	OldestActive(companyID string) (rec *dbmodels.TravelPolicy, err error)
	List(companyID string) (list []dbmodels.TravelPolicy, err error)
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

func (i impl) Create(rec dbmodels.TravelPolicy) (id string, err error) {
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(companyID, id string) (*dbmodels.TravelPolicy, error) {
	rec := dbmodels.TravelPolicy{}
	err := i.db.
		Where("id = ?", id).
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

func (i impl) NameExists(companyID, name, excludeID string) (bool, error) {
	var count int64
	query := i.db.
		Model(&dbmodels.TravelPolicy{}).
		Where("company_id = ?", companyID).
		Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (i impl) OldestActive(companyID string) (*dbmodels.TravelPolicy, error) {
	rec := dbmodels.TravelPolicy{}
	err := i.db.
		Where("company_id = ?", companyID).
		Where("status = ?", models.PolicyStatusActive).
		Order("created_at ASC").
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

func (i impl) List(companyID string) (list []dbmodels.TravelPolicy, err error) {
	list = []dbmodels.TravelPolicy{}
	err = i.db.
		Where("company_id = ?", companyID).
		Order("created_at ASC").
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
		Model(&dbmodels.TravelPolicy{}).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
