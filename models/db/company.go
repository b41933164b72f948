package dbmodels

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"travel-tools-backend/models"
)

type Company struct {
	BaseModel
	Name     string               `gorm:"type:varchar(255)"`
	Slug     string               `gorm:"type:varchar(120);uniqueIndex"`
	Domain   string               `gorm:"type:varchar(255)"`
	Country  string               `gorm:"type:varchar(2)"`
	Currency string               `gorm:"type:varchar(3)"`
	Status   models.CompanyStatus `gorm:"type:varchar(32);default:active"`
	Settings JSONMap              `gorm:"type:jsonb"`
}

func (c *Company) Validate() error {
	if c.Name == "" {
		return errors.New("не указано название компании")
	}
	return nil
}

// User - учётная запись. Членства в компаниях ссылаются на неё,
// один пользователь может состоять в нескольких компаниях.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex"`
	Name         string `gorm:"type:varchar(100)"`
	PasswordHash string `gorm:"type:varchar(128)"`
	IsActive     bool
	LastLogin    time.Time
}

func (u User) GetFullName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// CompanyUser - членство пользователя в компании. Заявки и задачи согласования
// ссылаются на членство, а не на пользователя напрямую.
type CompanyUser struct {
	BaseCompanyModel
	UserID         string                   `gorm:"type:varchar(36);index"`
	User           *User                    `gorm:"foreignKey:UserID"`
	Role           models.CompanyRole       `gorm:"type:varchar(32)"`
	Status         models.CompanyUserStatus `gorm:"type:varchar(32);default:active"`
	Title          string                   `gorm:"type:varchar(128)"`
	CostCenterCode string                   `gorm:"type:varchar(64)"`
	InvitedAt      *time.Time
	JoinedAt       *time.Time
}

func (c CompanyUser) GetDisplayName() string {
	if c.User != nil {
		return c.User.GetFullName()
	}
	return fmt.Sprintf("членство %s", c.ID)
}

type CompanyInvitation struct {
	BaseCompanyModel
	InviterCompanyUserID string                  `gorm:"type:varchar(36)"`
	Inviter              *CompanyUser            `gorm:"foreignKey:InviterCompanyUserID"`
	Email                string                  `gorm:"type:varchar(255);index"`
	Role                 models.CompanyRole      `gorm:"type:varchar(32)"`
	Token                string                  `gorm:"type:varchar(120);uniqueIndex"`
	ExpiresAt            time.Time
	Status               models.InvitationStatus `gorm:"type:varchar(32);default:pending"`
}
