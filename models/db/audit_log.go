package dbmodels

// AuditLog - журнал событий, только добавление записей
type AuditLog struct {
	BaseModel
	CompanyID string  `gorm:"type:varchar(36);index"`
	Event     string  `gorm:"type:varchar(64);index"`
	Actor     string  `gorm:"type:varchar(64)"`
	Details   JSONMap `gorm:"type:jsonb"`
}
