package models

// Vehicle taxonomy tables. Attribute tables are shared between models through
// many-to-many join tables.

type Make struct {
	ID     uint           `gorm:"primaryKey"`
	Name   string         `gorm:"size:100;uniqueIndex;not null"`
	Models []VehicleModel `gorm:"foreignKey:MakeID;constraint:OnDelete:CASCADE"`
}

type VehicleModel struct {
	ID            uint           `gorm:"primaryKey"`
	MakeID        uint           `gorm:"not null;uniqueIndex:idx_make_model"`
	Make          *Make          `gorm:"foreignKey:MakeID"`
	Name          string         `gorm:"size:100;not null;uniqueIndex:idx_make_model"`
	YearMin       int
	YearMax       int
	Trims         []Trim         `gorm:"many2many:model_trims;joinForeignKey:ModelID;joinReferences:TrimID"`
	BodyTypes     []BodyType     `gorm:"many2many:model_body_types;joinForeignKey:ModelID;joinReferences:BodyTypeID"`
	Transmissions []Transmission `gorm:"many2many:model_transmissions;joinForeignKey:ModelID;joinReferences:TransmissionID"`
	FuelTypes     []FuelType     `gorm:"many2many:model_fuel_types;joinForeignKey:ModelID;joinReferences:FuelTypeID"`
}

func (VehicleModel) TableName() string { return "models" }

type Trim struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

type BodyType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

type Transmission struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

type FuelType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}
