package models

import "time"

const ChannelEmail = "email"

type Message struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	LeadID           uint       `gorm:"not null;index" json:"lead_id"`
	Lead             *Lead      `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"-"`
	DealerID         uint       `gorm:"not null;index" json:"dealer_id"`
	MessageType      string     `gorm:"size:50;index" json:"type"`
	Subject          string     `gorm:"size:255" json:"subject"`
	Body             string     `gorm:"type:text;not null" json:"body"`
	GeneratedByAI    bool       `gorm:"column:generated_by_ai;default:false" json:"generated_by_ai"`
	ModifiedByDealer bool       `gorm:"default:false" json:"modified_by_dealer"`
	Sent             bool       `gorm:"default:false;index" json:"sent"`
	SentAt           *time.Time `json:"sent_at"`
	Channel          string     `gorm:"size:20;default:email" json:"channel"`
	CreatedAt        time.Time  `json:"created_at"`
}
