package models

import "time"

type Conference struct {
	ConferenceID int        `gorm:"primaryKey;column:conference_id" json:"conference_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Acronym      string     `gorm:"column:acronym" json:"acronym"`
	StartDate    *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Track struct {
	TrackID      int        `gorm:"primaryKey;column:track_id" json:"track_id"`
	ConferenceID int        `gorm:"column:conference_id" json:"conference_id"`
	Name         string     `gorm:"column:name" json:"name"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Conference *Conference `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
}

// TableName overrides
func (Conference) TableName() string {
	return "conferences"
}

func (Track) TableName() string {
	return "tracks"
}
