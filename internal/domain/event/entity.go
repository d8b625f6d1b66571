package event

import "time"

// Event is one scheduled happening managed from the admin dashboard.
type Event struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Fields    `gorm:"embedded"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Event) TableName() string { return "events" }

// Fields holds every column an editor may change.
type Fields struct {
	Name        string   `gorm:"column:name;not null" json:"name"`
	Description string   `gorm:"column:description;type:text;not null" json:"description"`
	Venue       string   `gorm:"column:venue;not null" json:"venue"`
	IsPaid      bool     `gorm:"column:is_paid;not null" json:"is_paid"`
	IsOnline    bool     `gorm:"column:is_online;not null" json:"is_online"`
	Guest       *string  `gorm:"column:guest" json:"guest"`
	EventDate   Date     `gorm:"column:event_date;type:date;not null" json:"event_date"`
	EventTime   string   `gorm:"column:event_time;type:varchar(5);not null" json:"event_time"`
	Banner      string   `gorm:"column:banner;not null" json:"banner"`
	ImageURLs   []string `gorm:"column:image_urls;serializer:json;type:jsonb" json:"image_urls"`
	IsPrivate   bool     `gorm:"column:is_private;not null" json:"is_private"`
}
