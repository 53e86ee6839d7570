package model

// Track is a song entry belonging to exactly one record.
type Track struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	RecordID int64  `json:"record_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"type:varchar(255);not null"`
	Position string `json:"position" gorm:"type:varchar(10)"` // e.g. A1, B2
	Duration string `json:"duration" gorm:"type:varchar(10)"` // e.g. 3:45
}
