package model

type NotificationCategory string

const (
	NotificationQuizSubmitted   NotificationCategory = "quiz_submitted"
	NotificationQuizForceClosed NotificationCategory = "quiz_force_closed"
	NotificationQuizTimeExpired NotificationCategory = "quiz_time_expired"
)

// swagger:model Notification
type Notification struct {
	UUIDBase
	UserID   uint                 `gorm:"index;type:bigint unsigned" json:"userId"`
	Title    string               `gorm:"size:200" json:"title"`
	Message  string               `gorm:"type:text" json:"message"`
	Category NotificationCategory `gorm:"size:40" json:"category"`
	Read     bool                 `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
