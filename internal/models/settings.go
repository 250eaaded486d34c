package models

// StoreSettings is a singleton row (ID always 1) holding the branch
// profile shown on kiosk screens and in customer messages.
type StoreSettings struct {
	ID               uint   `gorm:"primaryKey"`
	StoreName        string `gorm:"size:100;default:QuickOil"`
	Phone            string `gorm:"size:20"`
	Address          string `gorm:"size:200"`
	EstimatedMinutes int    `gorm:"default:30"`
	WelcomeMessage   string `gorm:"type:text"`
}
