package models

import "time"

// Device 注册设备
// SerialNumber 全局唯一，是幂等注册的自然键；TrialEndDate 固定为创建时间 +1 天，不会延长
type Device struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:255" json:"name"`
	SerialNumber string    `gorm:"uniqueIndex;size:128;not null" json:"serial_number"`
	TrialEndDate time.Time `gorm:"not null" json:"trial_end_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsInTrialPeriod 是否还在试用期内
func (d *Device) IsInTrialPeriod(now time.Time) bool {
	return d.TrialEndDate.After(now)
}
