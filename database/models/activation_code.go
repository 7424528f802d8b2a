package models

import "time"

// ActivationCode 激活码记录
// 状态不单独存储，始终由字段推导：
//   - 未使用：used=false, device_id/activated_at 为空
//   - 已绑定：used=true, device_id 指向设备，窗口为 [activated_at, activated_at+end_hour)
//   - 已解绑：used=false, device_id 为空，activated_at 保留上次绑定的值（不清除）
//
// activated_at 不清除意味着过期检查始终从首次激活起算，解绑后重新激活不会重置累计期限
//
// device_id 上带 where:used 的部分唯一索引保证同一设备同时至多绑定一个码，
// 两个并发事务用不同的码绑定同一设备时，后提交者触发唯一约束冲突
type ActivationCode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;size:64;not null" json:"code"`
	DeviceID    *string    `gorm:"index;size:64;uniqueIndex:uniq_device_active,where:used" json:"device_id"`
	Used        bool       `gorm:"not null;default:false" json:"used"`
	ActivatedAt *time.Time `json:"activated_at"`
	EndHour     int64      `gorm:"not null" json:"end_hour"`
}

// Deadline 返回累计窗口的截止时间，从未激活过返回 false
func (a *ActivationCode) Deadline() (time.Time, bool) {
	if a.ActivatedAt == nil {
		return time.Time{}, false
	}
	return a.ActivatedAt.Add(time.Duration(a.EndHour) * time.Hour), true
}
