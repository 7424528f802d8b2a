package common

import (
	"time"

	"github.com/anoixa/registration-system/database/models"
)

// 响应 DTO：时间戳序列化为 Unix 秒，空时间戳用 -1 表示

// DeviceView 设备响应体
type DeviceView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	TrialEndDate int64  `json:"trial_end_date"`
	CreatedAt    int64  `json:"created_at"`
}

// ActivationCodeView 激活码响应体
type ActivationCodeView struct {
	ID          uint    `json:"id"`
	Code        string  `json:"code"`
	DeviceID    *string `json:"device_id"`
	Used        bool    `json:"used"`
	ActivatedAt int64   `json:"activated_at"`
	EndHour     int64   `json:"end_hour"`
}

// LeftView 剩余时间响应体，left 单位毫秒，ts 为到期时间戳
type LeftView struct {
	Left int64 `json:"left"`
	Ts   int64 `json:"ts"`
}

// NewDeviceView 构建设备响应体
func NewDeviceView(device *models.Device) DeviceView {
	return DeviceView{
		ID:           device.ID,
		Name:         device.Name,
		SerialNumber: device.SerialNumber,
		TrialEndDate: device.TrialEndDate.Unix(),
		CreatedAt:    device.CreatedAt.Unix(),
	}
}

// NewActivationCodeView 构建激活码响应体
func NewActivationCodeView(record *models.ActivationCode) ActivationCodeView {
	return ActivationCodeView{
		ID:          record.ID,
		Code:        record.Code,
		DeviceID:    record.DeviceID,
		Used:        record.Used,
		ActivatedAt: unixOrAbsent(record.ActivatedAt),
		EndHour:     record.EndHour,
	}
}

// unixOrAbsent 可空时间戳转 Unix 秒，空值返回 -1
func unixOrAbsent(t *time.Time) int64 {
	if t == nil {
		return -1
	}
	return t.Unix()
}
