package activations

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/registration-system/database/models"
	"github.com/anoixa/registration-system/internal/status"
	"gorm.io/gorm"
)

// unbindPenaltyHours 每次解绑扣减的固定小时数
const unbindPenaltyHours = 24

// Repository 激活码仓库 - 封装所有激活码相关的数据库操作
//
// Release 和 Bind 都是单条带前值谓词的条件更新（乐观 CAS），
// 保证同一激活码、同一设备上的状态迁移至多只有一个写入者成功
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的激活码仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建未使用的激活码，码重复或其他存储错误一律视为生成失败
func (r *Repository) Create(ctx context.Context, code string, endHour int64) (*models.ActivationCode, error) {
	record := models.ActivationCode{
		Code:    code,
		Used:    false,
		EndHour: endHour,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, status.Wrap(status.KindActivationCodeFailedToGen, err)
	}
	return &record, nil
}

// GetByCode 按码查询激活记录
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	var record models.ActivationCode
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.New(status.KindActivationCodeDoesNotExist)
		}
		return nil, status.Wrap(status.KindActivationCodeDoesNotExist, err)
	}
	return &record, nil
}

// GetByDeviceID 查询当前绑定在设备上的激活码
// device_id 只在绑定期间有值，解绑即清空，因此这里只能查到现绑定，查不到历史
func (r *Repository) GetByDeviceID(ctx context.Context, deviceID string) (*models.ActivationCode, error) {
	var record models.ActivationCode
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.New(status.KindActivationCodeDoesNotExist)
		}
		return nil, status.Wrap(status.KindActivationCodeDoesNotExist, err)
	}
	return &record, nil
}

// Release 解绑激活码：used=false、device_id 清空、end_hour 扣 24 小时（下限 0）
// activated_at 保持原值不动。条件更新以读到的旧值为谓词，并发修改时更新 0 行视为失败
func (r *Repository) Release(ctx context.Context, prev *models.ActivationCode) (*models.ActivationCode, error) {
	endHour := prev.EndHour - unbindPenaltyHours
	if endHour < 0 {
		endHour = 0
	}

	result := r.db.WithContext(ctx).
		Model(&models.ActivationCode{}).
		Where("id = ? AND used = ? AND end_hour = ?", prev.ID, prev.Used, prev.EndHour).
		Updates(map[string]interface{}{
			"used":      false,
			"device_id": nil,
			"end_hour":  endHour,
		})
	if result.Error != nil {
		return nil, status.Wrap(status.KindActivationCodeFailedToUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, status.New(status.KindActivationCodeFailedToUpdate)
	}

	released := *prev
	released.Used = false
	released.DeviceID = nil
	released.EndHour = endHour
	return &released, nil
}

// Bind 绑定激活码到设备：activated_at=now、used=true、device_id=deviceID
// 以 used=false 为谓词，两个并发绑定至多一个成功，失败方收到"已被使用"。
// 不同的码并发绑定同一设备时由 uniq_device_active 部分唯一索引兜底，
// 冲突作为存储错误返回"激活码更新失败"
func (r *Repository) Bind(ctx context.Context, prev *models.ActivationCode, deviceID string, now time.Time) (*models.ActivationCode, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ActivationCode{}).
		Where("id = ? AND used = ?", prev.ID, false).
		Updates(map[string]interface{}{
			"activated_at": now,
			"used":         true,
			"device_id":    deviceID,
		})
	if result.Error != nil {
		return nil, status.Wrap(status.KindActivationCodeFailedToUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, status.New(status.KindActivationCodeAlreadyUsed)
	}

	bound := *prev
	bound.ActivatedAt = &now
	bound.Used = true
	bound.DeviceID = &deviceID
	return &bound, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
