package devices

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/registration-system/database/models"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 设备仓库 - 封装所有设备相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的设备仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateDevice 注册设备，按序列号幂等
// 通过 ON CONFLICT DO NOTHING 原子插入，序列号已存在时返回已有记录，不报错
func (r *Repository) CreateDevice(ctx context.Context, name, serialNumber string) (*models.Device, error) {
	now := time.Now().UTC()
	device := models.Device{
		ID:           uuid.NewString(),
		Name:         name,
		SerialNumber: serialNumber,
		TrialEndDate: now.Add(24 * time.Hour),
		CreatedAt:    now,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "serial_number"}},
			DoNothing: true,
		}).
		Create(&device)
	if result.Error != nil {
		return nil, status.Wrap(status.KindFailedToConnect, result.Error)
	}
	if result.RowsAffected == 0 {
		// 序列号已被占用，返回已注册的设备
		return r.GetBySerialNumber(ctx, serialNumber)
	}
	return &device, nil
}

// GetBySerialNumber 按序列号查询设备
func (r *Repository) GetBySerialNumber(ctx context.Context, serialNumber string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("serial_number = ?", serialNumber).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.New(status.KindAccountDoesNotExist)
		}
		return nil, status.Wrap(status.KindAccountDoesNotExist, err)
	}
	return &device, nil
}

// GetByID 按设备 ID 查询设备
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.New(status.KindAccountDoesNotExist)
		}
		return nil, status.Wrap(status.KindAccountDoesNotExist, err)
	}
	return &device, nil
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
