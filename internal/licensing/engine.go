// Package licensing 实现激活码的状态机：绑定、解绑、重新绑定和过期检查，
// 以及设备剩余可用时间的计算
package licensing

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/registration-system/database"
	"github.com/anoixa/registration-system/database/models"
	"github.com/anoixa/registration-system/database/repo/activations"
	"github.com/anoixa/registration-system/database/repo/devices"
	"github.com/anoixa/registration-system/internal/status"
	"gorm.io/gorm"
)

// Engine 激活引擎
// 所有状态迁移通过仓库层的条件更新完成，Activate 整体跑在一个事务里
type Engine struct {
	provider database.Provider
	now      func() time.Time
}

// NewEngine 创建激活引擎
func NewEngine(provider database.Provider) *Engine {
	return &Engine{
		provider: provider,
		now:      time.Now,
	}
}

// NewEngineWithClock 创建使用指定时钟的激活引擎
func NewEngineWithClock(provider database.Provider, now func() time.Time) *Engine {
	return &Engine{
		provider: provider,
		now:      now,
	}
}

// Activate 将激活码绑定到设备
//
// 流程：校验设备和激活码存在 → 拒绝已使用的码 → 拒绝累计窗口已过期的码
// （过期从任意一次历史激活的 activated_at 起算，解绑不重置）→ 释放设备上
// 现有的绑定（尽力而为）→ CAS 绑定。每次成功绑定都把窗口起点重置到当前时刻，
// 但窗口长度只会因解绑扣减而变短。
func (e *Engine) Activate(ctx context.Context, code, deviceID string) (*models.ActivationCode, error) {
	var bound *models.ActivationCode

	err := e.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		deviceRepo := devices.NewRepository(tx)
		ledger := activations.NewRepository(tx)

		device, err := deviceRepo.GetByID(ctx, deviceID)
		if err != nil {
			return err
		}

		record, err := ledger.GetByCode(ctx, code)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		if record.Used {
			return status.New(status.KindActivationCodeAlreadyUsed)
		}
		if deadline, ok := record.Deadline(); ok && deadline.Before(now) {
			return status.New(status.KindActivationCodeExpired)
		}

		// 设备上已有别的码时先解绑；没有绑定不算错误
		if prev, err := ledger.GetByDeviceID(ctx, device.ID); err == nil {
			_, _ = ledger.Release(ctx, prev)
		}

		bound, err = ledger.Bind(ctx, record, device.ID, now)
		return err
	})
	if err != nil {
		return nil, asDomainError(err, status.KindActivationCodeFailedToUpdate)
	}
	return bound, nil
}

// UnbindByCode 按码解绑
// 这是 24 小时扣减唯一的施加点，无论剩余多少时间每次解绑都恰好扣一次
func (e *Engine) UnbindByCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	ledger := activations.NewRepository(e.provider.DB())

	record, err := ledger.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	released, err := ledger.Release(ctx, record)
	if err != nil {
		return nil, asDomainError(err, status.KindActivationCodeFailedToUpdate)
	}
	return released, nil
}

// UnbindByDevice 解绑设备当前绑定的激活码，没有绑定时返回"激活码不存在"
func (e *Engine) UnbindByDevice(ctx context.Context, deviceID string) (*models.ActivationCode, error) {
	ledger := activations.NewRepository(e.provider.DB())

	record, err := ledger.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return e.UnbindByCode(ctx, record.Code)
}

// ReleaseMatching 校验调用方提供的码与设备当前绑定一致后再解绑
// 设备没有绑定或码不一致都返回"激活码不匹配"，且不做任何修改
func (e *Engine) ReleaseMatching(ctx context.Context, deviceID, code string) (*models.ActivationCode, error) {
	ledger := activations.NewRepository(e.provider.DB())

	record, err := ledger.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, status.Wrap(status.KindActivationCodeNotMatch, err)
	}
	if record.Code != code {
		return nil, status.New(status.KindActivationCodeNotMatch)
	}
	return e.UnbindByCode(ctx, record.Code)
}

// DeviceLeft 计算设备剩余可用毫秒数和到期时间
//
// 有绑定的码按 activated_at+end_hour 计算；没有绑定时落回试用期；
// 试用也结束则返回 (0, now)。剩余值可能为负，由表示层负责钳为 0。
func (e *Engine) DeviceLeft(ctx context.Context, deviceID string) (int64, time.Time, error) {
	ledger := activations.NewRepository(e.provider.DB())
	deviceRepo := devices.NewRepository(e.provider.DB())

	now := e.now().UTC()

	record, err := ledger.GetByDeviceID(ctx, deviceID)
	if err == nil {
		deadline, ok := record.Deadline()
		if !ok {
			// 绑定却没有激活时间，正常流程不会出现，防御性返回 0
			return 0, now, nil
		}
		return deadline.Sub(now).Milliseconds(), deadline, nil
	}
	if !errors.Is(err, status.ErrActivationCodeDoesNotExist) {
		return 0, time.Time{}, err
	}

	device, err := deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if device.IsInTrialPeriod(now) {
		return device.TrialEndDate.Sub(now).Milliseconds(), device.TrialEndDate, nil
	}
	return 0, now, nil
}

// asDomainError 保留领域错误，其余（提交失败等存储层错误）折叠为指定种类
func asDomainError(err error, fallback status.Kind) error {
	if status.KindOf(err) != status.KindUnknown {
		return err
	}
	return status.Wrap(fallback, err)
}
