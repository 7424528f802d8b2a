package licensing

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/anoixa/registration-system/database"
	"github.com/anoixa/registration-system/database/models"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testProvider 测试数据库提供者
type testProvider struct {
	db *gorm.DB
}

func (p *testProvider) DB() *gorm.DB {
	return p.db
}

func (p *testProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *testProvider) Transaction(fn database.TxFunc) error {
	return p.db.Transaction(fn)
}

func (p *testProvider) TransactionWithContext(ctx context.Context, fn database.TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *testProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

func (p *testProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

func (p *testProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *testProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *testProvider) Name() string {
	return "sqlite"
}

// testClock 可手动推进的测试时钟
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// setupEngine 创建带独立内存库和固定时钟的引擎
func setupEngine(t *testing.T) (*Engine, *gorm.DB, *testClock) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Device{}, &models.ActivationCode{})
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	engine := NewEngineWithClock(&testProvider{db: db}, clock.Now)
	return engine, db, clock
}

// seedDevice 插入一台设备，试用期为 trial
func seedDevice(t *testing.T, db *gorm.DB, id string, now time.Time, trial time.Duration) *models.Device {
	device := &models.Device{
		ID:           id,
		Name:         "device " + id,
		SerialNumber: "SN-" + id,
		TrialEndDate: now.Add(trial),
		CreatedAt:    now,
	}
	require.NoError(t, db.Create(device).Error)
	return device
}

// seedCode 插入一枚未使用的激活码
func seedCode(t *testing.T, db *gorm.DB, code string, endHour int64) *models.ActivationCode {
	record := &models.ActivationCode{Code: code, EndHour: endHour}
	require.NoError(t, db.Create(record).Error)
	return record
}

func getCode(t *testing.T, db *gorm.DB, code string) *models.ActivationCode {
	var record models.ActivationCode
	require.NoError(t, db.Where("code = ?", code).First(&record).Error)
	return &record
}

// --- 测试 Activate ---

func TestEngine_Activate(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	bound, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	assert.True(t, bound.Used)
	require.NotNil(t, bound.DeviceID)
	assert.Equal(t, "dev-1", *bound.DeviceID)
	require.NotNil(t, bound.ActivatedAt)
	assert.Equal(t, clock.Now().Unix(), bound.ActivatedAt.Unix())
	assert.Equal(t, int64(48), bound.EndHour)
}

func TestEngine_Activate_DeviceDoesNotExist(t *testing.T) {
	engine, db, _ := setupEngine(t)
	seedCode(t, db, "code-1", 48)

	_, err := engine.Activate(context.Background(), "code-1", "missing")
	assert.ErrorIs(t, err, status.ErrAccountDoesNotExist)
}

func TestEngine_Activate_CodeDoesNotExist(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	_, err := engine.Activate(context.Background(), "missing", "dev-1")
	assert.ErrorIs(t, err, status.ErrActivationCodeDoesNotExist)
}

// TestEngine_Activate_AlreadyUsed 已绑定在别的设备上的码不能再次激活
func TestEngine_Activate_AlreadyUsed(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedDevice(t, db, "dev-2", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	_, err = engine.Activate(context.Background(), "code-1", "dev-2")
	assert.ErrorIs(t, err, status.ErrActivationCodeAlreadyUsed)
}

// TestEngine_Activate_ExpiredReleasedCode 解绑后的码过期从上次激活起算
// 哪怕此刻处于未使用状态，窗口走完就不能再激活
func TestEngine_Activate_ExpiredReleasedCode(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	activatedAt := clock.Now().Add(-10 * time.Hour)
	record := &models.ActivationCode{
		Code:        "code-1",
		Used:        false,
		ActivatedAt: &activatedAt,
		EndHour:     5,
	}
	require.NoError(t, db.Create(record).Error)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	assert.ErrorIs(t, err, status.ErrActivationCodeExpired)

	// 拒绝时不做任何修改
	stored := getCode(t, db, "code-1")
	assert.False(t, stored.Used)
	assert.Equal(t, int64(5), stored.EndHour)
}

// TestEngine_Activate_ReplacesExistingBinding 设备已有绑定时旧码被释放并扣时
func TestEngine_Activate_ReplacesExistingBinding(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)
	seedCode(t, db, "code-2", 72)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	bound, err := engine.Activate(context.Background(), "code-2", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "code-2", bound.Code)

	// 旧码解绑并被扣掉 24 小时
	old := getCode(t, db, "code-1")
	assert.False(t, old.Used)
	assert.Nil(t, old.DeviceID)
	assert.Equal(t, int64(24), old.EndHour)

	// 新码绑定在设备上
	current := getCode(t, db, "code-2")
	assert.True(t, current.Used)
	require.NotNil(t, current.DeviceID)
	assert.Equal(t, "dev-1", *current.DeviceID)
}

// TestEngine_ActivationWindowErosion 完整的侵蚀路径：48 → 24 → 0 → 过期
func TestEngine_ActivationWindowErosion(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedDevice(t, db, "dev-2", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	// 第一次激活
	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	// 解绑扣 24 小时
	released, err := engine.UnbindByDevice(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(24), released.EndHour)

	// 10 小时后换设备重新激活，窗口 24 小时未走完
	clock.Advance(10 * time.Hour)
	bound, err := engine.Activate(context.Background(), "code-1", "dev-2")
	require.NoError(t, err)
	assert.Equal(t, int64(24), bound.EndHour)
	assert.Equal(t, clock.Now().Unix(), bound.ActivatedAt.Unix())

	// 再解绑，窗口归零（不会变成负数）
	released, err = engine.UnbindByDevice(context.Background(), "dev-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), released.EndHour)

	// 窗口为零的码立即过期
	clock.Advance(time.Hour)
	_, err = engine.Activate(context.Background(), "code-1", "dev-1")
	assert.ErrorIs(t, err, status.ErrActivationCodeExpired)
}

// TestEngine_UnbindNeverNegative 窗口不足 24 小时时解绑扣到 0 为止
func TestEngine_UnbindNeverNegative(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 10)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	released, err := engine.UnbindByCode(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), released.EndHour)
}

// --- 测试 UnbindByDevice ---

func TestEngine_UnbindByDevice_NoBinding(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	_, err := engine.UnbindByDevice(context.Background(), "dev-1")
	assert.ErrorIs(t, err, status.ErrActivationCodeDoesNotExist)
}

// --- 测试 ReleaseMatching ---

func TestEngine_ReleaseMatching(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	released, err := engine.ReleaseMatching(context.Background(), "dev-1", "code-1")
	require.NoError(t, err)
	assert.False(t, released.Used)
	assert.Equal(t, int64(24), released.EndHour)
}

// TestEngine_ReleaseMatching_WrongCode 码不一致时拒绝且不做任何修改
func TestEngine_ReleaseMatching_WrongCode(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)
	seedCode(t, db, "code-2", 48)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	_, err = engine.ReleaseMatching(context.Background(), "dev-1", "code-2")
	assert.ErrorIs(t, err, status.ErrActivationCodeNotMatch)

	// 绑定保持原样
	stored := getCode(t, db, "code-1")
	assert.True(t, stored.Used)
	assert.Equal(t, int64(48), stored.EndHour)
	require.NotNil(t, stored.DeviceID)
	assert.Equal(t, "dev-1", *stored.DeviceID)
}

func TestEngine_ReleaseMatching_NoBinding(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	_, err := engine.ReleaseMatching(context.Background(), "dev-1", "code-1")
	assert.ErrorIs(t, err, status.ErrActivationCodeNotMatch)
}

// --- 测试 DeviceLeft ---

func TestEngine_DeviceLeft_BoundCode(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	activatedAt := clock.Now()
	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	clock.Advance(10 * time.Hour)
	left, ts, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, (38 * time.Hour).Milliseconds(), left)
	assert.Equal(t, activatedAt.Add(48*time.Hour).Unix(), ts.Unix())
}

// TestEngine_DeviceLeft_BoundExpired 窗口走完后剩余为负，由表示层钳为 0
func TestEngine_DeviceLeft_BoundExpired(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 5)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	clock.Advance(8 * time.Hour)
	left, _, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Negative(t, left)
}

// TestEngine_DeviceLeft_TrialFallback 没有绑定时落回试用期
func TestEngine_DeviceLeft_TrialFallback(t *testing.T) {
	engine, db, clock := setupEngine(t)
	device := seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	clock.Advance(6 * time.Hour)
	left, ts, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, (18 * time.Hour).Milliseconds(), left)
	assert.Equal(t, device.TrialEndDate.Unix(), ts.Unix())
}

// TestEngine_DeviceLeft_TrialExpired 试用也结束后返回 (0, now)
func TestEngine_DeviceLeft_TrialExpired(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	clock.Advance(48 * time.Hour)
	left, ts, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), left)
	assert.Equal(t, clock.Now().Unix(), ts.Unix())
}

// TestEngine_DeviceLeft_BoundWithoutActivatedAt 防御分支：绑定却没有激活时间
func TestEngine_DeviceLeft_BoundWithoutActivatedAt(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)

	deviceID := "dev-1"
	record := &models.ActivationCode{
		Code:     "code-1",
		Used:     true,
		DeviceID: &deviceID,
		EndHour:  48,
	}
	require.NoError(t, db.Create(record).Error)

	left, ts, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), left)
	assert.Equal(t, clock.Now().Unix(), ts.Unix())
}

func TestEngine_DeviceLeft_DeviceDoesNotExist(t *testing.T) {
	engine, _, _ := setupEngine(t)

	_, _, err := engine.DeviceLeft(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrAccountDoesNotExist)
}

// TestEngine_RebindAfterUnbind_KeepsNewWindowStart 重新激活把窗口起点移到当前时刻
func TestEngine_RebindAfterUnbind_KeepsNewWindowStart(t *testing.T) {
	engine, db, clock := setupEngine(t)
	seedDevice(t, db, "dev-1", clock.Now(), 24*time.Hour)
	seedCode(t, db, "code-1", 48)

	_, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	_, err = engine.UnbindByDevice(context.Background(), "dev-1")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	bound, err := engine.Activate(context.Background(), "code-1", "dev-1")
	require.NoError(t, err)

	left, ts, err := engine.DeviceLeft(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, (24 * time.Hour).Milliseconds(), left)
	assert.Equal(t, bound.ActivatedAt.Add(24*time.Hour).Unix(), ts.Unix())
}
