package devices

import (
	"github.com/anoixa/registration-system/database/repo/devices"
	"github.com/anoixa/registration-system/internal/licensing"
)

// Handler 设备处理器
type Handler struct {
	repo   *devices.Repository
	engine *licensing.Engine
}

// NewHandler 创建新的设备处理器
func NewHandler(repo *devices.Repository, engine *licensing.Engine) *Handler {
	return &Handler{
		repo:   repo,
		engine: engine,
	}
}

// registerRequest 设备注册请求体
type registerRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	SerialNumber string `json:"serial_number" binding:"required,max=128"`
}

// codeRequest 激活/解绑请求体
type codeRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}
