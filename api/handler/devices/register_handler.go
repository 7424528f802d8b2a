package devices

import (
	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// Register 注册设备 POST /api/device
// 按序列号幂等：同一序列号重复注册返回已有设备，不报错
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "请求参数错误")
		return
	}

	device, err := h.repo.CreateDevice(c.Request.Context(), req.Name, req.SerialNumber)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, status.MsgRegisterSuccess, common.NewDeviceView(device))
}
