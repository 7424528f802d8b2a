package devices

import (
	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// Unactivate 解绑设备 POST /api/device/{device_id}/unactivate
// 请求里的码必须与设备当前绑定一致，不一致时拒绝且不做任何修改
func (h *Handler) Unactivate(c *gin.Context) {
	deviceID := c.Param("identifier")

	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "请求参数错误")
		return
	}

	record, err := h.engine.ReleaseMatching(c.Request.Context(), deviceID, req.Code)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, status.MsgUnbindSuccess, common.NewActivationCodeView(record))
}
