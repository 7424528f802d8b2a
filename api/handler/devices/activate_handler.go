package devices

import (
	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// Activate 激活设备 POST /api/device/{device_id}/activate
func (h *Handler) Activate(c *gin.Context) {
	deviceID := c.Param("identifier")

	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "请求参数错误")
		return
	}

	record, err := h.engine.Activate(c.Request.Context(), req.Code, deviceID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, status.MsgActivateSuccess, common.NewActivationCodeView(record))
}
