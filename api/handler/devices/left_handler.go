package devices

import (
	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// Left 查询设备剩余可用时间 GET /api/device/{device_id}/left
// 引擎可能算出负的剩余值，在这里钳为 0 再返回
func (h *Handler) Left(c *gin.Context) {
	deviceID := c.Param("identifier")

	left, ts, err := h.engine.DeviceLeft(c.Request.Context(), deviceID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if left < 0 {
		left = 0
	}

	common.RespondSuccess(c, status.MsgSuccess, common.LeftView{
		Left: left,
		Ts:   ts.Unix(),
	})
}
