package devices

import (
	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// GetBySerialNumber 按序列号查询设备 GET /api/device/{serial_number}
func (h *Handler) GetBySerialNumber(c *gin.Context) {
	serialNumber := c.Param("identifier")

	device, err := h.repo.GetBySerialNumber(c.Request.Context(), serialNumber)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, status.MsgSuccess, common.NewDeviceView(device))
}
