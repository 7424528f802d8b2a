package generator

import (
	"strconv"

	"github.com/anoixa/registration-system/api/common"
	"github.com/anoixa/registration-system/database/repo/activations"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/anoixa/registration-system/utils"
	"github.com/gin-gonic/gin"
)

// Handler 激活码生成处理器（管理端，设计上不做鉴权）
type Handler struct {
	repo *activations.Repository
}

// NewHandler 创建新的激活码生成处理器
func NewHandler(repo *activations.Repository) *Handler {
	return &Handler{repo: repo}
}

// Generate 生成一次性激活码 GET /api/generator/admin/{hour}
// hour 是窗口总时长（小时），必须是非负整数
func (h *Handler) Generate(c *gin.Context) {
	hour, err := strconv.ParseInt(c.Param("hour"), 10, 64)
	if err != nil || hour < 0 {
		common.RespondBadRequest(c, "无效的小时数")
		return
	}

	// 码与自增 ID 无关，防止枚举
	code, err := utils.GenerateRandomToken(24)
	if err != nil {
		common.RespondError(c, status.Wrap(status.KindActivationCodeFailedToGen, err))
		return
	}

	record, err := h.repo.Create(c.Request.Context(), code, hour)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, status.MsgCodeGenerated, common.NewActivationCodeView(record))
}
