package common

import (
	"net/http"

	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// Response 统一响应信封
// 成功时 code=200，失败时 code 固定为 500、data 为 null，msg 为固定的本地化文案
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// RespondSuccess sends a success response with message and data.
func RespondSuccess(c *gin.Context, msg status.Message, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Msg:  msg.String(),
		Data: data,
	})
}

// RespondError 发送领域错误响应
// HTTP 状态码按错误种类区分，信封内 code 保持 500
func RespondError(c *gin.Context, err error) {
	kind := status.KindOf(err)
	c.JSON(kind.HTTPStatus(), Response{
		Code: http.StatusInternalServerError,
		Msg:  kind.Message(),
		Data: nil,
	})
}

// RespondBadRequest 发送请求格式错误响应，msg 与领域错误一样使用本地化文案
func RespondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Code: http.StatusInternalServerError,
		Msg:  msg,
		Data: nil,
	})
}
