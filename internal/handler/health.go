package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greetings-portal/web/internal/model"
)

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}
