package attendance

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 1MB holds several months
const maxPayloadBytes = 1 << 20

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/attendance/normalize", h.Normalize)
}

// POST /attendance/normalize?tz=
func (h *Handler) Normalize(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "cannot read body"))
		return
	}
	if len(raw) > maxPayloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody(CodeInvalidArgument, "payload too large"))
		return
	}
	res, err := h.svc.Normalize(c.Request.Context(), raw, c.Query("tz"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	if api, ok := err.(*APIError); ok {
		return errorBody(api.Code, api.Message)
	}
	return errorBody(CodeInternal, err.Error())
}
