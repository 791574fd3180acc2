package shiftest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	// GET /shift-estimates?date=YYYY-MM-DD|today
	r.GET("/shift-estimates", h.GetEstimates)
}

func (h *Handler) GetEstimates(c *gin.Context) {
	res, err := h.svc.Estimate(c.Request.Context(), c.Query("date"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
