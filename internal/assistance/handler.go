package assistance

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	// GET /assistance/workers/:worker_id?from=&to=
	r.GET("/assistance/workers/:worker_id", h.GetWorkerAssistance)
}

func (h *Handler) GetWorkerAssistance(c *gin.Context) {
	res, err := h.svc.WorkerAssistance(c.Request.Context(), c.Param("worker_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
