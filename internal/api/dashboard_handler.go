package api

import (
	"net/http"
	"time"

	"adminpanel/internal/chart"
	"adminpanel/internal/devserver"
	"adminpanel/internal/dto/req"
	"adminpanel/internal/dto/resp"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	admins *devserver.Admins
	now    func() time.Time
}

func NewDashboardHandler(admins *devserver.Admins) *DashboardHandler {
	return &DashboardHandler{admins: admins, now: time.Now}
}

func (h *DashboardHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	resp.Native(c, http.StatusOK, v1.DashboardStats{
		TotalUsers:           1280,
		TotalAdmins:          h.admins.Count(),
		ActiveCampaigns:      7,
		PendingEnquiries:     12,
		PendingVerifications: 4,
		Revenue:              48250,
	})
}

// Series answers an analytics call with a deterministic series for the
// requested window. series names the default category.
func (h *DashboardHandler) Series(series string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q req.AnalyticsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			resp.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		f := chart.Filter{Range: constraints.TimeRange(q.Range), Category: q.Category}
		if f.Category == "" {
			f.Category = series
		}

		var start, end time.Time
		if q.StartDate != "" && q.EndDate != "" {
			s, err1 := time.Parse(time.DateOnly, q.StartDate)
			e, err2 := time.Parse(time.DateOnly, q.EndDate)
			if err1 != nil || err2 != nil || e.Before(s) {
				resp.Fail(c, http.StatusBadRequest, "Invalid date range")
				return
			}
			start, end = s, e
		} else {
			var err error
			start, end, err = chart.Resolve(f, h.now())
			if err != nil {
				resp.Fail(c, http.StatusBadRequest, err.Error())
				return
			}
		}

		resp.Native(c, http.StatusOK, v1.ChartData{Points: chart.Synthetic(f, start, end)})
	}
}
