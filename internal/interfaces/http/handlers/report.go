package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the admin analytics reports
type ReportHandler struct {
	reportService *report.Service
	log           *logrus.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.Service, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		log:           log,
	}
}

// days reads the reporting window; missing or malformed values fall back to the default
func days(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("days"))
	if err != nil {
		return report.ClampDays(0)
	}
	return report.ClampDays(n)
}

// Summary handles GET /admin/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Summary retrieved successfully",
		"data":    summary,
	})
}

// UserActivity handles GET /admin/reports/user-activity
func (h *ReportHandler) UserActivity(c *gin.Context) {
	r, err := h.reportService.UserActivity(c.Request.Context(), days(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User activity report retrieved successfully",
		"data":    r,
	})
}

// Sales handles GET /admin/reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	r, err := h.reportService.Sales(c.Request.Context(), days(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales report retrieved successfully",
		"data":    r,
	})
}

// ExportSales handles GET /admin/reports/sales/export
func (h *ReportHandler) ExportSales(c *gin.Context) {
	window := days(c)
	r, err := h.reportService.Sales(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	book, err := report.SalesWorkbook(r)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	name := fmt.Sprintf("sales-%s-%dd.xlsx", time.Now().UTC().Format("20060102"), window)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := book.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("failed to write sales workbook")
	}
}

// PopularProducts handles GET /admin/reports/popular-products
func (h *ReportHandler) PopularProducts(c *gin.Context) {
	r, err := h.reportService.PopularProducts(c.Request.Context(), days(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Popular products report retrieved successfully",
		"data":    r,
	})
}

// SearchTerms handles GET /admin/reports/search-terms
func (h *ReportHandler) SearchTerms(c *gin.Context) {
	r, err := h.reportService.SearchTerms(c.Request.Context(), days(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Search terms report retrieved successfully",
		"data":    r,
	})
}
