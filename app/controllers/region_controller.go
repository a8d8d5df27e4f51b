package controllers

import (
	"net/http"
	"strconv"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/app/responses"
	"github.com/cn-address-resolver/app/services"
	"github.com/gin-gonic/gin"
)

// RegionController tra cứu region của gazetteer
type RegionController struct {
	regionService *services.RegionService
}

// NewRegionController tạo mới RegionController
func NewRegionController(regionService *services.RegionService) *RegionController {
	return &RegionController{regionService: regionService}
}

// GetRegion tra cứu region theo adcode (đầy đủ hoặc rút gọn)
func (rc *RegionController) GetRegion(c *gin.Context) {
	detail, err := rc.regionService.Get(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListRegions liệt kê region theo ?level= và ?parent=
func (rc *RegionController) ListRegions(c *gin.Context) {
	level, ok := parseLevelQuery(c)
	if !ok {
		return
	}
	regions, err := rc.regionService.List(level, c.Query("parent"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.RegionListResponse{Total: len(regions), Regions: regions})
}

// SearchRegions tìm region theo ?q=, lọc ?level=, giới hạn ?limit=
func (rc *RegionController) SearchRegions(c *gin.Context) {
	level, ok := parseLevelQuery(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit không hợp lệ: "+raw)
			return
		}
		limit = n
	}

	query := c.Query("q")
	matches, source, err := rc.regionService.Search(query, level, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.RegionSearchResponse{Query: query, Source: source, Matches: matches})
}

func parseLevelQuery(c *gin.Context) (models.Level, bool) {
	raw := c.Query("level")
	if raw == "" {
		return 0, true
	}
	level, err := models.ParseLevel(raw)
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return level, true
}
