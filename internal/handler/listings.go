package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jetrent/internal/model"
	"jetrent/internal/service"
)

// ListingHandler handles direct listing searches
type ListingHandler struct {
	listingService *service.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// Search handles POST /api/v1/listings/search
func (h *ListingHandler) Search(c *gin.Context) {
	var req model.ListingSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.listingService.Search(c.Request.Context(), req.Slots)
	if err != nil {
		respondError(c, "Search failed", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// URL handles GET /api/v1/listings/url?location=&state=&zipcode=&bedrooms=&budget=
func (h *ListingHandler) URL(c *gin.Context) {
	slots, err := slotsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.listingService.SearchURL(slots)
	if err != nil {
		respondError(c, "Failed to build URL", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func slotsFromQuery(c *gin.Context) (model.SearchSlots, error) {
	var slots model.SearchSlots
	if v := strings.TrimSpace(c.Query("location")); v != "" {
		slots.Location = model.StringPtr(v)
	}
	if v := strings.TrimSpace(c.Query("state")); v != "" {
		slots.State = model.StringPtr(strings.ToUpper(v))
	}
	if v := strings.TrimSpace(c.Query("zipcode")); v != "" {
		slots.Zipcode = model.StringPtr(v)
	}
	if v := c.Query("bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return slots, errInvalidParam("bedrooms")
		}
		slots.Bedrooms = model.IntPtr(n)
	}
	if v := c.Query("budget"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return slots, errInvalidParam("budget")
		}
		slots.Budget = model.Float64Ptr(f)
	}
	return slots, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "Invalid " + string(e) + " parameter"
}
