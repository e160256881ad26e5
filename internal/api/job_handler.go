package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

// JobHandler serves the careers page listings.
type JobHandler struct {
	db *gorm.DB
}

func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{db: db}
}

type jobRequest struct {
	Title        string   `json:"title" binding:"required"`
	Department   string   `json:"department" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Type         string   `json:"type" binding:"required,oneof=Full-time Part-time Contract Internship"`
	Description  string   `json:"description" binding:"required"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits"`
}

type jobResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Benefits     []string  `json:"benefits"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newJobResponse(j database.Job) jobResponse {
	var requirements, benefits []string
	_ = json.Unmarshal(j.Requirements, &requirements)
	_ = json.Unmarshal(j.Benefits, &benefits)
	if requirements == nil {
		requirements = []string{}
	}
	if benefits == nil {
		benefits = []string{}
	}
	return jobResponse{
		ID:           j.ID,
		Title:        j.Title,
		Department:   j.Department,
		Location:     j.Location,
		Type:         j.Type,
		Description:  j.Description,
		Requirements: requirements,
		Benefits:     benefits,
		IsActive:     j.Lifecycle == database.LifecycleActive,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// List returns all active job listings.
func (h *JobHandler) List(c *gin.Context) {
	var jobs []database.Job
	if err := h.db.WithContext(c.Request.Context()).
		Where("lifecycle = ?", database.LifecycleActive).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		Internal(c, "failed to list jobs")
		return
	}

	items := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, newJobResponse(j))
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one job by id.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	var job database.Job
	if err := h.db.WithContext(c.Request.Context()).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		Internal(c, "failed to query job")
		return
	}

	c.JSON(http.StatusOK, newJobResponse(job))
}

// Create adds a new job listing.
func (h *JobHandler) Create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requirements, err := json.Marshal(orEmpty(req.Requirements))
	if err != nil {
		Internal(c, "failed to encode requirements")
		return
	}
	benefits, err := json.Marshal(orEmpty(req.Benefits))
	if err != nil {
		Internal(c, "failed to encode benefits")
		return
	}

	job := database.Job{
		Title:        req.Title,
		Department:   req.Department,
		Location:     req.Location,
		Type:         req.Type,
		Description:  req.Description,
		Requirements: requirements,
		Benefits:     benefits,
		Lifecycle:    database.LifecycleActive,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&job).Error; err != nil {
		Internal(c, "failed to create job")
		return
	}

	c.JSON(http.StatusCreated, newJobResponse(job))
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
