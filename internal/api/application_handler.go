package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

// ApplicationHandler serves job applications: public submission with a resume
// upload, admin listing with the job preloaded, and status updates.
type ApplicationHandler struct {
	db       *gorm.DB
	uploader *uploader
	policy   uploadPolicy
}

// NewApplicationHandler constructs the handler. maxResumeBytes caps the resume
// upload (10MB in production).
func NewApplicationHandler(db *gorm.DB, store ObjectStore, clamdAddr string, maxResumeBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		db:       db,
		uploader: &uploader{store: store, clamdAddr: clamdAddr},
		policy: uploadPolicy{
			MIMEPrefixes: []string{"application/"},
			MaxBytes:     maxResumeBytes,
			KeyPrefix:    "resumes",
		},
	}
}

type applicationForm struct {
	JobID       uint   `form:"jobId" binding:"required"`
	Name        string `form:"name" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	Phone       string `form:"phone" binding:"required"`
	CoverLetter string `form:"coverLetter"`
}

type applicationResponse struct {
	ID          uint         `json:"id"`
	JobID       uint         `json:"jobId"`
	Job         *jobResponse `json:"job,omitempty"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Resume      string       `json:"resume"`
	CoverLetter string       `json:"coverLetter"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func newApplicationResponse(a database.Application, withJob bool) applicationResponse {
	resp := applicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Resume:      uploadPath(a.ResumeKey),
		CoverLetter: a.CoverLetter,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if withJob && a.Job.ID != 0 {
		job := newJobResponse(a.Job)
		resp.Job = &job
	}
	return resp
}

// Create accepts a public application submission with its resume file.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var form applicationForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, form.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "job not found")
			return
		}
		Internal(c, "failed to query job")
		return
	}

	objectKey, _, err := h.uploader.receive(c, "resume", h.policy)
	if err != nil {
		if errors.Is(err, errNoFile) {
			BadRequest(c, "resume file is required")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	application := database.Application{
		JobID:       form.JobID,
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		ResumeKey:   objectKey,
		CoverLetter: form.CoverLetter,
		Status:      database.ApplicationSubmitted,
	}
	if err := h.db.WithContext(ctx).Create(&application).Error; err != nil {
		Internal(c, "failed to create application")
		return
	}

	c.JSON(http.StatusCreated, newApplicationResponse(application, false))
}

// List returns every application with its job preloaded.
func (h *ApplicationHandler) List(c *gin.Context) {
	var applications []database.Application
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Job").
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		Internal(c, "failed to list applications")
		return
	}

	items := make([]applicationResponse, 0, len(applications))
	for _, a := range applications {
		items = append(items, newApplicationResponse(a, true))
	}
	c.JSON(http.StatusOK, items)
}

type applicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Submitted 'Under Review' Rejected Accepted"`
}

// UpdateStatus sets the application status. Any of the four values may be set
// regardless of the current one; there are no forbidden transitions.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid application id")
		return
	}

	var req applicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var application database.Application
	if err := h.db.WithContext(ctx).First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "application not found")
			return
		}
		Internal(c, "failed to query application")
		return
	}

	if err := h.db.WithContext(ctx).Model(&application).Update("status", req.Status).Error; err != nil {
		Internal(c, "failed to update application status")
		return
	}

	c.JSON(http.StatusOK, newApplicationResponse(application, false))
}
