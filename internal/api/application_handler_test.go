package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

func seedJob(t *testing.T, db *gorm.DB, title string) database.Job {
	t.Helper()
	job := database.Job{
		Title:        title,
		Department:   "Ops",
		Location:     "Bhubaneswar",
		Type:         "Full-time",
		Description:  "Install rooftop systems",
		Requirements: datatypes.JSON([]byte(`[]`)),
		Benefits:     datatypes.JSON([]byte(`[]`)),
		Lifecycle:    database.LifecycleActive,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func applicationFields(jobID uint) map[string]string {
	return map[string]string{
		"jobId":       fmt.Sprintf("%d", jobID),
		"name":        "Asha Rao",
		"email":       "asha@example.com",
		"phone":       "+91 99999 00000",
		"coverLetter": "I have four years of rooftop experience.",
	}
}

func TestJobAndApplicationRoundTrip(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})
	headers := bearer(adminToken(t, svc))

	// Post the job.
	jobBody := `{"title":"Installer","department":"Ops","location":"X","type":"Full-time","description":"...","requirements":[],"benefits":[]}`
	w := performRequest(t, router, http.MethodPost, "/api/jobs", strings.NewReader(jobBody), jsonHeaders(headers))
	mustStatus(t, w, http.StatusCreated)

	var job jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == 0 || !job.IsActive {
		t.Fatalf("expected generated id and isActive=true, got %+v", job)
	}

	// It shows up on the public listing.
	w = performRequest(t, router, http.MethodGet, "/api/jobs", nil, nil)
	mustStatus(t, w, http.StatusOK)
	var jobs []jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("posted job missing from listing: %+v", jobs)
	}

	// A visitor applies with a resume.
	body, contentType := multipartBody(t, applicationFields(job.ID), "resume", "cv.pdf", "application/pdf", []byte("%PDF-1.4"))
	w = performRequest(t, router, http.MethodPost, "/api/applications", body, map[string]string{"Content-Type": contentType})
	mustStatus(t, w, http.StatusCreated)

	// The admin listing populates the job.
	w = performRequest(t, router, http.MethodGet, "/api/applications", nil, headers)
	mustStatus(t, w, http.StatusOK)
	var applications []applicationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &applications); err != nil {
		t.Fatalf("decode applications: %v", err)
	}
	if len(applications) != 1 {
		t.Fatalf("expected 1 application got %d", len(applications))
	}
	got := applications[0]
	if got.Job == nil || got.Job.Title != "Installer" {
		t.Fatalf("expected populated job on application, got %+v", got.Job)
	}
	if got.Status != database.ApplicationSubmitted {
		t.Fatalf("expected default status Submitted got %q", got.Status)
	}
	if got.Resume == "" {
		t.Fatalf("expected stored resume path")
	}
}

func TestApplicationCreate_RequiresResume(t *testing.T) {
	db := newTestDB(t)
	router, _ := newTestRouter(t, db, newFakeStore(), &fakeSender{})
	job := seedJob(t, db, "Installer")

	body, contentType := multipartBody(t, applicationFields(job.ID), "", "", "", nil)
	w := performRequest(t, router, http.MethodPost, "/api/applications", body, map[string]string{"Content-Type": contentType})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestApplicationCreate_RejectsNonDocumentResume(t *testing.T) {
	db := newTestDB(t)
	router, _ := newTestRouter(t, db, newFakeStore(), &fakeSender{})
	job := seedJob(t, db, "Installer")

	body, contentType := multipartBody(t, applicationFields(job.ID), "resume", "cv.txt", "text/plain", []byte("plain text"))
	w := performRequest(t, router, http.MethodPost, "/api/applications", body, map[string]string{"Content-Type": contentType})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestApplicationCreate_RejectsUnknownJob(t *testing.T) {
	db := newTestDB(t)
	router, _ := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	body, contentType := multipartBody(t, applicationFields(999), "resume", "cv.pdf", "application/pdf", []byte("%PDF"))
	w := performRequest(t, router, http.MethodPost, "/api/applications", body, map[string]string{"Content-Type": contentType})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestApplicationStatus_AnyTransitionAllowed(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})
	job := seedJob(t, db, "Installer")
	headers := bearer(adminToken(t, svc))

	application := database.Application{
		JobID:     job.ID,
		Name:      "Asha Rao",
		Email:     "asha@example.com",
		Phone:     "+91 99999 00000",
		ResumeKey: "resumes/cv.pdf",
		Status:    database.ApplicationSubmitted,
	}
	if err := db.Create(&application).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}

	// Submitted -> Accepted and straight back to Submitted; no transition is forbidden.
	for _, status := range []string{database.ApplicationAccepted, database.ApplicationSubmitted, database.ApplicationRejected} {
		payload := fmt.Sprintf(`{"status":%q}`, status)
		w := performRequest(t, router, http.MethodPut,
			fmt.Sprintf("/api/applications/%d/status", application.ID),
			strings.NewReader(payload), jsonHeaders(headers))
		mustStatus(t, w, http.StatusOK)

		var stored database.Application
		if err := db.First(&stored, application.ID).Error; err != nil {
			t.Fatalf("reload application: %v", err)
		}
		if stored.Status != status {
			t.Fatalf("expected status %q got %q", status, stored.Status)
		}
	}
}

func TestApplicationStatus_RejectsUnknownValue(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})
	job := seedJob(t, db, "Installer")

	application := database.Application{JobID: job.ID, Name: "A", Email: "a@example.com", Phone: "1", ResumeKey: "resumes/cv.pdf", Status: database.ApplicationSubmitted}
	if err := db.Create(&application).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}

	w := performRequest(t, router, http.MethodPut,
		fmt.Sprintf("/api/applications/%d/status", application.ID),
		strings.NewReader(`{"status":"Hired"}`), jsonHeaders(bearer(adminToken(t, svc))))
	mustStatus(t, w, http.StatusBadRequest)
}

func TestJobCreate_RejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	body := `{"title":"Installer","department":"Ops","location":"X","type":"Gig","description":"..."}`
	w := performRequest(t, router, http.MethodPost, "/api/jobs", strings.NewReader(body), jsonHeaders(bearer(adminToken(t, svc))))
	mustStatus(t, w, http.StatusBadRequest)
}
