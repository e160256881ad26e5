package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"solarsite/internal/database"
)

func seedGalleryItem(t *testing.T, db *gorm.DB, store *fakeStore, title string) database.GalleryItem {
	t.Helper()
	key := "gallery/" + title + ".jpg"
	store.objects[key] = []byte("jpeg")
	store.contentTypes[key] = "image/jpeg"
	item := database.GalleryItem{
		Title:     title,
		MediaKey:  key,
		Category:  "Residential",
		Location:  "Bhubaneswar",
		Type:      "photo",
		Lifecycle: database.LifecycleActive,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed gallery item: %v", err)
	}
	return item
}

func TestGalleryHardDelete_RemovesRecordAndFile(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	router, svc := newTestRouter(t, db, store, &fakeSender{})
	item := seedGalleryItem(t, db, store, "rooftop")

	w := performRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/gallery/%d/hard", item.ID), nil, bearer(adminToken(t, svc)))
	mustStatus(t, w, http.StatusOK)

	// Record is gone.
	w = performRequest(t, router, http.MethodGet, fmt.Sprintf("/api/gallery/%d", item.ID), nil, nil)
	mustStatus(t, w, http.StatusNotFound)

	// The stored file no longer resolves.
	if _, ok := store.objects[item.MediaKey]; ok {
		t.Fatalf("expected media object %q to be deleted", item.MediaKey)
	}
	w = performRequest(t, router, http.MethodGet, uploadPath(item.MediaKey), nil, nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestGallerySoftDelete_KeepsRecordAndFile(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	router, svc := newTestRouter(t, db, store, &fakeSender{})
	item := seedGalleryItem(t, db, store, "carport")

	w := performRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/gallery/%d", item.ID), nil, bearer(adminToken(t, svc)))
	mustStatus(t, w, http.StatusOK)

	// Hidden from the listing.
	w = performRequest(t, router, http.MethodGet, "/api/gallery", nil, nil)
	mustStatus(t, w, http.StatusOK)
	var listing galleryListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 0 {
		t.Fatalf("retired item still listed, total=%d", listing.Total)
	}

	// Record and file both survive.
	w = performRequest(t, router, http.MethodGet, fmt.Sprintf("/api/gallery/%d", item.ID), nil, nil)
	mustStatus(t, w, http.StatusOK)
	if _, ok := store.objects[item.MediaKey]; !ok {
		t.Fatalf("soft delete must not remove the stored media")
	}
}

func TestGalleryList_FiltersByCategoryAndType(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	router, _ := newTestRouter(t, db, store, &fakeSender{})

	seedGalleryItem(t, db, store, "a")
	seedGalleryItem(t, db, store, "b")
	video := database.GalleryItem{
		Title:     "walkthrough",
		MediaKey:  "gallery/walkthrough.mp4",
		Category:  "Commercial",
		Location:  "Cuttack",
		Type:      "video",
		Lifecycle: database.LifecycleActive,
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("seed video: %v", err)
	}

	w := performRequest(t, router, http.MethodGet, "/api/gallery?type=video", nil, nil)
	mustStatus(t, w, http.StatusOK)
	var listing galleryListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 1 || listing.GalleryItems[0].Type != "video" {
		t.Fatalf("expected exactly the video item, got total=%d", listing.Total)
	}

	w = performRequest(t, router, http.MethodGet, "/api/gallery?category=Residential", nil, nil)
	mustStatus(t, w, http.StatusOK)
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 2 {
		t.Fatalf("expected 2 residential items got %d", listing.Total)
	}
}

func TestGalleryCreate_InfersTypeFromMIME(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	fields := map[string]string{
		"title":    "Site walkthrough",
		"category": "Installation Process",
		"location": "Puri",
	}
	body, contentType := multipartBody(t, fields, "media", "walkthrough.mp4", "video/mp4", []byte("mp4"))
	headers := bearer(adminToken(t, svc))
	headers["Content-Type"] = contentType

	w := performRequest(t, router, http.MethodPost, "/api/gallery", body, headers)
	mustStatus(t, w, http.StatusCreated)

	var got galleryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode gallery item: %v", err)
	}
	if got.Type != "video" {
		t.Fatalf("expected inferred type video got %q", got.Type)
	}
}

func TestGalleryCreate_RejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	fields := map[string]string{
		"title":    "Mystery",
		"category": "Rooftops",
		"location": "Puri",
	}
	body, contentType := multipartBody(t, fields, "media", "a.jpg", "image/jpeg", []byte("jpeg"))
	headers := bearer(adminToken(t, svc))
	headers["Content-Type"] = contentType

	w := performRequest(t, router, http.MethodPost, "/api/gallery", body, headers)
	mustStatus(t, w, http.StatusBadRequest)
}

func TestGalleryCreate_RejectsUnsupportedFileType(t *testing.T) {
	db := newTestDB(t)
	router, svc := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	fields := map[string]string{
		"title":    "Malware",
		"category": "Residential",
		"location": "Puri",
	}
	body, contentType := multipartBody(t, fields, "media", "a.exe", "application/x-msdownload", []byte("MZ"))
	headers := bearer(adminToken(t, svc))
	headers["Content-Type"] = contentType

	w := performRequest(t, router, http.MethodPost, "/api/gallery", body, headers)
	mustStatus(t, w, http.StatusBadRequest)
}
