package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lifecycle tags the deletion state of a record. Soft delete keeps the row
// (and any stored file) but retires it from public listings; hard delete
// removes both, so a purged record never appears here.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleRetired Lifecycle = "retired"
)

// Application status values. Transitions are unconstrained: any value may be
// set at any time by an admin.
const (
	ApplicationSubmitted   = "Submitted"
	ApplicationUnderReview = "Under Review"
	ApplicationRejected    = "Rejected"
	ApplicationAccepted    = "Accepted"
)

// RoleAdmin is the only role the dashboard login accepts.
const RoleAdmin = "admin"

// User represents a dashboard account.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
	Role         string `gorm:"size:32;default:admin"`
}

// Specifications holds the technical details shown on a product card.
type Specifications struct {
	Power      string `gorm:"size:64" json:"power"`
	Efficiency string `gorm:"size:64" json:"efficiency"`
	Dimensions string `gorm:"size:64" json:"dimensions"`
	Weight     string `gorm:"size:64" json:"weight"`
}

// Product represents a solar product or service offering.
type Product struct {
	gorm.Model
	Title          string         `gorm:"size:255"`
	Description    string         `gorm:"type:text"`
	Category       string         `gorm:"size:32;index"`
	Features       datatypes.JSON `gorm:"type:jsonb"`
	Specifications Specifications `gorm:"embedded;embeddedPrefix:spec_"`
	PriceRange     string         `gorm:"size:8"`
	Rating         float64
	ImageKey       string    `gorm:"size:512"`
	Alt            string    `gorm:"size:255"`
	Lifecycle      Lifecycle `gorm:"size:16;index;default:active"`
}

// Job represents an open position listed on the careers page.
type Job struct {
	gorm.Model
	Title        string         `gorm:"size:255"`
	Department   string         `gorm:"size:128"`
	Location     string         `gorm:"size:128"`
	Type         string         `gorm:"size:32"`
	Description  string         `gorm:"type:text"`
	Requirements datatypes.JSON `gorm:"type:jsonb"`
	Benefits     datatypes.JSON `gorm:"type:jsonb"`
	Lifecycle    Lifecycle      `gorm:"size:16;index;default:active"`
}

// Application represents a candidate's submission against a Job.
type Application struct {
	gorm.Model
	JobID       uint `gorm:"index"`
	Job         Job  `gorm:"constraint:OnDelete:CASCADE"`
	Name        string
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:64"`
	ResumeKey   string `gorm:"size:512"`
	CoverLetter string `gorm:"type:text"`
	Status      string `gorm:"size:32;default:Submitted"`
}

// GalleryItem represents a photo or video shown on the gallery page.
type GalleryItem struct {
	gorm.Model
	Title       string    `gorm:"size:255"`
	Description string    `gorm:"type:text"`
	MediaKey    string    `gorm:"size:512"`
	Category    string    `gorm:"size:64;index"`
	Location    string    `gorm:"size:128"`
	Type        string    `gorm:"size:16;index"`
	Lifecycle   Lifecycle `gorm:"size:16;index;default:active"`
}

// Image represents a standalone upload from the admin media library.
type Image struct {
	gorm.Model
	Filename     string `gorm:"size:255"`
	OriginalName string `gorm:"size:255"`
	ObjectKey    string `gorm:"size:512"`
	Size         int64
	UploadedByID uint `gorm:"index"`
	UploadedBy   User `gorm:"constraint:OnDelete:SET NULL"`
	UploadedAt   time.Time
	Lifecycle    Lifecycle `gorm:"size:16;index;default:active"`
}

// AllModels lists every model for AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &Product{}, &Job{}, &Application{}, &GalleryItem{}, &Image{}}
}
