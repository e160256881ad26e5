package api

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uploadPolicy constrains one multipart file field: acceptable MIME-type
// prefixes, a size ceiling, and the object-key prefix the file lands under.
type uploadPolicy struct {
	MIMEPrefixes []string
	MaxBytes     int64
	KeyPrefix    string
}

// uploader validates and stores multipart files for the file-bearing
// resources (products, gallery, applications, images).
type uploader struct {
	store     ObjectStore
	clamdAddr string
}

// errNoFile distinguishes "field absent" from validation failures so handlers
// can decide whether the file is required.
var errNoFile = fmt.Errorf("no file in request")

// receive validates the named multipart field against the policy, optionally
// scans it with clamd, stores it, and returns the object key plus the
// declared content type.
func (u *uploader) receive(c *gin.Context, field string, policy uploadPolicy) (objectKey, contentType string, err error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", "", errNoFile
	}

	contentType = file.Header.Get("Content-Type")
	if !matchesPrefix(contentType, policy.MIMEPrefixes) {
		return "", "", fmt.Errorf("unsupported file type %q", contentType)
	}
	if policy.MaxBytes > 0 && file.Size > policy.MaxBytes {
		return "", "", fmt.Errorf("file exceeds %d byte limit", policy.MaxBytes)
	}

	if u.clamdAddr != "" {
		if err := u.scan(file); err != nil {
			return "", "", err
		}
	}

	reader, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer reader.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectKey = fmt.Sprintf("%s/%d-%s%s", policy.KeyPrefix, time.Now().UnixMilli(), uuid.NewString(), ext)

	if err := u.store.UploadFile(c.Request.Context(), objectKey, reader, file.Size, contentType); err != nil {
		return "", "", fmt.Errorf("store upload: %w", err)
	}
	return objectKey, contentType, nil
}

func (u *uploader) scan(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload for scan: %w", err)
	}

	abortChan := make(chan bool)
	scanChan, err := clamd.NewClamd(u.clamdAddr).ScanStream(reader, abortChan)
	reader.Close()
	if err != nil {
		return fmt.Errorf("scan upload: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return fmt.Errorf("malicious file detected")
		}
	}
	return nil
}

func matchesPrefix(contentType string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
