package service

import (
	"encoding/base64"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

const defaultUploadMaxBytes = 10 << 20

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

// Sniffed types that legitimately stand in for an allowed declared type:
// OOXML files are zip containers and legacy Office files are OLE containers.
var compatibleSniffedTypes = map[string][]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {"application/zip"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {"application/zip"},
	"application/msword":       {"application/x-ole-storage"},
	"application/vnd.ms-excel": {"application/x-ole-storage"},
}

// UploadService validates uploads and embeds them as data URLs.
type UploadService struct {
	maxBytes int64
	now      func() time.Time
}

// UploadInput describes one received file.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
	UploadedBy  int64
}

// NewUploadService builds the service.
func NewUploadService(maxBytes int64) *UploadService {
	return &UploadService{maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the largest accepted file.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Accept checks size and type and returns the attachment.
func (s *UploadService) Accept(input UploadInput) (*domain.Attachment, error) {
	if input.Content == nil {
		return nil, apperrors.NewValidationError("No file provided", "")
	}
	if input.Size > s.maxBytes {
		return nil, apperrors.NewValidationError("File too large", "max 10MB")
	}
	declared := normalizeContentType(input.ContentType)
	if _, ok := allowedUploadTypes[declared]; !ok {
		return nil, apperrors.NewValidationError("File type not allowed", declared)
	}

	data, err := io.ReadAll(io.LimitReader(input.Content, s.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewValidationError("File too large", "max 10MB")
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("No file provided", "empty file")
	}

	detected := mimetype.Detect(data)
	if !sniffMatches(declared, detected) {
		return nil, apperrors.NewValidationError("File type not allowed", "content does not match "+declared)
	}

	return &domain.Attachment{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Type:       declared,
		Size:       int64(len(data)),
		URL:        "data:" + declared + ";base64," + base64.StdEncoding.EncodeToString(data),
		UploadedAt: s.now().UTC(),
		UploadedBy: input.UploadedBy,
	}, nil
}

// CheckAttachment validates an attachment referenced from a thread message.
// Only base64 data URLs of an allowed type within the size cap pass; the
// returned copy carries the type and size read from the URL itself.
func (s *UploadService) CheckAttachment(a domain.Attachment) (domain.Attachment, error) {
	header, payload, ok := strings.Cut(a.URL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return a, apperrors.NewValidationError("Invalid attachment", "url must be a base64 data URL")
	}
	urlType := normalizeContentType(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	if _, allowed := allowedUploadTypes[urlType]; !allowed {
		return a, apperrors.NewValidationError("File type not allowed", urlType)
	}
	if a.Type != "" && normalizeContentType(a.Type) != urlType {
		return a, apperrors.NewValidationError("Invalid attachment", "type does not match url")
	}
	if int64(len(payload)) > int64(base64.StdEncoding.EncodedLen(int(s.maxBytes))) {
		return a, apperrors.NewValidationError("File too large", "max 10MB")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return a, apperrors.NewValidationError("Invalid attachment", "malformed base64 payload")
	}
	if int64(len(data)) > s.maxBytes {
		return a, apperrors.NewValidationError("File too large", "max 10MB")
	}
	if len(data) == 0 {
		return a, apperrors.NewValidationError("Invalid attachment", "empty file")
	}
	if !sniffMatches(urlType, mimetype.Detect(data)) {
		return a, apperrors.NewValidationError("File type not allowed", "content does not match "+urlType)
	}

	a.Type = urlType
	a.Size = int64(len(data))
	return a, nil
}

func sniffMatches(declared string, detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		base := normalizeContentType(m.String())
		if base == declared {
			return true
		}
		for _, alt := range compatibleSniffedTypes[declared] {
			if base == alt {
				return true
			}
		}
	}
	return false
}

func normalizeContentType(value string) string {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return strings.ToLower(mediaType)
}
