package chi

import (
	"time"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	matchinguc "github.com/kailas-cloud/foundmatch/internal/usecase/matching"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeNotFound             = "not_found"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeEmbeddingProvider    = "embedding_provider_error"
	codeStorageUnavailable   = "storage_unavailable"
	codeInternal             = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type lostReportRequest struct {
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes"`
	Location   string         `json:"location"`
	LostAt     time.Time      `json:"lost_at"`
	Status     string         `json:"status,omitempty"`
}

type lostReportResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type foundItemRequest struct {
	Category         string         `json:"category"`
	PublicAttributes map[string]any `json:"public_attributes"`
	Location         string         `json:"location"`
	FoundAt          time.Time      `json:"found_at"`
}

type matchResponse struct {
	ID            string    `json:"id"`
	LostReportID  string    `json:"lost_report_id"`
	FoundItemID   string    `json:"found_item_id"`
	Composite     int       `json:"composite_score"`
	DetailScore   int       `json:"detail_score"`
	LocationScore int       `json:"location_score"`
	DateScore     int       `json:"date_score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DaysDiff      *int      `json:"days_diff,omitempty"`
	Created       *bool     `json:"created,omitempty"`
}

type runResponse struct {
	FoundItemID string          `json:"found_item_id"`
	Threshold   int             `json:"threshold"`
	Matches     []matchResponse `json:"matches"`
}

type matchListResponse struct {
	FoundItemID string          `json:"found_item_id"`
	Items       []matchResponse `json:"items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (req *lostReportRequest) toDomain(id string) domain.LostReport {
	return domain.LostReport{
		ID:         id,
		Category:   req.Category,
		Attributes: req.Attributes,
		Location:   req.Location,
		LostAt:     req.LostAt,
		Status:     domain.ReportStatus(req.Status),
	}
}

func (req *foundItemRequest) toDomain(id string) domain.FoundItem {
	return domain.FoundItem{
		ID:               id,
		Category:         req.Category,
		PublicAttributes: req.PublicAttributes,
		Location:         req.Location,
		FoundAt:          req.FoundAt,
	}
}

func matchToResponse(m *domain.Match) matchResponse {
	return matchResponse{
		ID:            m.ID,
		LostReportID:  m.LostReportID,
		FoundItemID:   m.FoundItemID,
		Composite:     m.Composite,
		DetailScore:   m.Components.Detail,
		LocationScore: m.Components.Location,
		DateScore:     m.Components.Date,
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func resultToResponse(r *matchinguc.Result) matchResponse {
	resp := matchToResponse(&r.Match)
	days, created := r.DaysDiff, r.Created
	resp.DaysDiff = &days
	resp.Created = &created
	return resp
}
