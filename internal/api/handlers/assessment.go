package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/utils"
	"github.com/guardline/restoreaudit/internal/pkg/validator"
	"github.com/guardline/restoreaudit/internal/services"
)

// AssessmentHandler serves assessment runs and snapshot reads
type AssessmentHandler struct {
	service    *services.AssessmentService
	validator  *validator.Validator
	defaultOrg string
}

// NewAssessmentHandler creates an assessment handler.
func NewAssessmentHandler(service *services.AssessmentService, v *validator.Validator, defaultOrg string) *AssessmentHandler {
	return &AssessmentHandler{
		service:    service,
		validator:  v,
		defaultOrg: defaultOrg,
	}
}

// RunAssessmentRequest is the POST /assessments body.
type RunAssessmentRequest struct {
	Org               string          `json:"org"`
	Sources           []SourceRequest `json:"sources" validate:"required,min=1,dive"`
	SourceDir         string          `json:"source_dir"`
	RequiredPlatforms []string        `json:"required_platforms"`
	StalenessDays     int             `json:"staleness_days" validate:"gte=0"`
	PassRateBar       float64         `json:"pass_rate_bar" validate:"gte=0,lte=100"`
	DefaultRTOMinutes int             `json:"default_rto_minutes" validate:"gte=0"`
}

// SourceRequest is one evidence source in the request.
type SourceRequest struct {
	Path string `json:"path" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=surebackup cloudverify restorejob csv"`
}

// Run executes a posture assessment over the requested sources.
func (h *AssessmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	// A source directory may stand in for an explicit source list.
	if len(req.Sources) == 0 && req.SourceDir != "" {
		discovered, err := ingest.Discover(req.SourceDir)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("Source directory unreadable"))
			return
		}
		for _, s := range discovered {
			req.Sources = append(req.Sources, SourceRequest{Path: s.Path, Kind: s.Kind})
		}
	}

	if verrs := h.validator.Validate(req); len(verrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Invalid assessment request", verrs))
		return
	}

	org := req.Org
	if org == "" {
		org = h.defaultOrg
	}

	sources := make([]ingest.Source, 0, len(req.Sources))
	for _, s := range req.Sources {
		sources = append(sources, ingest.Source{Path: s.Path, Kind: s.Kind})
	}

	bundle, err := h.service.Run(r.Context(), services.RunOptions{
		Org:               org,
		Sources:           sources,
		RequiredPlatforms: req.RequiredPlatforms,
		StalenessDays:     req.StalenessDays,
		PassRateBar:       req.PassRateBar,
		DefaultRTOMinutes: req.DefaultRTOMinutes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, bundle)
}

// LatestPosture returns the most recent snapshot for an organization.
func (h *AssessmentHandler) LatestPosture(w http.ResponseWriter, r *http.Request) {
	org := r.URL.Query().Get("org")
	if org == "" {
		org = h.defaultOrg
	}

	snap, err := h.service.Latest(r.Context(), org)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, snap)
}

// ListSnapshots returns snapshots for an organization, newest first.
func (h *AssessmentHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	org := r.URL.Query().Get("org")
	if org == "" {
		org = h.defaultOrg
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			utils.WriteError(w, errors.BadRequest("Invalid limit parameter"))
			return
		}
		limit = parsed
	}

	snaps, err := h.service.List(r.Context(), org, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, snaps)
}

// GetSnapshot returns one snapshot by ID.
func (h *AssessmentHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteError(w, errors.BadRequest("Snapshot ID is required"))
		return
	}

	snap, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, snap)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal("Unexpected error", err))
}
