package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/models"
	"github.com/floodlight/altmon/internal/scanner"
)

// AssetCatalogWriter covers the catalog mutations the sync endpoints need
type AssetCatalogWriter interface {
	SaveAsset(ctx context.Context, meta *models.AssetMetadata) error
	DeleteAsset(ctx context.Context, id int64) error
	ListRecentAssets(ctx context.Context, limit int) ([]models.AssetMetadata, error)
}

// ContentCatalogWriter covers the content-record mutations the sync
// endpoints need
type ContentCatalogWriter interface {
	SaveRecord(ctx context.Context, record *models.ContentRecord) error
	DeleteRecord(ctx context.Context, id int64) error
}

// CatalogHandler ingests corpus snapshots (assets and content records) and
// serves the recent-uploads review view
type CatalogHandler struct {
	assets  AssetCatalogWriter
	content ContentCatalogWriter
	rules   models.RuleConfig
	logger  arbor.ILogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(assets AssetCatalogWriter, content ContentCatalogWriter, rules models.RuleConfig, logger arbor.ILogger) *CatalogHandler {
	return &CatalogHandler{
		assets:  assets,
		content: content,
		rules:   rules,
		logger:  logger,
	}
}

// UpsertAssetsHandler handles PUT /api/assets - upserts a batch of asset
// metadata into the catalog
func (h *CatalogHandler) UpsertAssetsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req struct {
		Assets []models.AssetMetadata `json:"assets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved := 0
	for i := range req.Assets {
		if err := h.assets.SaveAsset(r.Context(), &req.Assets[i]); err != nil {
			h.logger.Warn().Int64("asset_id", req.Assets[i].ID).Err(err).Msg("Failed to save asset")
			continue
		}
		saved++
	}

	h.logger.Debug().Int("saved", saved).Int("received", len(req.Assets)).Msg("Asset batch ingested")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"saved":  saved,
	})
}

// DeleteAssetHandler handles DELETE /api/assets/{id}
func (h *CatalogHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/assets/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid asset id")
		return
	}

	if err := h.assets.DeleteAsset(r.Context(), id); err != nil {
		WriteError(w, http.StatusNotFound, "Asset not found")
		return
	}

	WriteSuccess(w, "Asset deleted")
}

// UpsertContentHandler handles PUT /api/content - upserts a batch of
// content records with resolved field trees
func (h *CatalogHandler) UpsertContentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req struct {
		Records []models.ContentRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved := 0
	for i := range req.Records {
		if err := h.content.SaveRecord(r.Context(), &req.Records[i]); err != nil {
			h.logger.Warn().Int64("record_id", req.Records[i].ID).Err(err).Msg("Failed to save content record")
			continue
		}
		saved++
	}

	h.logger.Debug().Int("saved", saved).Int("received", len(req.Records)).Msg("Content batch ingested")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"saved":  saved,
	})
}

// DeleteContentHandler handles DELETE /api/content/{id}
func (h *CatalogHandler) DeleteContentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/content/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	if err := h.content.DeleteRecord(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete content record")
		return
	}

	WriteSuccess(w, "Content record deleted")
}

// RecentAssetsHandler handles GET /api/assets/recent - the most recent
// uploads with a live rule evaluation each, for spot-checking new media
func (h *CatalogHandler) RecentAssetsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	assets, err := h.assets.ListRecentAssets(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list recent assets")
		WriteError(w, http.StatusInternalServerError, "Failed to list recent assets")
		return
	}

	items := make([]map[string]interface{}, 0, len(assets))
	for i := range assets {
		meta := &assets[i]
		altTrimmed := strings.TrimSpace(meta.AltText)
		verdict := scanner.Evaluate(altTrimmed, h.rules)
		items = append(items, map[string]interface{}{
			"asset":        meta,
			"severity":     verdict.Severity,
			"issues":       verdict.Issues,
			"matched_rule": verdict.MatchedRule,
			"alt_length":   utf8.RuneCountInString(altTrimmed),
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
