package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/config"
	"mining-dispatch/internal/logger"
)

// FacilityHandler serves facility presets stored as YAML files in one
// directory. A preset's id is its file name without the .yaml suffix.
type FacilityHandler struct {
	facilityDir string
	log         *logger.Logger
}

func NewFacilityHandler(dir string, log *logger.Logger) *FacilityHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Info("using facility preset directory", logger.StringField("dir", dir))
	return &FacilityHandler{facilityDir: dir, log: log}
}

// ListFacilities handles GET /api/v1/facilities
func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	facilities := []models.FacilityInfo{}

	entries, err := os.ReadDir(h.facilityDir)
	if err != nil {
		h.log.WarnContext(c.Request.Context(), "failed to read facility directory",
			logger.StringField("dir", h.facilityDir), logger.ErrorField(err))
		c.JSON(http.StatusOK, gin.H{"facilities": facilities})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		fc, err := h.Load(id)
		if err != nil {
			h.log.WarnContext(c.Request.Context(), "skipping invalid facility preset",
				logger.StringField("file", entry.Name()), logger.ErrorField(err))
			continue
		}

		name := fc.Name
		if name == "" {
			name = id
		}
		facilities = append(facilities, models.FacilityInfo{
			ID:   id,
			Name: name,
			File: filepath.Join(h.facilityDir, entry.Name()),
			Specs: models.FacilitySpecs{
				SizeMW:           fc.SizeMW,
				EfficiencyWPerTH: fc.EfficiencyWPerTH,
				HashrateTH:       fc.ToModel().HashrateTH(),
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"facilities": facilities})
}

// Load reads the preset with the given id.
func (h *FacilityHandler) Load(id string) (config.FacilityConfig, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return config.FacilityConfig{}, fmt.Errorf("%w: invalid facility_file %q", errInvalidRequest, id)
	}
	fc, err := config.LoadFacilityFile(filepath.Join(h.facilityDir, id+".yaml"))
	if err != nil {
		return config.FacilityConfig{}, fmt.Errorf("%w: facility_file %q: %v", errInvalidRequest, id, err)
	}
	return fc, nil
}
