package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
)

// StrategyHandler lists what the registry can build
type StrategyHandler struct {
	registry *strategy.Registry
}

func NewStrategyHandler(reg *strategy.Registry) *StrategyHandler {
	return &StrategyHandler{registry: reg}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	infos := h.registry.Describe()
	strategies := make([]models.StrategyInfo, 0, len(infos))
	for _, info := range infos {
		params := make([]models.ParameterInfo, 0, len(info.Params))
		for _, p := range info.Params {
			params = append(params, models.ParameterInfo{
				Name:        p.Name,
				Type:        p.Type,
				Description: p.Description,
				Default:     p.Default,
			})
		}
		strategies = append(strategies, models.StrategyInfo{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  params,
		})
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

// ListContractBlocks handles GET /api/v1/contract-blocks
func ListContractBlocks(c *gin.Context) {
	blocks := []models.ContractBlockInfo{
		{ID: string(model.Block7x24), Description: "Every hour"},
		{ID: string(model.Block5x16), Description: "Monday-Friday 06:00-22:00"},
		{ID: string(model.Block2x16), Description: "Saturday-Sunday 06:00-22:00"},
		{ID: string(model.Block7x8), Description: "Every day 22:00-06:00"},
	}
	c.JSON(http.StatusOK, gin.H{"contract_blocks": blocks})
}
