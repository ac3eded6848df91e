package handlers

import (
	"net/http"

	"mealarena/services"

	"github.com/gin-gonic/gin"
)

type BattleHandler struct {
	battles *services.BattleService
	kitchen *services.KitchenService
}

func NewBattleHandler(battles *services.BattleService, kitchen *services.KitchenService) *BattleHandler {
	return &BattleHandler{
		battles: battles,
		kitchen: kitchen,
	}
}

type PrepCombatantRequest struct {
	Name string `json:"meal" binding:"required"`
}

func (h *BattleHandler) PrepCombatant(c *gin.Context) {
	var req PrepCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	meal, err := h.kitchen.GetMealByName(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.battles.PrepCombatant(*meal); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"combatants": h.battles.Combatants()})
}

func (h *BattleHandler) ClearCombatants(c *gin.Context) {
	h.battles.ClearCombatants()
	c.JSON(http.StatusOK, gin.H{"message": "Combatants cleared"})
}

func (h *BattleHandler) GetCombatants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"combatants": h.battles.Combatants()})
}

func (h *BattleHandler) Battle(c *gin.Context) {
	winner, err := h.battles.Battle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"winner": winner})
}
