package handlers

import (
	"net/http"
	"strconv"

	"mealarena/services"

	"github.com/gin-gonic/gin"
)

type KitchenHandler struct {
	kitchen *services.KitchenService
}

func NewKitchenHandler(kitchen *services.KitchenService) *KitchenHandler {
	return &KitchenHandler{
		kitchen: kitchen,
	}
}

type CreateMealRequest struct {
	Name       string  `json:"meal" binding:"required"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price" binding:"required"`
	Difficulty string  `json:"difficulty" binding:"required"`
}

func (h *KitchenHandler) CreateMeal(c *gin.Context) {
	var req CreateMealRequest
	// A non-numeric price fails here, before the service sees it.
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	meal, err := h.kitchen.CreateMeal(req.Name, req.Cuisine, req.Price, req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, meal)
}

func (h *KitchenHandler) GetMealByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}

	meal, err := h.kitchen.GetMealByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meal)
}

func (h *KitchenHandler) GetMealByName(c *gin.Context) {
	meal, err := h.kitchen.GetMealByName(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meal)
}

func (h *KitchenHandler) DeleteMeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}

	if err := h.kitchen.DeleteMeal(uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted successfully"})
}

func (h *KitchenHandler) ClearMeals(c *gin.Context) {
	if err := h.kitchen.ClearMeals(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Kitchen cleared"})
}

func (h *KitchenHandler) Leaderboard(c *gin.Context) {
	sortBy := c.DefaultQuery("sort_by", services.SortByWins)

	entries, err := h.kitchen.Leaderboard(sortBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
