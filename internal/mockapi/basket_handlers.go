package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

// DishLine is a cart or order line. ID is the dish id.
type DishLine struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"totalPrice"`
	Amount     int     `json:"amount"`
	Image      string  `json:"image"`
}

func basketLine(item models.BasketItem) DishLine {
	return DishLine{
		ID:         item.DishID,
		Name:       item.Dish.Name,
		Price:      item.Dish.Price,
		TotalPrice: item.Dish.Price * float64(item.Amount),
		Amount:     item.Amount,
		Image:      item.Dish.Image,
	}
}

// loadBasket returns the user's cart lines with their dishes
func loadBasket(db *gorm.DB, userID string) ([]models.BasketItem, error) {
	var items []models.BasketItem
	err := db.Preload("Dish").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (s *Server) getBasket(c *gin.Context) {
	items, err := loadBasket(s.db, currentUserID(c))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load basket")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	lines := make([]DishLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, basketLine(item))
	}
	c.JSON(http.StatusOK, lines)
}

func (s *Server) addToBasket(c *gin.Context) {
	dish, ok := s.findDish(c, c.Param("dishId"))
	if !ok {
		return
	}

	item := models.BasketItem{UserID: currentUserID(c), DishID: dish.ID, Amount: 1}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "dish_id"}},
		DoUpdates: clause.Assignments(map[string]any{"amount": gorm.Expr("amount + 1")}),
	}).Omit("Dish").Create(&item).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to add to basket")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) removeFromBasket(c *gin.Context) {
	decrease, err := strconv.ParseBool(c.DefaultQuery("increase", "false"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid value for attribute increase")
		return
	}

	dishID := c.Param("dishId")

	var item models.BasketItem
	err = s.db.Where("user_id = ? AND dish_id = ?", currentUserID(c), dishID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Dish with id="+dishID+" not in basket")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load basket item")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if decrease && item.Amount > 1 {
		err = s.db.Model(&item).Update("amount", item.Amount-1).Error
	} else {
		err = s.db.Delete(&item).Error
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to update basket")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusOK)
}
