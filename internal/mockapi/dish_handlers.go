package mockapi

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

// PageSize is the number of dishes on a menu page
const PageSize = 5

var categories = []string{"Wok", "Pizza", "Soup", "Dessert", "Drink"}

// Menu orderings. Ties are broken by id so pages are stable.
var sortOrders = map[string]string{
	"NameAsc":    "name ASC, id ASC",
	"NameDesc":   "name DESC, id ASC",
	"PriceAsc":   "price ASC, id ASC",
	"PriceDesc":  "price DESC, id ASC",
	"RatingAsc":  "rating ASC, id ASC",
	"RatingDesc": "rating DESC, id ASC",
}

func isCategory(s string) bool {
	return slices.Contains(categories, s)
}

// Pagination describes a page of the menu
type Pagination struct {
	Size    int `json:"size"`
	Count   int `json:"count"`
	Current int `json:"current"`
}

// DishPage is the menu listing response
type DishPage struct {
	Dishes     []models.Dish `json:"dishes"`
	Pagination Pagination    `json:"pagination"`
}

func (s *Server) listDishes(c *gin.Context) {
	query := s.db.Model(&models.Dish{})

	if cats := c.QueryArray("categories"); len(cats) > 0 {
		for _, cat := range cats {
			if !isCategory(cat) {
				respondError(c, http.StatusBadRequest, "Invalid value for attribute categories")
				return
			}
		}
		query = query.Where("category IN ?", cats)
	}

	vegetarian, err := strconv.ParseBool(c.DefaultQuery("vegetarian", "false"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid value for attribute vegetarian")
		return
	}
	if vegetarian {
		query = query.Where("vegetarian = ?", true)
	}

	order := "id ASC"
	if sorting := c.Query("sorting"); sorting != "" {
		o, ok := sortOrders[sorting]
		if !ok {
			respondError(c, http.StatusBadRequest, "Invalid value for attribute sorting")
			return
		}
		order = o
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respondError(c, http.StatusBadRequest, "Invalid value for attribute page")
		return
	}

	// Reused for the count and the page
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count dishes")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	pages := int((total + PageSize - 1) / PageSize)
	if page > max(pages, 1) {
		respondError(c, http.StatusBadRequest, "Invalid value for attribute page")
		return
	}

	dishes := []models.Dish{}
	if err := query.Order(order).Offset((page - 1) * PageSize).Limit(PageSize).Find(&dishes).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list dishes")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, DishPage{
		Dishes: dishes,
		Pagination: Pagination{
			Size:    PageSize,
			Count:   pages,
			Current: page,
		},
	})
}

// findDish loads a dish, writing 404 when it does not exist
func (s *Server) findDish(c *gin.Context, id string) (*models.Dish, bool) {
	var dish models.Dish
	err := models.FindByID(s.db, id, &dish)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Dish with id="+id+" not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error().Err(err).Str("dish_id", id).Msg("Failed to load dish")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return &dish, true
}

func (s *Server) getDish(c *gin.Context) {
	dish, ok := s.findDish(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dish)
}

// hasReceivedDish reports whether the user has a delivered order containing
// the dish
func (s *Server) hasReceivedDish(userID, dishID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.dish_id = ?", userID, models.OrderDelivered, dishID).
		Count(&count).Error
	return count > 0, err
}

func (s *Server) checkRating(c *gin.Context) {
	dish, ok := s.findDish(c, c.Param("id"))
	if !ok {
		return
	}

	allowed, err := s.hasReceivedDish(currentUserID(c), dish.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check rating permission")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, allowed)
}

func (s *Server) setRating(c *gin.Context) {
	score, err := strconv.Atoi(c.Query("ratingScore"))
	if err != nil || score < 0 || score > 10 {
		respondError(c, http.StatusBadRequest, "Invalid value for attribute ratingScore")
		return
	}

	dish, ok := s.findDish(c, c.Param("id"))
	if !ok {
		return
	}

	userID := currentUserID(c)
	allowed, err := s.hasReceivedDish(userID, dish.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check rating permission")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "User can't set rating on dish that wasn't ordered")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rating := models.Rating{UserID: userID, DishID: dish.ID, Score: score}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dish_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score"}),
		}).Create(&rating).Error; err != nil {
			return err
		}

		var avg float64
		if err := tx.Model(&models.Rating{}).
			Where("dish_id = ?", dish.ID).
			Select("AVG(score)").
			Scan(&avg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Dish{}).Where("id = ?", dish.ID).Update("rating", avg).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to set rating")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("dish_id", dish.ID).Int("score", score).Msg("Dish rated")
	c.Status(http.StatusOK)
}
