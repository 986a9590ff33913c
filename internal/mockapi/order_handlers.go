package mockapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

const (
	// minDeliveryLead is how far ahead a delivery must be scheduled
	minDeliveryLead = 60 * time.Minute
	// deliverySlack absorbs clock skew between client and server
	deliverySlack = time.Minute
)

var errEmptyBasket = errors.New("empty basket")

// CreateOrderRequest represents an order request
type CreateOrderRequest struct {
	DeliveryTime time.Time `json:"deliveryTime" binding:"required"`
	Address      string    `json:"address" binding:"required"`
}

// OrderDetail is an order with its lines
type OrderDetail struct {
	models.Order
	Dishes []DishLine `json:"dishes"`
}

func orderDetail(order models.Order) OrderDetail {
	lines := make([]DishLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, DishLine{
			ID:         item.DishID,
			Name:       item.Name,
			Price:      item.Price,
			TotalPrice: item.Price * float64(item.Amount),
			Amount:     item.Amount,
			Image:      item.Image,
		})
	}
	return OrderDetail{Order: order, Dishes: lines}
}

func (s *Server) listOrders(c *gin.Context) {
	orders := []models.Order{}
	if err := s.db.Where("user_id = ?", currentUserID(c)).Order("order_time DESC, id DESC").Find(&orders).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// findOrder loads one of the user's orders, writing 404 when there is none
func (s *Server) findOrder(c *gin.Context, preloads ...string) (*models.Order, bool) {
	id := c.Param("id")

	var order models.Order
	err := models.FindByIDWithPreload(s.db.Where("user_id = ?", currentUserID(c)), id, &order, preloads...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Order with id="+id+" not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("Failed to load order")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return &order, true
}

func (s *Server) getOrder(c *gin.Context) {
	order, ok := s.findOrder(c, "Items")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orderDetail(*order))
}

func (s *Server) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	now := s.now().UTC()
	if req.DeliveryTime.Before(now.Add(minDeliveryLead - deliverySlack)) {
		respondError(c, http.StatusBadRequest, "Invalid delivery time. Delivery time must be more than current datetime on 60 minutes")
		return
	}

	userID := currentUserID(c)
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := loadBasket(tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyBasket
		}

		order = models.Order{
			UserID:       userID,
			DeliveryTime: req.DeliveryTime.UTC(),
			OrderTime:    now,
			Status:       models.OrderInProcess,
			Address:      req.Address,
		}
		for _, item := range items {
			order.Items = append(order.Items, models.OrderItem{
				DishID: item.DishID,
				Name:   item.Dish.Name,
				Price:  item.Dish.Price,
				Amount: item.Amount,
				Image:  item.Dish.Image,
			})
			order.Price += item.Dish.Price * float64(item.Amount)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.BasketItem{}).Error
	})
	if errors.Is(err, errEmptyBasket) {
		respondError(c, http.StatusBadRequest, "Empty basket for user with id="+userID)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create order")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("order_id", order.ID).Float64("price", order.Price).Msg("Order created")
	c.Status(http.StatusOK)
}

func (s *Server) confirmDelivery(c *gin.Context) {
	order, ok := s.findOrder(c)
	if !ok {
		return
	}

	if order.Status == models.OrderDelivered {
		respondError(c, http.StatusBadRequest, "Can't update status for order with id="+order.ID)
		return
	}

	if err := s.db.Model(order).Update("status", models.OrderDelivered).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to confirm delivery")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("order_id", order.ID).Msg("Order delivered")
	c.Status(http.StatusOK)
}
