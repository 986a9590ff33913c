package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderInProcess = "InProcess"
	OrderDelivered = "Delivered"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"-" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a customer account
type User struct {
	BaseModel
	FullName     string     `json:"fullName" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	BirthDate    *time.Time `json:"birthDate"`
	Gender       string     `json:"gender" gorm:"not null"`
	Address      string     `json:"address"`
	PhoneNumber  string     `json:"phoneNumber"`
	UpdatedAt    time.Time  `json:"-" gorm:"autoUpdateTime"`
}

// Dish is a menu item. Rating is the average of all ratings, nil until the
// first one.
type Dish struct {
	BaseModel
	Name        string   `json:"name" gorm:"not null"`
	Description string   `json:"description"`
	Price       float64  `json:"price" gorm:"not null"`
	Image       string   `json:"image"`
	Vegetarian  bool     `json:"vegetarian" gorm:"not null;default:false"`
	Rating      *float64 `json:"rating"`
	Category    string   `json:"category" gorm:"index;not null"`
}

// Rating is one user's score of a dish
type Rating struct {
	BaseModel
	UserID string `gorm:"uniqueIndex:idx_rating_user_dish;not null"`
	DishID string `gorm:"uniqueIndex:idx_rating_user_dish;not null"`
	Score  int    `gorm:"not null"`
}

// BasketItem is a line of a user's cart
type BasketItem struct {
	BaseModel
	UserID string `gorm:"uniqueIndex:idx_basket_user_dish;not null"`
	DishID string `gorm:"uniqueIndex:idx_basket_user_dish;not null"`
	Amount int    `gorm:"not null;default:1"`

	// Relationships
	Dish Dish `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE"`
}

// Order is a placed order. Its lines keep the price paid at ordering time.
type Order struct {
	BaseModel
	UserID       string    `json:"-" gorm:"index;not null"`
	DeliveryTime time.Time `json:"deliveryTime" gorm:"not null"`
	OrderTime    time.Time `json:"orderTime" gorm:"not null"`
	Status       string    `json:"status" gorm:"not null;default:InProcess"`
	Price        float64   `json:"price" gorm:"not null"`
	Address      string    `json:"address" gorm:"not null"`

	// Relationships
	Items []OrderItem `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a dish line of an order
type OrderItem struct {
	BaseModel
	OrderID string  `gorm:"index;not null"`
	DishID  string  `gorm:"index;not null"`
	Name    string  `gorm:"not null"`
	Price   float64 `gorm:"not null"`
	Amount  int     `gorm:"not null"`
	Image   string
}

// RevokedToken records a token ended by logout until it would have expired
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []any{
		&User{}, &Dish{}, &Rating{}, &BasketItem{}, &Order{}, &OrderItem{}, &RevokedToken{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
