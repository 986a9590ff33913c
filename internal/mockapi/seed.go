package mockapi

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

//go:embed seed/menu.yaml
var menuYAML []byte

type seedDish struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Image       string  `yaml:"image"`
	Vegetarian  bool    `yaml:"vegetarian"`
	Category    string  `yaml:"category"`
}

type seedFile struct {
	Dishes []seedDish `yaml:"dishes"`
}

// parseMenu decodes a seed menu
func parseMenu(data []byte) ([]models.Dish, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed menu: %w", err)
	}

	dishes := make([]models.Dish, 0, len(file.Dishes))
	for _, d := range file.Dishes {
		if !isCategory(d.Category) {
			return nil, fmt.Errorf("seed dish %q has unknown category %q", d.Name, d.Category)
		}
		dishes = append(dishes, models.Dish{
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			Image:       d.Image,
			Vegetarian:  d.Vegetarian,
			Category:    d.Category,
		})
	}
	return dishes, nil
}

// seedMenu loads the embedded menu when the dish table is empty
func seedMenu(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Dish{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count dishes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	dishes, err := parseMenu(menuYAML)
	if err != nil {
		return 0, err
	}
	if err := db.Create(&dishes).Error; err != nil {
		return 0, fmt.Errorf("failed to seed menu: %w", err)
	}
	return len(dishes), nil
}
