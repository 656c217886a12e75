package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"spendwise/internal/analytics"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

// DefaultCategory is a category every user starts with.
type DefaultCategory struct {
	Name  string
	Color string
	Icon  string
}

// DefaultCategories are created the first time a user lists categories and has none.
var DefaultCategories = []DefaultCategory{
	{Name: "Food & Dining", Color: "#F59E0B", Icon: "utensils"},
	{Name: "Transportation", Color: "#3B82F6", Icon: "car"},
	{Name: "Housing", Color: "#10B981", Icon: "home"},
	{Name: "Entertainment", Color: "#8B5CF6", Icon: "film"},
	{Name: "Shopping", Color: "#EC4899", Icon: "shopping-bag"},
	{Name: "Utilities", Color: "#6B7280", Icon: "zap"},
	{Name: "Healthcare", Color: "#EF4444", Icon: "heart"},
	{Name: "Personal", Color: "#0EA5E9", Icon: "user"},
	{Name: "Education", Color: "#14B8A6", Icon: "book"},
	{Name: "Travel", Color: "#F97316", Icon: "plane"},
	{Name: "Other", Color: "#6B7280", Icon: "more-horizontal"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db       *gorm.DB
	notifier *ChangeNotifier
	now      Clock
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, notifier *ChangeNotifier) CategoryServicer {
	return &categoryService{db: db, notifier: notifier, now: time.Now}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID, name, color, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if color == "" {
		color = analytics.FallbackColor
	}

	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
		Icon:   icon,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionCreated, category.ID)
	return category, nil
}

// GetUserCategories lists a user's categories by name, creating the defaults
// when the user has none.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(categories) > 0 {
		return categories, nil
	}

	seeded, err := s.seedDefaults(userID)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("Seeded default categories", "user_id", userID, "count", len(seeded))
	s.notify(userID, ActionCreated, "")
	return seeded, nil
}

func (s *categoryService) seedDefaults(userID string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(DefaultCategories))
	for _, d := range DefaultCategories {
		categories = append(categories, models.Category{
			UserID: userID,
			Name:   d.Name,
			Color:  d.Color,
			Icon:   d.Icon,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&categories).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sortCategoriesByName(categories)
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames, recolors or changes the icon of a category.
// Empty arguments leave the field unchanged.
func (s *categoryService) UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" && name != category.Name {
		if err := s.ensureUniqueName(userID, name, categoryID); err != nil {
			return nil, err
		}
		updates["name"] = name
		category.Name = name
	}
	if color != "" {
		updates["color"] = color
		category.Color = color
	}
	if icon != "" {
		updates["icon"] = icon
		category.Icon = icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.notify(userID, ActionUpdated, categoryID)
	}

	return category, nil
}

// DeleteCategory soft-deletes a category. Expenses that reference it are left
// alone and show up as Uncategorized.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify(userID, ActionDeleted, categoryID)
	return nil
}

func (s *categoryService) ensureUniqueName(userID, name, excludeID string) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func (s *categoryService) notify(userID, action, id string) {
	s.notifier.Notify(Change{
		UserID:     userID,
		Resource:   ResourceCategories,
		Action:     action,
		ResourceID: id,
		At:         s.now(),
	})
}

func sortCategoriesByName(categories []models.Category) {
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
}
