package dao

import (
	"context"

	"ordermind/ordermind/sources/psql/models"

	"gorm.io/gorm"
)

const DefaultHistoryLimit = 10

// MemoryFilter narrows Read. Empty fields are ignored.
type MemoryFilter struct {
	ResourceID string
	Role       models.Role
}

// MemoryDAO is the append-only store of chat turns.
type MemoryDAO struct {
	DB *gorm.DB
}

func NewMemoryDAO(db *gorm.DB) *MemoryDAO {
	return &MemoryDAO{DB: db}
}

// Init creates the memory table if it does not exist.
func (dao *MemoryDAO) Init(ctx context.Context) error {
	return dao.DB.WithContext(ctx).AutoMigrate(&models.ChatTurn{})
}

// Create inserts one turn and fills its ID. Safe for concurrent use.
func (dao *MemoryDAO) Create(ctx context.Context, turn *models.ChatTurn) error {
	return dao.DB.WithContext(ctx).Create(turn).Error
}

func (dao *MemoryDAO) Read(ctx context.Context, filter MemoryFilter) ([]models.ChatTurn, error) {
	var turns []models.ChatTurn
	db := dao.DB.WithContext(ctx)
	if filter.ResourceID != "" {
		db = db.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	err := db.Order("id asc").Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// ChatHistory returns the first limit turns of a conversation in insertion
// order. A non-positive limit means DefaultHistoryLimit.
func (dao *MemoryDAO) ChatHistory(ctx context.Context, resourceID string, limit int) ([]models.ChatTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var turns []models.ChatTurn
	err := dao.DB.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("id asc").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// ResourceIDs lists every conversation id, most recently written first.
func (dao *MemoryDAO) ResourceIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := dao.DB.WithContext(ctx).
		Model(&models.ChatTurn{}).
		Select("resource_id").
		Group("resource_id").
		Order("MAX(id) DESC").
		Pluck("resource_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteResource removes a whole conversation and reports how many turns went.
func (dao *MemoryDAO) DeleteResource(ctx context.Context, resourceID string) (int64, error) {
	res := dao.DB.WithContext(ctx).Where("resource_id = ?", resourceID).Delete(&models.ChatTurn{})
	return res.RowsAffected, res.Error
}
