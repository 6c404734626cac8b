package dao

import (
	"context"
	"math"
	"sort"

	"ordermind/ordermind/sources/psql/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VectorMatch is a stored record scored against a query vector.
type VectorMatch struct {
	Record models.VectorRecord
	Score  float64
}

type VectorDAO struct {
	DB *gorm.DB
}

func NewVectorDAO(db *gorm.DB) *VectorDAO {
	return &VectorDAO{DB: db}
}

// Upsert inserts records, replacing text and values of ids already present
// in the same index.
func (dao *VectorDAO) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	return dao.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "index_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "text"}),
	}).Create(&records).Error
}

// Query scores every record of the index by cosine similarity and returns
// the topK best, highest first.
func (dao *VectorDAO) Query(ctx context.Context, indexName string, vector []float64, topK int) ([]VectorMatch, error) {
	var records []models.VectorRecord
	err := dao.DB.WithContext(ctx).Where("index_name = ?", indexName).Find(&records).Error
	if err != nil {
		return nil, err
	}
	matches := make([]VectorMatch, 0, len(records))
	for _, r := range records {
		matches = append(matches, VectorMatch{Record: r, Score: Cosine(vector, r.Values)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (dao *VectorDAO) DeleteIndex(ctx context.Context, indexName string) error {
	return dao.DB.WithContext(ctx).Where("index_name = ?", indexName).Delete(&models.VectorRecord{}).Error
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
