package history

import (
	"context"
	"net/url"

	"subclash/internal/logger"
	"subclash/internal/model"

	"gorm.io/gorm"
)

// DefaultLimit is the retention used when neither the caller nor the config
// names one.
const DefaultLimit = 1000

// Recorder accepts finished conversions. The HTTP layer depends on this
// interface so history can be disabled by passing nil.
type Recorder interface {
	Record(ctx context.Context, c model.Conversion) error
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, c model.Conversion) error {
	c.ID = 0
	return s.db.WithContext(ctx).Create(&c).Error
}

// Recent returns up to limit conversions, newest first.
func (s *Store) Recent(limit int) ([]model.Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []model.Conversion
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.Model(&model.Conversion{}).Count(&n).Error
	return n, err
}

// Prune deletes the oldest rows until at most limit remain and returns the
// number removed. A non-positive limit selects DefaultLimit.
func (s *Store) Prune(limit int) (int64, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	// The newest row that falls outside the window.
	var cutoff model.Conversion
	if err := s.db.Order("id desc").Offset(limit).Limit(1).Find(&cutoff).Error; err != nil {
		return 0, err
	}
	if cutoff.ID == 0 {
		return 0, nil
	}

	res := s.db.Where("id <= ?", cutoff.ID).Delete(&model.Conversion{})
	if res.Error != nil {
		return 0, res.Error
	}
	logger.Log.Infof("Pruned %d conversion records (keeping %d)", res.RowsAffected, limit)
	return res.RowsAffected, nil
}

// HostOf extracts the host of a subscription URL for storage.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
