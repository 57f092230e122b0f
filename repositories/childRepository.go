package repositories

import (
	"PMTCTCare/cache"
	"PMTCTCare/database"
	"PMTCTCare/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ChildCacheExpiry = 7 * 24 * time.Hour
)

type ChildRepository struct {
	cache *cache.Cache
}

func NewChildRepository(cache *cache.Cache) *ChildRepository {
	return &ChildRepository{cache: cache}
}

func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	lockKey := fmt.Sprintf("child_lock:%s_%s", child.MotherID, child.DateOfBirth)
	lockValue := uuid.New().String() // Generate a unique lock value
	// Retry logic for acquiring lock
	maxRetries := 3
	retryDelay := 2 * time.Second
	var locked bool
	var err error
	for i := 0; i < maxRetries; i++ {
		locked, err = database.NewLock(ctx, lockKey, lockValue, 10*time.Second) // Shortened expiry
		if err == nil && locked {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock after retries: %w", err)
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	// A child must hang off a registered mother.
	var mother models.Patient
	if err := database.DB.First(&mother, "id = ?", child.MotherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mother %s not found", child.MotherID)
		}
		return fmt.Errorf("failed to check mother record: %w", err)
	}

	// Obtain the next sequence value
	var nextID string
	if err := database.DB.Raw("SELECT 'CH-' || LPAD(nextval('child_id_seq')::TEXT, 6, '0')").Scan(&nextID).Error; err != nil {
		return fmt.Errorf("failed to obtain next sequence value: %w", err)
	}
	child.ID = nextID

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(child).Error; err != nil {
			if rollbackErr := tx.Exec("SELECT setval('child_id_seq', (SELECT last_value FROM child_id_seq) - 1, false)").Error; rollbackErr != nil {
				return fmt.Errorf("transaction failed and sequence rollback failed: %v, rollback error: %v", err, rollbackErr)
			}
			return fmt.Errorf("failed to create child: %w", err)
		}

		// Delete cache for the newly created child, all children and the mother
		if err := r.cache.Delete(ctx, r.getChildCacheKey(child.ID)); err != nil {
			return fmt.Errorf("failed to delete child cache: %w", err)
		}
		if err := r.cache.DeleteAll(ctx, "children_cache"); err != nil {
			return fmt.Errorf("failed to delete all children cache: %w", err)
		}
		if err := r.cache.Delete(ctx, r.getPatientCacheKey(child.MotherID)); err != nil {
			return fmt.Errorf("failed to delete patient cache: %w", err)
		}
		return r.cache.DeleteAll(ctx, "patients_cache")
	})
}

func (r *ChildRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getChildCacheKey(id)
	cachedChild, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var child models.Child
		if err := json.Unmarshal([]byte(cachedChild), &child); err != nil {
			log.Printf("Failed to unmarshal child from cache: %v", err)
		} else {
			return &child, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get child from cache: %v", err)
	}

	var child models.Child
	err = database.DB.
		Preload("Mother", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, unique_ctc_id, phone")
		}).
		First(&child, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	childJSON, err := json.Marshal(child)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal child: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, childJSON, ChildCacheExpiry); err != nil {
		log.Printf("Failed to set child in cache: %v", err)
	}

	return &child, nil
}

func (r *ChildRepository) GetAll(ctx context.Context) ([]models.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := "children_cache"
	cachedChildren, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var children []models.Child
		if err := json.Unmarshal([]byte(cachedChildren), &children); err == nil {
			return children, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get children from cache: %v", err)
	}

	var children []models.Child
	err = database.DB.
		Order("created_at DESC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all children: %w", err)
	}

	childrenJSON, err := json.Marshal(children)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal children: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, childrenJSON, ChildCacheExpiry); err != nil {
		log.Printf("Failed to set children in cache: %v", err)
	}

	return children, nil
}

func (r *ChildRepository) GetByMotherID(ctx context.Context, motherID string) ([]models.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var children []models.Child
	err := database.DB.
		Where("mother_id = ?", motherID).
		Order("created_at DESC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get children for mother %s: %w", motherID, err)
	}
	return children, nil
}

func (r *ChildRepository) Update(ctx context.Context, child *models.Child) error {
	lockKey := fmt.Sprintf("child_lock:%s", child.ID)
	lockValue := uuid.New().String() // Generate a unique lock value
	// Retry logic for acquiring lock
	maxRetries := 3
	retryDelay := 2 * time.Second
	var locked bool
	var err error
	for i := 0; i < maxRetries; i++ {
		locked, err = database.NewLock(ctx, lockKey, lockValue, 10*time.Second)
		if err == nil && locked {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock after retries: %w", err)
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	// Use ON CONFLICT to handle conflicts
	err = database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "date_of_birth", "risk_level",
			"dbs_history", "bioline_history",
			"next_dbs_date", "next_bioline_date",
			"breastfeeding", "breastfeeding_stop_date", "on_art", "active",
		}),
	}).Save(child).Error
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}

	// Delete cache for the updated child, all children and the mother
	if err := r.cache.Delete(ctx, r.getChildCacheKey(child.ID)); err != nil {
		return fmt.Errorf("failed to delete child cache: %w", err)
	}
	if err := r.cache.DeleteAll(ctx, "children_cache"); err != nil {
		return fmt.Errorf("failed to delete all children cache: %w", err)
	}
	if err := r.cache.Delete(ctx, r.getPatientCacheKey(child.MotherID)); err != nil {
		return fmt.Errorf("failed to delete patient cache: %w", err)
	}
	return r.cache.DeleteAll(ctx, "patients_cache")
}

func (r *ChildRepository) DeleteCache(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, r.getChildCacheKey(id))
}

func (r *ChildRepository) DeleteAllCache(ctx context.Context) error {
	return r.cache.DeleteAll(ctx, "children_cache")
}

func (r *ChildRepository) getChildCacheKey(id string) string {
	return fmt.Sprintf("child_cache:%s", id)
}

func (r *ChildRepository) getPatientCacheKey(patientID string) string {
	return fmt.Sprintf("patient_cache:%s", patientID)
}
