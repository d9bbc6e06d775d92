package repositories

import (
	"context"
	"fmt"

	"ibank/internal/models"

	"ibank/internal/repositories/cache"

	"gorm.io/gorm"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewUserRepository(db *gorm.DB, cacheService *cache.CacheService) UserRepository {
	return &userRepository{
		db:    db,
		cache: cacheService,
	}
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	ctx := context.Background()
	if r.cache != nil {
		if user, err := r.cache.GetUser(ctx, r.cache.GenerateKey("user", "id", id)); err == nil {
			return user, nil
		}
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheUser(ctx, &user); err != nil {
			// Cache failures are not fatal for reads.
			fmt.Printf("Failed to cache user %d: %v\n", user.ID, err)
		}
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
