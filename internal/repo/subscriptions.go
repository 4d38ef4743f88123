package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

// CreateSubscription makes userID follow authorID; ErrDuplicate if already following.
func CreateSubscription(ctx context.Context, db *gorm.DB, userID, authorID uint) error {
	s := &domain.Subscription{UserID: userID, AuthorID: authorID}
	if err := db.WithContext(ctx).Omit("User", "Author").Create(s).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteSubscription removes the follow edge; ErrNotFound if it did not exist.
func DeleteSubscription(ctx context.Context, db *gorm.DB, userID, authorID uint) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SubscribedAmong reports which of authorIDs userID follows.
func SubscribedAmong(ctx context.Context, db *gorm.DB, userID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListSubscribedAuthors returns a page of the authors userID follows, most
// recently followed first, and the total count.
func ListSubscribedAuthors(ctx context.Context, db *gorm.DB, userID uint, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.User
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.*").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
