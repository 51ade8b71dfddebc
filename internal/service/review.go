package service

import (
	"context"
	"strings"
	"time"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/pkg/utils"
)

type ReviewService struct {
	reviews  domain.ReviewRepository
	listings domain.ListingRepository
}

func NewReviewService(reviews domain.ReviewRepository, listings domain.ListingRepository) *ReviewService {
	return &ReviewService{reviews: reviews, listings: listings}
}

// SubmitReview 追加评价。评价人信息取提交时刻快照。
// 不做 (user, listing) 去重：重复提交就是两条（既有行为）。
func (s *ReviewService) SubmitReview(ctx context.Context, current *domain.User, listingID string, rating int, comment string) error {
	if current == nil {
		return &AuthorizationError{}
	}
	fields := map[string]string{}
	if rating < 1 || rating > 5 {
		fields["rating"] = "rating must be between 1 and 5"
	}
	if len(strings.TrimSpace(comment)) < 10 {
		fields["comment"] = "comment must be at least 10 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return internalf(err, "lookup listing failed")
	}
	if l == nil {
		return NewValidationError("listingId", "listing not found")
	}

	rv := &domain.Review{
		ID:             utils.NewID(),
		ListingID:      listingID,
		ReviewerID:     current.ID,
		ReviewerName:   current.Name,
		ReviewerAvatar: current.AvatarURL,
		Rating:         rating,
		Comment:        strings.TrimSpace(comment),
		CreatedAt:      time.Now(),
	}
	if err := s.reviews.Append(ctx, rv); err != nil {
		return internalf(err, "append review failed")
	}
	return nil
}

func (s *ReviewService) ListReviews(ctx context.Context, listingID string) ([]domain.Review, error) {
	out, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		return nil, internalf(err, "list reviews failed")
	}
	return out, nil
}
