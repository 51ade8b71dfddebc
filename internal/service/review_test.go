package service

import (
	"context"
	"testing"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

func newTestReviewService() (*ReviewService, *fakeReviewRepo, *fakeListingRepo) {
	reviews := &fakeReviewRepo{}
	listings := newFakeListingRepo()
	_ = listings.Create(context.Background(), &domain.Listing{ID: "l1", Status: domain.StatusApproved})
	return NewReviewService(reviews, listings), reviews, listings
}

func reviewer() *domain.User {
	return &domain.User{ID: "r1", Name: "Carol", AvatarURL: "/uploads/avatars/carol.png"}
}

func TestSubmitReview_RequiresAuth(t *testing.T) {
	svc, _, _ := newTestReviewService()

	err := svc.SubmitReview(context.Background(), nil, "l1", 5, "great condition, fast reply")
	if _, ok := err.(*AuthorizationError); !ok {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestSubmitReview_RatingBoundaries(t *testing.T) {
	svc, _, _ := newTestReviewService()

	// 0 和 6 拒绝，1 和 5 接受
	for _, r := range []int{0, 6} {
		err := svc.SubmitReview(context.Background(), reviewer(), "l1", r, "a comment long enough")
		verr, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("rating %d: expected ValidationError, got %v", r, err)
			continue
		}
		if _, has := verr.Fields["rating"]; !has {
			t.Errorf("rating %d: expected error on rating, got %v", r, verr.Fields)
		}
	}
	for _, r := range []int{1, 5} {
		if err := svc.SubmitReview(context.Background(), reviewer(), "l1", r, "a comment long enough"); err != nil {
			t.Errorf("rating %d: unexpected error %v", r, err)
		}
	}
}

func TestSubmitReview_ShortComment(t *testing.T) {
	svc, _, _ := newTestReviewService()

	err := svc.SubmitReview(context.Background(), reviewer(), "l1", 4, "short")
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, has := verr.Fields["comment"]; !has {
		t.Errorf("expected error on comment, got %v", verr.Fields)
	}
}

func TestSubmitReview_UnknownListing(t *testing.T) {
	svc, _, _ := newTestReviewService()

	err := svc.SubmitReview(context.Background(), reviewer(), "ghost", 4, "a comment long enough")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// 每次成功提交恰好加一条；同一用户重复提交不去重（既有行为）
func TestSubmitReview_AppendsWithoutDedup(t *testing.T) {
	svc, reviews, _ := newTestReviewService()
	u := reviewer()

	for i := 1; i <= 2; i++ {
		if err := svc.SubmitReview(context.Background(), u, "l1", 5, "same user, same listing, again"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		n, _ := reviews.CountByListing(context.Background(), "l1")
		if n != int64(i) {
			t.Fatalf("after submit %d: count = %d, want %d", i, n, i)
		}
	}
}

// 评价人信息是提交时刻快照
func TestSubmitReview_SnapshotsReviewer(t *testing.T) {
	svc, reviews, _ := newTestReviewService()
	u := reviewer()

	if err := svc.SubmitReview(context.Background(), u, "l1", 5, "snapshot of the reviewer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, _ := reviews.ListByListing(context.Background(), "l1")
	if len(got) != 1 {
		t.Fatalf("review count = %d, want 1", len(got))
	}
	r := got[0]
	if r.ReviewerID != u.ID || r.ReviewerName != u.Name || r.ReviewerAvatar != u.AvatarURL {
		t.Errorf("snapshot = %+v, want copy of %+v", r, u)
	}
	if r.Rating != 5 {
		t.Errorf("rating = %d, want 5", r.Rating)
	}
}
