package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/akramasif506/cloudstore3-sub001/internal/core/cache"
	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
	"github.com/akramasif506/cloudstore3-sub001/internal/storage"
	"github.com/akramasif506/cloudstore3-sub001/pkg/utils"
)

type ListingService struct {
	listings domain.ListingRepository
	blobs    storage.BlobStore
	cache    *cache.Cache // 可为 nil（无 redis 时直读）
}

func NewListingService(listings domain.ListingRepository, blobs storage.BlobStore, c *cache.Cache) *ListingService {
	return &ListingService{listings: listings, blobs: blobs, cache: c}
}

// ListingInput 表单字段（multipart）
type ListingInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Subcategory string
	Condition   string
}

// Image 上传的图片；Size==0 视为缺失
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func validateListing(in ListingInput) *ValidationError {
	fields := map[string]string{}
	if len(strings.TrimSpace(in.Name)) < 3 {
		fields["productName"] = "name must be at least 3 characters"
	}
	if len(strings.TrimSpace(in.Description)) < 10 {
		fields["productDescription"] = "description must be at least 10 characters"
	}
	if in.Price <= 0 {
		fields["price"] = "price must be a positive number"
	}
	if strings.TrimSpace(in.Category) == "" {
		fields["category"] = "category is required"
	}
	if strings.TrimSpace(in.Subcategory) == "" {
		fields["subcategory"] = "subcategory is required"
	}
	if _, ok := domain.Conditions[in.Condition]; !ok {
		fields["condition"] = "condition must be one of: new, like_new, good, fair, poor"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateListing 上架管线。前置检查按序短路：
// 登录 → 字段校验 → 图片非空；随后 存图 → 取 URL → 写记录。
// 写记录失败不回滚已传图片（接受的孤儿泄漏，见 DESIGN.md）。
func (s *ListingService) CreateListing(ctx context.Context, current *domain.User, in ListingInput, img Image) (string, error) {
	if current == nil {
		return "", &AuthorizationError{}
	}
	if verr := validateListing(in); verr != nil {
		return "", verr
	}
	if img.Reader == nil || img.Size == 0 {
		return "", NewValidationError("productImage", "image is required")
	}

	id := utils.NewID()
	ext := strings.ToLower(path.Ext(img.Filename))
	blobPath := fmt.Sprintf("listings/%s/%s%s", id, utils.NewID(), ext)

	ref, err := s.blobs.Save(ctx, blobPath, img.Reader, img.ContentType)
	if err != nil {
		return "", internalf(err, "store image failed")
	}

	l := &domain.Listing{
		ID:          id,
		OwnerID:     current.ID,
		OwnerName:   current.Name,
		OwnerPhone:  current.Phone,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Condition:   in.Condition,
		ImageURL:    s.blobs.URL(ref),
		Status:      domain.StatusPendingReview,
		CreatedAt:   time.Now(),
	}
	if err := s.listings.Create(ctx, l); err != nil {
		return "", internalf(err, "create listing failed")
	}
	s.invalidate(ctx, id)
	return id, nil
}

// GetListing 详情，带 redis 读穿透缓存（singleflight 合并回源）
func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if s.cache == nil {
		l, err := s.listings.FindByID(ctx, id)
		if err != nil {
			return nil, internalf(err, "get listing failed")
		}
		return l, nil
	}
	l, err := cache.GetOrLoadJSON[domain.Listing](s.cache, ctx, cacheKey(id), 5*time.Minute,
		func(ctx context.Context) (*domain.Listing, error) {
			return s.listings.FindByID(ctx, id)
		})
	if err != nil {
		return nil, internalf(err, "get listing failed")
	}
	return l, nil
}

func (s *ListingService) Browse(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	// 公开浏览只看已上架
	if f.Status == "" {
		f.Status = domain.StatusApproved
	}
	items, total, err := s.listings.List(ctx, f)
	if err != nil {
		return nil, 0, internalf(err, "list listings failed")
	}
	return items, total, nil
}

func (s *ListingService) MyListings(ctx context.Context, current *domain.User, offset, limit int) ([]domain.Listing, int64, error) {
	if current == nil {
		return nil, 0, &AuthorizationError{}
	}
	items, total, err := s.listings.List(ctx, domain.ListingFilter{
		OwnerID: current.ID, Offset: offset, Limit: limit,
	})
	if err != nil {
		return nil, 0, internalf(err, "list my listings failed")
	}
	return items, total, nil
}

// Moderate 审核流转（admin）：pending_review → approved/rejected
func (s *ListingService) Moderate(ctx context.Context, acting *domain.User, id string, status domain.ListingStatus) error {
	if acting == nil || acting.Role != domain.RoleAdmin {
		return &AuthorizationError{}
	}
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return NewValidationError("status", "status must be approved or rejected")
	}
	l, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return internalf(err, "lookup listing failed")
	}
	if l == nil {
		return NewValidationError("id", "listing not found")
	}
	if err := s.listings.UpdateStatus(ctx, id, status); err != nil {
		return internalf(err, "update status failed")
	}
	s.invalidate(ctx, id)
	return nil
}

func cacheKey(id string) string { return "listing:" + id }

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cacheKey(id))
	}
}
