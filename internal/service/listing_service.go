package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/pkg/media"
	"realty_backend/pkg/utils/image"
)

var listingManagers = []model.Role{model.RoleAgent, model.RoleAdmin}

type ListingService struct {
	listings ListingStore
	media    media.Store
	log      *zap.Logger
}

func NewListingService(listings ListingStore, store media.Store, log *zap.Logger) *ListingService {
	return &ListingService{listings: listings, media: store, log: log}
}

func (s *ListingService) Search(ctx context.Context, filter repository.ListingFilter) ([]model.ListingView, error) {
	listings, err := s.listings.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.NewListingViews(listings), nil
}

// GetActive returns an Active listing and counts the view.
func (s *ListingService) GetActive(ctx context.Context, id string) (*model.ListingView, error) {
	listing, err := s.listings.IncrementViews(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("No active listing found with that ID.")
	}
	if err != nil {
		return nil, err
	}
	view := model.NewListingView(*listing)
	return &view, nil
}

func (s *ListingService) ListForAgent(ctx context.Context, id Identity) ([]model.ListingView, error) {
	if err := RequireRole(id, listingManagers...); err != nil {
		return nil, err
	}
	listings, err := s.listings.FindByAgent(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return model.NewListingViews(listings), nil
}

func (s *ListingService) Stats(ctx context.Context, id Identity) (repository.AgentStats, error) {
	if err := RequireRole(id, listingManagers...); err != nil {
		return repository.AgentStats{}, err
	}
	return s.listings.StatsForAgent(ctx, id.UserID)
}

// Create stores a Draft listing owned by the caller and uploads its photos.
// If any upload fails the listing and the photos already stored are removed.
func (s *ListingService) Create(ctx context.Context, id Identity, in ListingInput, files []media.File) (*model.ListingView, error) {
	if err := RequireRole(id, listingManagers...); err != nil {
		return nil, err
	}
	fields, err := in.validate(true)
	if err != nil {
		return nil, err
	}
	processed, err := processImages(files)
	if err != nil {
		return nil, err
	}

	listing := fields.newListing()
	listing.AgentID = id.UserID
	listing.Status = model.ListingStatusDraft
	listing.Images = datatypes.JSONSlice[model.ListingImage]{}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if len(processed) > 0 {
		images, err := s.upload(ctx, listing.ID, listing.Title, 0, processed)
		if err == nil {
			_, err = s.listings.Update(ctx, listing.ID, map[string]interface{}{"images": datatypes.JSONSlice[model.ListingImage](images)})
			if err != nil {
				s.discard(ctx, images)
			}
		}
		if err != nil {
			if delErr := s.listings.Delete(ctx, listing.ID); delErr != nil {
				s.log.Error("rollback of listing failed", zap.String("listing_id", listing.ID), zap.Error(delErr))
			}
			return nil, Upstream("Image upload failed. The listing was not created.", err)
		}
	}

	stored, err := s.listings.FindByID(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("listing created", zap.String("listing_id", stored.ID), zap.String("agent_id", id.UserID), zap.Int("images", len(stored.Images)))
	view := model.NewListingView(*stored)
	return &view, nil
}

// Update applies a partial update. New photos are appended after the current
// ones and photos named in removeIDs are dropped and deleted from the store.
func (s *ListingService) Update(ctx context.Context, id Identity, listingID string, in ListingInput, removeIDs []string, files []media.File) (*model.ListingView, error) {
	if err := RequireRole(id, listingManagers...); err != nil {
		return nil, err
	}
	current, err := s.owned(ctx, id, listingID)
	if err != nil {
		return nil, err
	}
	fields, err := in.validate(false)
	if err != nil {
		return nil, err
	}
	processed, err := processImages(files)
	if err != nil {
		return nil, err
	}

	kept, removed := splitImages(current.Images, removeIDs)
	imagesChanged := len(removed) > 0

	var added []model.ListingImage
	if len(processed) > 0 {
		title := current.Title
		if t, ok := fields["title"].(string); ok {
			title = t
		}
		added, err = s.upload(ctx, current.ID, title, nextOrderIndex(current.Images), processed)
		if err != nil {
			return nil, Upstream("Image upload failed. The listing was not updated.", err)
		}
		kept = append(kept, added...)
		imagesChanged = true
	}
	if imagesChanged {
		fields["images"] = datatypes.JSONSlice[model.ListingImage](kept)
	}

	updated, err := s.listings.Update(ctx, current.ID, fields)
	if err != nil {
		s.discard(ctx, added)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("No listing found with that ID.")
		}
		return nil, err
	}

	s.discard(ctx, removed)
	view := model.NewListingView(*updated)
	return &view, nil
}

// Delete removes the listing after a best-effort cleanup of its photos.
func (s *ListingService) Delete(ctx context.Context, id Identity, listingID string) error {
	if err := RequireRole(id, listingManagers...); err != nil {
		return err
	}
	listing, err := s.owned(ctx, id, listingID)
	if err != nil {
		return err
	}

	s.discard(ctx, listing.Images)

	err = s.listings.Delete(ctx, listing.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("No listing found with that ID.")
	}
	if err == nil {
		s.log.Info("listing deleted", zap.String("listing_id", listing.ID), zap.String("by", id.UserID))
	}
	return err
}

func (s *ListingService) owned(ctx context.Context, id Identity, listingID string) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("No listing found with that ID.")
	}
	if err != nil {
		return nil, err
	}
	if err := AuthorizeOwner(id, listing.AgentID); err != nil {
		return nil, err
	}
	return listing, nil
}

// upload stores files in order. On failure the files already stored are
// deleted before the error is returned.
func (s *ListingService) upload(ctx context.Context, folder, title string, firstIndex int, files []media.File) ([]model.ListingImage, error) {
	images := make([]model.ListingImage, 0, len(files))
	for i, f := range files {
		obj, err := s.media.Upload(ctx, folder, f)
		if err != nil {
			s.log.Error("image upload failed", zap.String("listing_id", folder), zap.String("file", f.Filename), zap.Error(err))
			s.discard(ctx, images)
			return nil, err
		}
		index := firstIndex + i
		images = append(images, model.ListingImage{
			URL:        obj.URL,
			ExternalID: obj.ExternalID,
			AltText:    fmt.Sprintf("%s - Photo %d", title, index+1),
			OrderIndex: index,
		})
	}
	return images, nil
}

func (s *ListingService) discard(ctx context.Context, images []model.ListingImage) {
	if len(images) == 0 {
		return
	}
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ExternalID)
	}
	media.DeleteAll(ctx, s.media, s.log, ids)
}

func processImages(files []media.File) ([]media.File, error) {
	out := make([]media.File, 0, len(files))
	for _, f := range files {
		data, err := image.Process(f.Data)
		if err != nil {
			return nil, Validationf("Could not read image %q.", f.Filename)
		}
		out = append(out, media.File{
			Filename:    image.WebPName(f.Filename),
			ContentType: image.ContentType,
			Data:        data,
		})
	}
	return out, nil
}

// splitImages separates the images named in removeIDs from the rest. Ids that
// do not belong to the listing are ignored.
func splitImages(images []model.ListingImage, removeIDs []string) (kept, removed []model.ListingImage) {
	drop := make(map[string]bool, len(removeIDs))
	for _, id := range removeIDs {
		drop[id] = true
	}
	kept = []model.ListingImage{}
	for _, img := range images {
		if drop[img.ExternalID] {
			removed = append(removed, img)
		} else {
			kept = append(kept, img)
		}
	}
	return kept, removed
}

func nextOrderIndex(images []model.ListingImage) int {
	next := 0
	for _, img := range images {
		if img.OrderIndex >= next {
			next = img.OrderIndex + 1
		}
	}
	return next
}
