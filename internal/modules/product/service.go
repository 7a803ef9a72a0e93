package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velorahq/velora-backend/internal/media"
	"github.com/velorahq/velora-backend/internal/modules/catalog"
)

type Service interface {
	Create(ctx context.Context, req CreateProductRequest, uploads []Upload) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, categoryID string) ([]Product, error)
	Update(ctx context.Context, id string, req CreateProductRequest) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	catalog  catalog.Service
	uploader *media.Uploader
	resolver *media.Resolver
	local    *media.LocalStore
	remote   media.RemoteStore
	folder   string
	log      *zap.Logger
}

func NewService(repo Repository, cat catalog.Service, up *media.Uploader, res *media.Resolver,
	local *media.LocalStore, remote media.RemoteStore, folder string, log *zap.Logger) Service {
	return &service{
		repo:     repo,
		catalog:  cat,
		uploader: up,
		resolver: res,
		local:    local,
		remote:   remote,
		folder:   folder,
		log:      log,
	}
}

// Create stores uploaded files locally, persists the product, and leaves the
// remote migration of every image to the background uploader. The request
// succeeds as soon as the local writes and the insert are done.
func (s *service) Create(ctx context.Context, req CreateProductRequest, uploads []Upload) (*Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad category id", ErrInvalidInput)
	}
	cat, err := s.catalog.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat.TracksSizes {
		if len(req.Colors) == 0 {
			return nil, fmt.Errorf("%w: a size-tracked product needs at least one color", ErrInvalidInput)
		}
		for _, c := range req.Colors {
			if len(c.Sizes) == 0 {
				return nil, fmt.Errorf("%w: color %q needs at least one size", ErrInvalidInput, c.ColorName)
			}
		}
	}

	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	colorByReqID := make(map[string]*Color, len(req.Colors))
	p.Colors = make([]Color, 0, len(req.Colors))
	for _, rc := range req.Colors {
		c := Color{
			ID:        uuid.New(),
			ColorID:   rc.ColorID,
			ColorName: rc.ColorName,
			ColorCode: rc.ColorCode,
			Sizes:     rc.Sizes,
		}
		p.Colors = append(p.Colors, c)
		colorByReqID[rc.ColorID] = &p.Colors[len(p.Colors)-1]
	}

	// A size-tracked product's own stock mirrors the size totals so that
	// product-level reservations and the listing pages agree.
	if cat.TracksSizes {
		total := 0
		for _, c := range p.Colors {
			for _, sz := range c.Sizes {
				total += sz.Stock
			}
		}
		p.Stock = total
	}

	// Tasks are kept so an aborted create can call off the replications
	// it already queued instead of stranding assets in the remote store.
	tasks := make([]*media.Task, 0, len(uploads))
	abort := func() {
		for _, task := range tasks {
			task.Cancel()
		}
		s.cleanupLocal(p)
	}
	for _, up := range uploads {
		img, task, err := s.uploader.Accept(ctx, up.Data, up.OriginalName, s.folder)
		if err != nil {
			abort()
			return nil, fmt.Errorf("storing image %q: %w", up.OriginalName, err)
		}
		tasks = append(tasks, task)
		if c, ok := colorByReqID[up.ColorID]; ok && up.ColorID != "" {
			c.Images = append(c.Images, *img)
		} else {
			p.Images = append(p.Images, *img)
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		abort()
		return nil, err
	}

	s.resolve(p)
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	s.resolve(p)
	return p, nil
}

func (s *service) List(ctx context.Context, categoryID string) ([]Product, error) {
	var filter *uuid.UUID
	if categoryID != "" {
		cid, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad category id", ErrInvalidInput)
		}
		filter = &cid
	}
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.resolve(&products[i])
	}
	return products, nil
}

func (s *service) Update(ctx context.Context, id string, req CreateProductRequest) (*Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Price > 0 {
		p.Price = req.Price
	}
	// Zeroing stock goes through the inventory endpoint, not a partial update.
	if req.Stock > 0 {
		p.Stock = req.Stock
	}
	if req.CategoryID != "" {
		cid, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad category id", ErrInvalidInput)
		}
		if _, err := s.catalog.GetCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = cid
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.resolve(p)
	return p, nil
}

// Delete removes the product row first, then cleans up its image files.
// Cleanup failures are logged and do not fail the request; the rows are
// already gone and a retry would not see them again.
func (s *service) Delete(ctx context.Context, id string) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, pid); err != nil {
		return err
	}

	for _, img := range allImages(p) {
		if img.LocalPath != "" {
			if err := s.local.Remove(img.LocalPath); err != nil {
				s.log.Warn("removing local image",
					zap.String("product_id", id),
					zap.String("path", img.LocalPath),
					zap.Error(err))
			}
		}
		if img.RemoteID != "" && s.remote != nil {
			if err := s.remote.Delete(ctx, img.RemoteID); err != nil {
				s.log.Warn("removing remote image",
					zap.String("product_id", id),
					zap.String("remote_id", img.RemoteID),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (s *service) resolve(p *Product) {
	s.resolver.ResolveAll(p.Images)
	for i := range p.Colors {
		s.resolver.ResolveAll(p.Colors[i].Images)
	}
}

// cleanupLocal removes files already written for a create that failed.
func (s *service) cleanupLocal(p *Product) {
	for _, img := range allImages(p) {
		if img.LocalPath == "" {
			continue
		}
		if err := s.local.Remove(img.LocalPath); err != nil {
			s.log.Warn("cleaning up local image", zap.String("path", img.LocalPath), zap.Error(err))
		}
	}
}

func allImages(p *Product) []media.Image {
	images := make([]media.Image, 0, len(p.Images))
	images = append(images, p.Images...)
	for _, c := range p.Colors {
		images = append(images, c.Images...)
	}
	return images
}
