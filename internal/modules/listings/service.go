package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/events"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/scopes"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrBedNotFound          = errors.New("bed not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrNameRequired         = errors.New("name is required")
	ErrLabelRequired        = errors.New("label is required")
	ErrInvalidPropertyType  = errors.New("invalid property_type: must be boarding_house, apartment, dormitory, or house")
	ErrInvalidGenderPolicy  = errors.New("invalid gender_policy: must be any, male, or female")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidPrice         = errors.New("price cannot be negative")
	ErrInvalidCapacity      = errors.New("capacity must be at least 1")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrRoomAtCapacity       = errors.New("room already has as many beds as its capacity")
	ErrInappropriateContent = errors.New("listing text contains inappropriate language")
	ErrActiveBookings       = errors.New("cannot remove while bookings are pending or approved")
	ErrNoFiles              = errors.New("at least one file is required")
)

// ImageBucket is the only storage bucket served publicly.
const ImageBucket = "property-images"

// Service owns properties, rooms, beds and images.
type Service struct {
	db          *gorm.DB
	store       storage.Storage
	cache       *cache.ListingCache
	events      events.Publisher
	moderation  *services.ModerationService
	maxUpload   int64
	placeholder string
}

func NewService(db *gorm.DB, store storage.Storage, listingCache *cache.ListingCache, publisher events.Publisher,
	moderation *services.ModerationService, maxUpload int64, placeholder string) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:          db,
		store:       store,
		cache:       listingCache,
		events:      publisher,
		moderation:  moderation,
		maxUpload:   maxUpload,
		placeholder: placeholder,
	}
}

type PropertyInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Province     string   `json:"province"`
	PropertyType string   `json:"property_type"`
	GenderPolicy string   `json:"gender_policy"`
	Price        float64  `json:"price"`
	Amenities    []string `json:"amenities"`
}

// PropertyPatch holds optional updates. Archived toggles between archived
// and pending.
type PropertyPatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	Province     *string   `json:"province"`
	PropertyType *string   `json:"property_type"`
	GenderPolicy *string   `json:"gender_policy"`
	Price        *float64  `json:"price"`
	Amenities    *[]string `json:"amenities"`
	Archived     *bool     `json:"archived"`
}

type RoomInput struct {
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
}

type RoomPatch struct {
	Name     *string  `json:"name"`
	Capacity *int     `json:"capacity"`
	Price    *float64 `json:"price"`
	Status   *string  `json:"status"`
}

type BedPatch struct {
	Label  *string  `json:"label"`
	Price  *float64 `json:"price"`
	Status *string  `json:"status"`
}

type BedInput struct {
	Label  string  `json:"label"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

func amenitiesJSON(list []string) datatypes.JSON {
	clean := make([]string, 0, len(list))
	for _, a := range list {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	b, _ := json.Marshal(clean)
	return datatypes.JSON(b)
}

func (s *Service) checkText(texts ...string) error {
	if s.moderation == nil {
		return nil
	}
	for _, t := range texts {
		if s.moderation.ContainsProfanity(t) {
			return ErrInappropriateContent
		}
	}
	return nil
}

// changed drops cached search pages and announces the change. Neither step
// can fail the write that triggered it.
func (s *Service) changed(ctx context.Context, action string, p *models.Property) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	event := events.ListingEvent{
		Action:     action,
		PropertyID: p.ID.String(),
		Status:     p.Status,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("listing event publish failed", "property_id", p.ID, "action", action, "error", err)
	}
}

func (s *Service) CreateProperty(ctx context.Context, landlordID uuid.UUID, in *PropertyInput) (*models.Property, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.PropertyType == "" {
		in.PropertyType = models.PropertyTypes[0]
	}
	if !models.IsValidPropertyType(in.PropertyType) {
		return nil, ErrInvalidPropertyType
	}
	if in.GenderPolicy == "" {
		in.GenderPolicy = "any"
	}
	if !models.IsValidGenderPolicy(in.GenderPolicy) {
		return nil, ErrInvalidGenderPolicy
	}
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if err := s.checkText(in.Title, in.Description); err != nil {
		return nil, err
	}

	p := models.Property{
		ID:           uuid.New(),
		LandlordID:   landlordID,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		Province:     strings.TrimSpace(in.Province),
		PropertyType: in.PropertyType,
		GenderPolicy: in.GenderPolicy,
		Price:        in.Price,
		Amenities:    amenitiesJSON(in.Amenities),
		Status:       models.PropertyStatusPending,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	p.CoverURL = s.placeholder

	s.changed(ctx, events.ActionCreate, &p)
	return &p, nil
}

// owned loads a property only if landlordID owns it. Other landlords get
// ErrPropertyNotFound.
func (s *Service) owned(landlordID, propertyID uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := s.db.Scopes(scopes.ForLandlord(landlordID)).First(&p, "id = ?", propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdateProperty(ctx context.Context, landlordID, propertyID uuid.UUID, patch *PropertyPatch) (*models.Property, error) {
	p, err := s.owned(landlordID, propertyID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	core := false
	setText := func(col string, v *string, cur string) {
		if v == nil {
			return
		}
		nv := strings.TrimSpace(*v)
		if nv != cur {
			updates[col] = nv
			core = true
		}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}
	setText("title", patch.Title, p.Title)
	setText("description", patch.Description, p.Description)
	setText("address", patch.Address, p.Address)
	setText("city", patch.City, p.City)
	setText("province", patch.Province, p.Province)
	if patch.PropertyType != nil && *patch.PropertyType != p.PropertyType {
		if !models.IsValidPropertyType(*patch.PropertyType) {
			return nil, ErrInvalidPropertyType
		}
		updates["property_type"] = *patch.PropertyType
		core = true
	}
	if patch.GenderPolicy != nil {
		if !models.IsValidGenderPolicy(*patch.GenderPolicy) {
			return nil, ErrInvalidGenderPolicy
		}
		updates["gender_policy"] = *patch.GenderPolicy
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, ErrInvalidPrice
		}
		updates["price"] = *patch.Price
	}
	if patch.Amenities != nil {
		updates["amenities"] = amenitiesJSON(*patch.Amenities)
	}

	title, desc := p.Title, p.Description
	if v, ok := updates["title"].(string); ok {
		title = v
	}
	if v, ok := updates["description"].(string); ok {
		desc = v
	}
	if err := s.checkText(title, desc); err != nil {
		return nil, err
	}

	switch {
	case patch.Archived != nil && *patch.Archived:
		updates["status"] = models.PropertyStatusArchived
	case patch.Archived != nil && !*patch.Archived && p.Status == models.PropertyStatusArchived:
		updates["status"] = models.PropertyStatusPending
	case core && p.Status == models.PropertyStatusApproved:
		// Approved listings are re-moderated after their content changes.
		updates["status"] = models.PropertyStatusPending
	}

	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	p, err = s.GetOwned(landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, events.ActionUpdate, p)
	return p, nil
}

func (s *Service) DeleteProperty(ctx context.Context, landlordID, propertyID uuid.UUID) error {
	p, err := s.owned(landlordID, propertyID)
	if err != nil {
		return err
	}

	if err := s.ensureNoActiveBookings("property_id", p.ID); err != nil {
		return err
	}

	var images []models.PropertyImage
	if err := s.db.Where("property_id = ?", p.ID).Find(&images).Error; err != nil {
		return fmt.Errorf("failed to load property images: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		roomIDs := tx.Model(&models.Room{}).Select("id").Where("property_id = ?", p.ID)
		if err := tx.Where("room_id IN (?)", roomIDs).Delete(&models.Bed{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Room{}, &models.PropertyImage{}, &models.Review{}, &models.Booking{}} {
			if err := tx.Where("property_id = ?", p.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	for _, img := range images {
		s.removeFile(ctx, img.StorageKey)
	}
	s.changed(ctx, events.ActionDelete, p)
	return nil
}

// ensureNoActiveBookings refuses with ErrActiveBookings while any pending or
// approved booking references id through col.
func (s *Service) ensureNoActiveBookings(col string, id uuid.UUID) error {
	var active int64
	err := s.db.Model(&models.Booking{}).
		Where(col+" = ? AND status IN ?", id, []string{models.BookingStatusPending, models.BookingStatusApproved}).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("failed to check bookings: %w", err)
	}
	if active > 0 {
		return ErrActiveBookings
	}
	return nil
}

func (s *Service) removeFile(ctx context.Context, key string) {
	if key == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete stored file", "key", key, "error", err)
	}
}

func (s *Service) ListMine(landlordID uuid.UUID, status string, limit, offset int) ([]models.Property, int64, error) {
	var items []models.Property
	var total int64

	query := s.db.Model(&models.Property{}).Scopes(scopes.ForLandlord(landlordID), scopes.WithStatus(status))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Order("created_at DESC").
		Scopes(scopes.Paginate(limit, offset)).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	s.withCovers(items)
	return items, total, nil
}

func (s *Service) GetOwned(landlordID, propertyID uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := s.db.Scopes(scopes.ForLandlord(landlordID)).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Rooms.Beds", func(db *gorm.DB) *gorm.DB { return db.Order("label ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&p, "id = ?", propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CoverURL = models.CoverImageURL(p.Images, s.placeholder)
	return &p, nil
}

// GetPublic returns an approved property with rooms, beds, images and the
// landlord's contact details.
func (s *Service) GetPublic(propertyID uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := s.db.Where("status = ?", models.PropertyStatusApproved).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Rooms.Beds", func(db *gorm.DB) *gorm.DB { return db.Order("label ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Landlord", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "email", "full_name", "phone", "role", "status")
		}).
		First(&p, "id = ?", propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CoverURL = models.CoverImageURL(p.Images, s.placeholder)
	return &p, nil
}

func (s *Service) withCovers(items []models.Property) {
	for i := range items {
		items[i].CoverURL = models.CoverImageURL(items[i].Images, s.placeholder)
	}
}

// SetStatus is the moderation entry point used by admins.
func (s *Service) SetStatus(ctx context.Context, propertyID uuid.UUID, status, reason string) (*models.Property, error) {
	switch status {
	case models.PropertyStatusApproved, models.PropertyStatusRejected, models.PropertyStatusPending, models.PropertyStatusArchived:
	default:
		return nil, ErrInvalidStatus
	}
	var p models.Property
	if err := s.db.First(&p, "id = ?", propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if status != models.PropertyStatusRejected {
		reason = ""
	}
	if err := s.db.Model(&p).Updates(map[string]interface{}{
		"status":           status,
		"rejection_reason": reason,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update property status: %w", err)
	}
	p.Status = status
	p.RejectionReason = reason
	s.changed(ctx, events.ActionUpdate, &p)
	return &p, nil
}

// --- rooms & beds ---

func (s *Service) ownedRoom(landlordID, roomID uuid.UUID) (*models.Room, *models.Property, error) {
	var room models.Room
	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRoomNotFound
		}
		return nil, nil, err
	}
	p, err := s.owned(landlordID, room.PropertyID)
	if err != nil {
		return nil, nil, ErrRoomNotFound
	}
	return &room, p, nil
}

func (s *Service) ownedBed(landlordID, bedID uuid.UUID) (*models.Bed, *models.Room, *models.Property, error) {
	var bed models.Bed
	if err := s.db.First(&bed, "id = ?", bedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrBedNotFound
		}
		return nil, nil, nil, err
	}
	room, p, err := s.ownedRoom(landlordID, bed.RoomID)
	if err != nil {
		return nil, nil, nil, ErrBedNotFound
	}
	return &bed, room, p, nil
}

func validRoomStatus(status string) bool {
	return status == models.RoomStatusAvailable || status == models.RoomStatusFull || status == models.RoomStatusMaintenance
}

func validBedStatus(status string) bool {
	return status == models.BedStatusAvailable || status == models.BedStatusReserved || status == models.BedStatusOccupied
}

func (s *Service) CreateRoom(ctx context.Context, landlordID, propertyID uuid.UUID, in *RoomInput) (*models.Room, error) {
	p, err := s.owned(landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Capacity == 0 {
		in.Capacity = 1
	}
	if in.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if in.Status == "" {
		in.Status = models.RoomStatusAvailable
	}
	if !validRoomStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	room := models.Room{
		ID:         uuid.New(),
		PropertyID: p.ID,
		Name:       in.Name,
		Capacity:   in.Capacity,
		Price:      in.Price,
		Status:     in.Status,
	}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return &room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, landlordID, roomID uuid.UUID, patch *RoomPatch) (*models.Room, error) {
	room, p, err := s.ownedRoom(landlordID, roomID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = name
	}
	if patch.Capacity != nil {
		if *patch.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		var beds int64
		if err := s.db.Model(&models.Bed{}).Where("room_id = ?", room.ID).Count(&beds).Error; err != nil {
			return nil, err
		}
		if int64(*patch.Capacity) < beds {
			return nil, ErrRoomAtCapacity
		}
		updates["capacity"] = *patch.Capacity
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, ErrInvalidPrice
		}
		updates["price"] = *patch.Price
	}
	if patch.Status != nil {
		if !validRoomStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return room, nil
	}
	if err := s.db.Model(room).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return room, nil
}

func (s *Service) DeleteRoom(ctx context.Context, landlordID, roomID uuid.UUID) error {
	room, p, err := s.ownedRoom(landlordID, roomID)
	if err != nil {
		return err
	}
	if err := s.ensureNoActiveBookings("room_id", room.ID); err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Bed{}).Error; err != nil {
			return err
		}
		return tx.Delete(room).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return nil
}

func (s *Service) CreateBed(ctx context.Context, landlordID, roomID uuid.UUID, in *BedInput) (*models.Bed, error) {
	room, p, err := s.ownedRoom(landlordID, roomID)
	if err != nil {
		return nil, err
	}
	in.Label = strings.TrimSpace(in.Label)
	if in.Label == "" {
		return nil, ErrLabelRequired
	}
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if in.Status == "" {
		in.Status = models.BedStatusAvailable
	}
	if !validBedStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	var beds int64
	if err := s.db.Model(&models.Bed{}).Where("room_id = ?", room.ID).Count(&beds).Error; err != nil {
		return nil, err
	}
	if beds >= int64(room.Capacity) {
		return nil, ErrRoomAtCapacity
	}

	bed := models.Bed{
		ID:     uuid.New(),
		RoomID: room.ID,
		Label:  in.Label,
		Price:  in.Price,
		Status: in.Status,
	}
	if err := s.db.Create(&bed).Error; err != nil {
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return &bed, nil
}

func (s *Service) UpdateBed(ctx context.Context, landlordID, bedID uuid.UUID, patch *BedPatch) (*models.Bed, error) {
	bed, _, p, err := s.ownedBed(landlordID, bedID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if label == "" {
			return nil, ErrLabelRequired
		}
		updates["label"] = label
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, ErrInvalidPrice
		}
		updates["price"] = *patch.Price
	}
	if patch.Status != nil {
		if !validBedStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return bed, nil
	}
	if err := s.db.Model(bed).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update bed: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return bed, nil
}

func (s *Service) DeleteBed(ctx context.Context, landlordID, bedID uuid.UUID) error {
	bed, _, p, err := s.ownedBed(landlordID, bedID)
	if err != nil {
		return err
	}
	if err := s.ensureNoActiveBookings("bed_id", bed.ID); err != nil {
		return err
	}
	if err := s.db.Delete(bed).Error; err != nil {
		return fmt.Errorf("failed to delete bed: %w", err)
	}
	s.changed(ctx, events.ActionUpdate, p)
	return nil
}

// --- images ---

// AddImages stores each file under the property. Files are validated before
// any is written, so a bad file rejects the whole batch.
func (s *Service) AddImages(ctx context.Context, landlordID, propertyID uuid.UUID, category string, files []*multipart.FileHeader) ([]models.PropertyImage, error) {
	p, err := s.owned(landlordID, propertyID)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = "other"
	}
	if !models.IsValidImageCategory(category) {
		return nil, ErrInvalidCategory
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	type checked struct {
		fh   *multipart.FileHeader
		mime string
		ext  string
	}
	batch := make([]checked, 0, len(files))
	for _, fh := range files {
		mime, ext, err := storage.SniffUpload(fh, s.maxUpload, storage.ImageTypes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		batch = append(batch, checked{fh: fh, mime: mime, ext: ext})
	}

	var maxOrder struct{ Max int }
	err = s.db.Model(&models.PropertyImage{}).Select("COALESCE(MAX(sort_order), -1) AS max").
		Where("property_id = ?", p.ID).Scan(&maxOrder).Error
	if err != nil {
		return nil, err
	}
	next := maxOrder.Max + 1

	saved := make([]models.PropertyImage, 0, len(batch))
	for _, item := range batch {
		key := storage.NewKey(ImageBucket, p.ID.String(), item.ext)
		f, err := item.fh.Open()
		if err != nil {
			return saved, fmt.Errorf("failed to open upload: %w", err)
		}
		url, err := s.store.Save(ctx, key, f, item.mime)
		f.Close()
		if err != nil {
			return saved, fmt.Errorf("failed to store image: %w", err)
		}

		img := models.PropertyImage{
			ID:         uuid.New(),
			PropertyID: p.ID,
			Category:   category,
			URL:        url,
			StorageKey: key,
			SortOrder:  next,
		}
		if err := s.db.Create(&img).Error; err != nil {
			s.removeFile(ctx, key)
			return saved, fmt.Errorf("failed to save image: %w", err)
		}
		next++
		saved = append(saved, img)
	}

	s.changed(ctx, events.ActionUpdate, p)
	return saved, nil
}

func (s *Service) DeleteImage(ctx context.Context, landlordID, imageID uuid.UUID) error {
	var img models.PropertyImage
	if err := s.db.First(&img, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	p, err := s.owned(landlordID, img.PropertyID)
	if err != nil {
		return ErrImageNotFound
	}
	if err := s.db.Delete(&img).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	s.removeFile(ctx, img.StorageKey)
	s.changed(ctx, events.ActionUpdate, p)
	return nil
}
