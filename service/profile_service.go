package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"fitpro-backend/models"
	"fitpro-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxHeight = 300.0
	maxWeight = 700.0
	maxAge    = 150
)

// IdentitySource provides the authenticated identity profile keys derive from
type IdentitySource interface {
	CurrentIdentity() (models.Identity, bool)
}

// ProfileStore is the remote document store holding profile records
type ProfileStore interface {
	GetDocument(ctx context.Context, collection string, key uuid.UUID) (*models.ProfileRecord, error)
	CreateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error
	UpdateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error
}

// ObjectStore is the remote binary store holding profile pictures
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket string, file models.ImageUpload) (*storage.StoredObject, error)
	DeleteFile(ctx context.Context, bucket, id string) error
	ObjectIDFromURL(url string) (string, error)
}

// ProfileService reconciles the profile edit buffer with the remote store
type ProfileService struct {
	identities IdentitySource
	store      ProfileStore
	objects    ObjectStore
	collection string
	bucket     string
	notifier   *Notifier
	logger     *zap.Logger

	mu     sync.Mutex
	exists bool
	saving bool
}

// ProfileServiceOption is a functional option for ProfileService
type ProfileServiceOption func(*ProfileService)

// ProfileWithIdentitySource sets where the authenticated identity comes from
func ProfileWithIdentitySource(src IdentitySource) ProfileServiceOption {
	return func(s *ProfileService) {
		s.identities = src
	}
}

// ProfileWithStore sets the document store and the collection to use
func ProfileWithStore(store ProfileStore, collection string) ProfileServiceOption {
	return func(s *ProfileService) {
		s.store = store
		s.collection = collection
	}
}

// ProfileWithObjectStore sets the object store and the bucket to use
func ProfileWithObjectStore(objects ObjectStore, bucket string) ProfileServiceOption {
	return func(s *ProfileService) {
		s.objects = objects
		s.bucket = bucket
	}
}

// ProfileWithNotifier sets the notifier
func ProfileWithNotifier(n *Notifier) ProfileServiceOption {
	return func(s *ProfileService) {
		s.notifier = n
	}
}

// ProfileWithLogger sets the logger
func ProfileWithLogger(logger *zap.Logger) ProfileServiceOption {
	return func(s *ProfileService) {
		s.logger = logger
	}
}

// NewProfileService creates a new profile service
func NewProfileService(opts ...ProfileServiceOption) *ProfileService {
	s := &ProfileService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadProfileResult represents the result of loading a profile
type LoadProfileResult struct {
	Record *models.ProfileRecord
	Buffer *models.ProfileEditBuffer
	Exists bool
}

// SaveProfileResult represents the result of saving a profile
type SaveProfileResult struct {
	Record  *models.ProfileRecord
	Created bool
	// ImageError is set when the pending image could not be uploaded
	ImageError string
}

// Exists reports whether the profile document is known to exist
func (s *ProfileService) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists
}

func (s *ProfileService) setExists(v bool) {
	s.mu.Lock()
	s.exists = v
	s.mu.Unlock()
}

func (s *ProfileService) checkDeps() error {
	if s.identities == nil {
		return errors.New("identity source not set")
	}
	if s.store == nil {
		return errors.New("profile store not set")
	}
	if s.collection == "" {
		return models.WithKind(models.KindConfiguration, errors.New("profile collection not configured"))
	}
	return nil
}

// Load fetches the profile of the authenticated user. A missing document
// is the normal first-time state, not an error.
func (s *ProfileService) Load(ctx context.Context) (*LoadProfileResult, error) {
	if err := s.checkDeps(); err != nil {
		return nil, err
	}
	identity, ok := s.identities.CurrentIdentity()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	record, err := s.store.GetDocument(ctx, s.collection, identity.ID)
	if err != nil {
		if isMissingDocument(err) {
			s.logger.Debug("profile document does not exist yet", zap.Stringer("user_id", identity.ID))
			s.setExists(false)
			return &LoadProfileResult{
				Buffer: models.NewProfileEditBuffer(identity, nil),
				Exists: false,
			}, nil
		}

		s.logger.Error("error fetching profile", zap.Stringer("user_id", identity.ID), zap.Error(err))
		s.notifier.Error("Error fetching profile")
		return nil, &models.DisplayError{Message: "Error fetching profile", Err: err}
	}

	s.setExists(true)
	return &LoadProfileResult{
		Record: record,
		Buffer: models.NewProfileEditBuffer(identity, record),
		Exists: true,
	}, nil
}

func isMissingDocument(err error) bool {
	if models.KindOf(err) != models.KindNotFound {
		return false
	}
	var remoteErr *models.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Type == models.TypeCollectionNotFound {
		return false
	}
	return true
}

// Save writes the edit buffer to the store. A pending image is settled
// first; the document is created on first save and updated afterwards.
func (s *ProfileService) Save(ctx context.Context, buf *models.ProfileEditBuffer, current *models.ProfileRecord) (*SaveProfileResult, error) {
	if err := s.checkDeps(); err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, &models.ValidationError{Message: "profile data is required"}
	}
	identity, ok := s.identities.CurrentIdentity()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	record, err := buildProfileRecord(identity, buf)
	if err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	if err := s.beginSave(); err != nil {
		return nil, err
	}
	defer s.endSave()

	result := &SaveProfileResult{Record: record}

	pictureURL := strings.TrimSpace(buf.ProfilePictureURL)
	if buf.PendingImage != nil {
		pictureURL, result.ImageError = s.replaceImage(ctx, buf.PendingImage, current, pictureURL)
	}
	if pictureURL != "" {
		record.ProfilePictureURL = &pictureURL
	}

	exists := s.Exists()
	if exists {
		err = s.store.UpdateDocument(ctx, s.collection, identity.ID, record)
	} else {
		err = s.store.CreateDocument(ctx, s.collection, identity.ID, record)
	}
	if err != nil {
		message := saveErrorMessage(err)
		s.logger.Error("error saving profile", zap.Stringer("user_id", identity.ID), zap.Bool("exists", exists), zap.Error(err))
		s.notifier.Error(message)
		return nil, &models.DisplayError{Message: message, Err: err}
	}

	s.setExists(true)
	result.Created = !exists
	s.logger.Info("profile saved", zap.Stringer("user_id", identity.ID), zap.Bool("created", result.Created))
	s.notifier.Success("Profile saved successfully!")
	return result, nil
}

// replaceImage deletes the previous picture (best effort) and uploads the
// new one. It returns the URL to store and, on upload failure, a message.
func (s *ProfileService) replaceImage(ctx context.Context, img *models.ImageUpload, current *models.ProfileRecord, fallback string) (string, string) {
	if s.objects == nil || s.bucket == "" {
		s.logger.Error("object store not configured, skipping image upload")
		s.notifier.Error("Error uploading image")
		return fallback, "Error uploading image"
	}

	var deletedURL string
	if current != nil && current.ProfilePictureURL != nil && *current.ProfilePictureURL != "" {
		oldURL := *current.ProfilePictureURL
		id, err := s.objects.ObjectIDFromURL(oldURL)
		if err == nil {
			err = s.objects.DeleteFile(ctx, s.bucket, id)
		}
		if err != nil {
			s.logger.Warn("error deleting old profile picture", zap.String("url", oldURL), zap.Error(err))
		} else {
			deletedURL = oldURL
		}
	}

	obj, err := s.objects.UploadFile(ctx, s.bucket, *img)
	if err != nil {
		s.logger.Error("error uploading image", zap.Error(err))
		s.notifier.Error("Error uploading image")
		if fallback == deletedURL {
			// the old object is gone; do not keep a dangling link
			fallback = ""
		}
		return fallback, "Error uploading image"
	}

	return obj.ViewURL, ""
}

func saveErrorMessage(err error) string {
	switch models.KindOf(err) {
	case models.KindPermissionDenied, models.KindUnauthenticated:
		return "Permission denied. Please check your collection permissions."
	case models.KindNotFound:
		return "Collection not found. Please check your database and collection IDs."
	}
	return "Failed to save profile: " + models.Message(err)
}

func (s *ProfileService) beginSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrOperationInFlight
	}
	s.saving = true
	return nil
}

func (s *ProfileService) endSave() {
	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
}

// buildProfileRecord parses the raw buffer. Empty inputs become absent.
func buildProfileRecord(identity models.Identity, buf *models.ProfileEditBuffer) (*models.ProfileRecord, error) {
	record := &models.ProfileRecord{
		UserID: identity.ID,
		Name:   strings.TrimSpace(buf.Name),
		Email:  strings.TrimSpace(buf.Email),
	}
	if record.Name == "" {
		record.Name = identity.Name
	}
	if record.Email == "" {
		record.Email = identity.Email
	}

	var err error
	if record.Height, err = parseMeasure("height", buf.Height, maxHeight); err != nil {
		return nil, err
	}
	if record.Weight, err = parseMeasure("weight", buf.Weight, maxWeight); err != nil {
		return nil, err
	}
	if record.Age, err = parseAge(buf.Age); err != nil {
		return nil, err
	}

	if goal := strings.TrimSpace(buf.FitnessGoal); goal != "" {
		g := models.FitnessGoal(goal)
		if !g.Valid() {
			return nil, &models.ValidationError{Field: "fitness_goal", Message: "unknown fitness goal"}
		}
		record.FitnessGoal = &g
	}

	return record, nil
}

func parseMeasure(field, raw string, max float64) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &models.ValidationError{Field: field, Message: "must be a number"}
	}
	if v <= 0 || v > max {
		return nil, &models.ValidationError{Field: field, Message: "out of range"}
	}
	return &v, nil
}

func parseAge(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &models.ValidationError{Field: "age", Message: "must be a whole number"}
	}
	if v <= 0 || v > maxAge {
		return nil, &models.ValidationError{Field: "age", Message: "out of range"}
	}
	return &v, nil
}
