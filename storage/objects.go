package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"fitpro-backend/models"

	"github.com/google/uuid"
)

// StoredObject describes an uploaded object
type StoredObject struct {
	ID          string `json:"id"`
	Bucket      string `json:"bucket"`
	ContentType string `json:"content_type"`
	ViewURL     string `json:"view_url"`
}

// ObjectStore assigns unique ids to uploads, groups them by bucket and
// derives public view URLs. Failures are reported as *models.RemoteError.
type ObjectStore struct {
	backend   Storage
	publicURL string
}

// NewObjectStore creates an object store over a storage backend
func NewObjectStore(backend Storage, publicURL string) *ObjectStore {
	return &ObjectStore{
		backend:   backend,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// UploadFile stores file under a freshly generated id
func (o *ObjectStore) UploadFile(ctx context.Context, bucket string, file models.ImageUpload) (*StoredObject, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, err
	}
	if file.Data == nil {
		return nil, models.NewRemoteError(models.CodeBadRequest, "storage_invalid_file", "file has no content", nil)
	}

	id := newObjectID(file.Filename)
	contentType := file.ContentType
	if contentType == "" {
		contentType = getContentType(file.Filename)
	}

	if err := o.backend.Upload(ctx, objectKey(bucket, id), contentType, file.Data); err != nil {
		return nil, toRemoteError(err)
	}

	return &StoredObject{
		ID:          id,
		Bucket:      bucket,
		ContentType: contentType,
		ViewURL:     o.ViewURL(bucket, id),
	}, nil
}

// DeleteFile removes the object with the given id
func (o *ObjectStore) DeleteFile(ctx context.Context, bucket, id string) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}
	if err := validateObjectID(id); err != nil {
		return err
	}
	if err := o.backend.Delete(ctx, objectKey(bucket, id)); err != nil {
		return toRemoteError(err)
	}
	return nil
}

// OpenFile returns a reader over the object's content
func (o *ObjectStore) OpenFile(ctx context.Context, bucket, id string) (io.ReadCloser, string, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, "", err
	}
	if err := validateObjectID(id); err != nil {
		return nil, "", err
	}
	rc, err := o.backend.Download(ctx, objectKey(bucket, id))
	if err != nil {
		return nil, "", toRemoteError(err)
	}
	return rc, getContentType(id), nil
}

// ViewURL derives the public URL an object is viewed from
func (o *ObjectStore) ViewURL(bucket, id string) string {
	return o.publicURL + "/" + bucket + "/" + id
}

// ObjectIDFromURL extracts the object id from a view URL
func (o *ObjectStore) ObjectIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", models.NewRemoteError(models.CodeBadRequest, "storage_invalid_url", "invalid object URL", err)
	}
	id := path.Base(u.Path)
	if err := validateObjectID(id); err != nil {
		return "", err
	}
	return id, nil
}

func objectKey(bucket, id string) string {
	return bucket + "/" + id
}

// newObjectID generates a unique id, keeping a known image extension
func newObjectID(filename string) string {
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	if getContentType(ext) != "application/octet-stream" {
		id += ext
	}
	return id
}

func validateBucket(bucket string) error {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return models.NewRemoteError(models.CodeNotFound, "storage_bucket_not_found", fmt.Sprintf("invalid bucket %q", bucket), nil)
	}
	return nil
}

func validateObjectID(id string) error {
	base := strings.TrimSuffix(id, filepath.Ext(id))
	if _, err := uuid.Parse(base); err != nil {
		return models.NewRemoteError(models.CodeBadRequest, "storage_invalid_id", fmt.Sprintf("invalid object id %q", id), err)
	}
	return nil
}

func toRemoteError(err error) error {
	switch {
	case errors.Is(err, ErrObjectNotFound):
		return models.NewRemoteError(models.CodeNotFound, "storage_file_not_found", "file not found", err)
	case errors.Is(err, ErrAccessDenied):
		return models.NewRemoteError(models.CodePermissionDenied, "storage_unauthorized", "storage access denied", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		return models.NewRemoteError(models.CodeInternal, "storage_error", err.Error(), err)
	}
}
