package service

import (
	"context"
	"sync"

	"fitpro-backend/models"
	"fitpro-backend/storage"

	"github.com/google/uuid"
)

type fakeAccounts struct {
	mu sync.Mutex

	createSessionErr []error
	identity         *models.Identity
	identityErr      error
	createAccountErr error
	deleteErr        error
	updateErr        error

	calls []string
	block chan struct{}
}

func (f *fakeAccounts) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAccounts) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAccounts) CreateSession(ctx context.Context, email, password string) error {
	f.record("CreateSession")
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createSessionErr) == 0 {
		return nil
	}
	err := f.createSessionErr[0]
	f.createSessionErr = f.createSessionErr[1:]
	return err
}

func (f *fakeAccounts) GetCurrentIdentity(ctx context.Context) (*models.Identity, error) {
	f.record("GetCurrentIdentity")
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identity, nil
}

func (f *fakeAccounts) CreateAccount(ctx context.Context, email, password, name string) (*models.Identity, error) {
	f.record("CreateAccount")
	if f.createAccountErr != nil {
		return nil, f.createAccountErr
	}
	return &models.Identity{ID: testIdentity.ID, Name: name, Email: email}, nil
}

func (f *fakeAccounts) DeleteSession(ctx context.Context, scope string) error {
	f.record("DeleteSession")
	return f.deleteErr
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, newPassword, oldPassword string) error {
	f.record("UpdatePassword")
	return f.updateErr
}

type staticIdentity struct {
	identity models.Identity
	ok       bool
}

func (s staticIdentity) CurrentIdentity() (models.Identity, bool) {
	return s.identity, s.ok
}

type fakeProfileStore struct {
	record *models.ProfileRecord
	getErr error

	createErr error
	updateErr error
	creates   int
	updates   int
	saved     *models.ProfileRecord
	keys      []uuid.UUID
}

func (f *fakeProfileStore) GetDocument(ctx context.Context, collection string, key uuid.UUID) (*models.ProfileRecord, error) {
	f.keys = append(f.keys, key)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeProfileStore) CreateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error {
	f.creates++
	f.keys = append(f.keys, key)
	if f.createErr != nil {
		return f.createErr
	}
	f.saved = record
	return nil
}

func (f *fakeProfileStore) UpdateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error {
	f.updates++
	f.keys = append(f.keys, key)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.saved = record
	return nil
}

type fakeObjects struct {
	uploadErr error
	deleteErr error
	ops       []string
	deleted   []string
}

func (f *fakeObjects) UploadFile(ctx context.Context, bucket string, file models.ImageUpload) (*storage.StoredObject, error) {
	f.ops = append(f.ops, "upload")
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &storage.StoredObject{ID: "new-id", Bucket: bucket, ViewURL: "/files/" + bucket + "/new-id"}, nil
}

func (f *fakeObjects) DeleteFile(ctx context.Context, bucket, id string) error {
	f.ops = append(f.ops, "delete")
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeObjects) ObjectIDFromURL(url string) (string, error) {
	return "old-id", nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []models.GenerationRequest
	block    chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.GenerationResponse{Text: f.text}, nil
}

func (f *fakeGenerator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
