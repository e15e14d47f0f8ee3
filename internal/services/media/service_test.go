package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

type fakeStore struct {
	assets  map[int64][]AssetRecord
	nextID  int64
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{assets: map[int64][]AssetRecord{}, nextID: 1}
}

func (f *fakeStore) CreateAsset(_ context.Context, listingID int64, kind enums.MediaKind, objectKey string, maxActive int) (AssetRecord, error) {
	if f.failErr != nil {
		return AssetRecord{}, f.failErr
	}

	count := 0
	for _, a := range f.assets[listingID] {
		if a.Kind == kind {
			count++
		}
	}
	if maxActive > 0 && count >= maxActive {
		return AssetRecord{}, ErrLimitReached
	}

	rec := AssetRecord{
		ID:        f.nextID,
		ListingID: listingID,
		Kind:      kind,
		Position:  count + 1,
		ObjectKey: objectKey,
		CreatedAt: time.Now().UTC(),
	}
	f.nextID++
	f.assets[listingID] = append(f.assets[listingID], rec)
	return rec, nil
}

func (f *fakeStore) ListAssets(_ context.Context, listingID int64, kind enums.MediaKind) ([]AssetRecord, error) {
	out := make([]AssetRecord, 0)
	for _, a := range f.assets[listingID] {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteAsset(_ context.Context, listingID, assetID int64) (AssetRecord, error) {
	list := f.assets[listingID]
	for i, a := range list {
		if a.ID == assetID {
			f.assets[listingID] = append(list[:i], list[i+1:]...)
			return a, nil
		}
	}
	return AssetRecord{}, ErrNotFound
}

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("object missing")
	}
	return "https://cdn.test/" + key + "?sig=abc", nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newServiceForTest() (*Service, *fakeStore, *fakeStorage) {
	store := newFakeStore()
	storage := newFakeStorage()
	svc := NewService(store, storage, Config{MaxPhotos: 3, MaxVideos: 1})
	return svc, store, storage
}

func TestUploadAssignsPositionsInOrder(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		asset, err := svc.Upload(ctx, 10, enums.MediaKindPhoto, "a.jpg", "image/jpeg", bytes.NewBufferString("img"), 3)
		if err != nil {
			t.Fatalf("upload #%d: %v", i, err)
		}
		if asset.Position != i {
			t.Fatalf("upload #%d: position=%d", i, asset.Position)
		}
		if asset.URL == "" {
			t.Fatalf("upload #%d: missing signed url", i)
		}
	}
}

func TestUploadEnforcesOwnerCap(t *testing.T) {
	svc, _, storage := newServiceForTest()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Upload(ctx, 10, enums.MediaKindPhoto, "a.jpg", "image/jpeg", bytes.NewBufferString("img"), 3); err != nil {
			t.Fatalf("upload #%d: %v", i+1, err)
		}
	}

	_, err := svc.Upload(ctx, 10, enums.MediaKindPhoto, "a.jpg", "image/jpeg", bytes.NewBufferString("img"), 3)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	// The orphaned object is removed when the record insert is refused.
	if len(storage.deleted) != 1 {
		t.Fatalf("expected orphan cleanup, deleted=%v", storage.deleted)
	}
}

func TestListPresignsOnlyVisiblePrefix(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Upload(ctx, 10, enums.MediaKindPhoto, "a.jpg", "image/jpeg", bytes.NewBufferString("img"), 3); err != nil {
			t.Fatalf("upload #%d: %v", i+1, err)
		}
	}

	assets, err := svc.List(ctx, 10, enums.MediaKindPhoto, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 visible assets, got %d", len(assets))
	}
	if assets[0].Position != 1 || assets[1].Position != 2 {
		t.Fatalf("unexpected ordering: %+v", assets)
	}
}

func TestCountDoesNotPresign(t *testing.T) {
	svc, store, _ := newServiceForTest()
	ctx := context.Background()

	// Records without backing objects: Count must not touch storage.
	store.assets[10] = []AssetRecord{
		{ID: 1, ListingID: 10, Kind: enums.MediaKindVideo, Position: 1, ObjectKey: "gone"},
	}

	n, err := svc.Count(ctx, 10, enums.MediaKindVideo)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count=%d", n)
	}
}

func TestDeleteRemovesRecordAndObject(t *testing.T) {
	svc, store, storage := newServiceForTest()
	ctx := context.Background()

	asset, err := svc.Upload(ctx, 10, enums.MediaKindPhoto, "a.jpg", "image/jpeg", bytes.NewBufferString("img"), 3)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, 10, asset.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.assets[10]) != 0 {
		t.Fatalf("record not removed: %+v", store.assets[10])
	}
	if len(storage.objects) != 0 {
		t.Fatalf("object not removed: %v", storage.objects)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newServiceForTest()
	_, err := svc.Upload(context.Background(), 10, enums.MediaKind("circle"), "a.bin", "", strings.NewReader("x"), 1)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
