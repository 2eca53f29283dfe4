package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/adapters/persistence/memstore"
	"github.com/khoahotran/summit-cms/internal/application/service"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, file io.Reader, folder string) (*service.UploadResult, error) {
	args := m.Called(ctx, file, folder)
	res, _ := args.Get(0).(*service.UploadResult)
	return res, args.Error(1)
}

func (m *mockUploader) Delete(ctx context.Context, publicID string) (service.DeleteResult, error) {
	args := m.Called(ctx, publicID)
	return args.Get(0).(service.DeleteResult), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.MediaEventPayload
}

func (p *recordingPublisher) PublishMediaEvent(_ context.Context, payload event.MediaEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return nil
}

func (p *recordingPublisher) types() []event.MediaEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.MediaEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

// flakyStore wraps the memory store without exposing SetOrders, so order writes go through the
// per-item path, and fails the operations it is told to.
type flakyStore struct {
	inner        *memstore.Store
	failCreate   error
	failList     error
	failUpdateOn map[string]error
	failDelete   error
}

func (s *flakyStore) Create(ctx context.Context, item *media.Item) (string, error) {
	if s.failCreate != nil {
		return "", s.failCreate
	}
	return s.inner.Create(ctx, item)
}

func (s *flakyStore) List(ctx context.Context, collection string) ([]*media.Item, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	return s.inner.List(ctx, collection)
}

func (s *flakyStore) Update(ctx context.Context, collection, id string, patch media.Patch) error {
	if err, ok := s.failUpdateOn[id]; ok {
		return err
	}
	return s.inner.Update(ctx, collection, id, patch)
}

func (s *flakyStore) Delete(ctx context.Context, collection, id string) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	return s.inner.Delete(ctx, collection, id)
}

// staleCacheStore behaves like a list cache that missed a write: List serves a frozen snapshot
// while ListFresh reads the store.
type staleCacheStore struct {
	*flakyStore
	snapshot []*media.Item
}

func (s *staleCacheStore) List(context.Context, string) ([]*media.Item, error) {
	return s.snapshot, nil
}

func (s *staleCacheStore) ListFresh(ctx context.Context, collection string) ([]*media.Item, error) {
	return s.flakyStore.List(ctx, collection)
}

type ItemRepositoryTestSuite struct {
	suite.Suite
	ctx       context.Context
	mem       *memstore.Store
	store     *flakyStore
	uploader  *mockUploader
	publisher *recordingPublisher
	repo      *ItemRepository
}

func TestItemRepository(t *testing.T) {
	suite.Run(t, new(ItemRepositoryTestSuite))
}

func testCatalog() *media.Catalog {
	return media.NewCatalog(
		media.Collection{Key: media.CollectionCarousel, Folder: "summit-2027/carousel"},
		media.Collection{
			Key:      media.CollectionSpeakers,
			Folder:   "summit-2027/speakers",
			Defaults: map[string]any{"name": "New Speaker", "title": "Title", "company": "Company"},
		},
		media.Collection{Key: media.CollectionGallery, Folder: "summit-2027/gallery"},
	)
}

func (s *ItemRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = memstore.New()
	s.store = &flakyStore{inner: s.mem, failUpdateOn: map[string]error{}}
	s.uploader = new(mockUploader)
	s.publisher = &recordingPublisher{}
	s.repo = NewItemRepository(s.store, s.uploader, testCatalog(), s.publisher, logger.NewNopLogger())
}

// seed creates items directly in the store with orders 0..n-1 and returns their ids.
func (s *ItemRepositoryTestSuite) seed(collection string, n int) []string {
	ids := make([]string, n)
	for i := range n {
		id, err := s.mem.Create(s.ctx, &media.Item{
			Collection: collection,
			RemoteRef:  "summit-2027/" + collection + "/seed",
			Order:      i,
		})
		s.Require().NoError(err)
		ids[i] = id
	}
	return ids
}

func (s *ItemRepositoryTestSuite) expectUpload(folder, publicID string) {
	s.uploader.On("Upload", mock.Anything, mock.Anything, folder).Return(&service.UploadResult{
		URL:         "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/" + publicID,
		OriginalURL: "https://res.cloudinary.com/demo/image/upload/" + publicID,
		PublicID:    publicID,
		Width:       1200,
		Height:      1800,
	}, nil).Once()
}

func (s *ItemRepositoryTestSuite) Test_Add_AppendsAtEnd() {
	s.seed(media.CollectionCarousel, 2)
	s.expectUpload("summit-2027/carousel", "summit-2027/carousel/new")

	before, err := s.repo.List(s.ctx, media.CollectionCarousel)
	s.Require().NoError(err)

	item, err := s.repo.Add(s.ctx, AddInput{
		Collection: media.CollectionCarousel,
		File:       bytes.NewReader([]byte("png")),
		Filename:   "stage.png",
	})
	s.Require().NoError(err)

	s.NotEmpty(item.ID)
	s.Equal(len(before), item.Order)
	s.Equal("summit-2027/carousel/new", item.RemoteRef)
	s.Equal(1200, item.Width)
	s.Equal("stage.png", item.Metadata["original_filename"])

	after, err := s.repo.List(s.ctx, media.CollectionCarousel)
	s.Require().NoError(err)
	s.Len(after, len(before)+1)
	s.Equal(item.ID, after[len(after)-1].ID)
	s.Equal([]int{0, 1}, []int{after[0].Order, after[1].Order})

	s.Equal([]event.MediaEventType{event.MediaEventTypeAdded}, s.publisher.types())
	s.uploader.AssertExpectations(s.T())
}

func (s *ItemRepositoryTestSuite) Test_Add_AppliesCollectionDefaults() {
	s.expectUpload("summit-2027/speakers", "summit-2027/speakers/ada")

	item, err := s.repo.Add(s.ctx, AddInput{
		Collection: media.CollectionSpeakers,
		File:       bytes.NewReader([]byte("jpg")),
		Metadata:   map[string]any{"name": "Ada Lovelace"},
	})
	s.Require().NoError(err)

	s.Equal("Ada Lovelace", item.Metadata["name"])
	s.Equal("Title", item.Metadata["title"])
	s.Equal("Company", item.Metadata["company"])
}

func (s *ItemRepositoryTestSuite) Test_Add_UploadFailure_CreatesNoRecord() {
	s.seed(media.CollectionGallery, 1)
	s.uploader.On("Upload", mock.Anything, mock.Anything, "summit-2027/gallery").
		Return(nil, errors.New("network unreachable")).Once()

	_, err := s.repo.Add(s.ctx, AddInput{Collection: media.CollectionGallery, File: bytes.NewReader(nil)})

	s.ErrorIs(err, apperror.ErrUploadFailed)
	items, _ := s.repo.List(s.ctx, media.CollectionGallery)
	s.Len(items, 1)
	s.Empty(s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_Add_RecordCreateFailure_ReportsOrphan() {
	s.expectUpload("summit-2027/gallery", "summit-2027/gallery/lost")
	s.store.failCreate = errors.New("quota exceeded")

	_, err := s.repo.Add(s.ctx, AddInput{Collection: media.CollectionGallery, File: bytes.NewReader(nil)})

	s.ErrorIs(err, apperror.ErrRecordCreateFailed)
	var orphanErr *media.RecordCreateError
	s.Require().ErrorAs(err, &orphanErr)
	s.Equal("summit-2027/gallery/lost", orphanErr.Asset.RemoteRef)
	s.Equal(media.CollectionGallery, orphanErr.Asset.Collection)

	s.Equal([]event.MediaEventType{event.MediaEventTypeOrphaned}, s.publisher.types())
	s.Equal("summit-2027/gallery/lost", s.publisher.events[0].RemoteRef)
	// no rollback is attempted
	s.uploader.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *ItemRepositoryTestSuite) Test_Add_UnknownCollection() {
	_, err := s.repo.Add(s.ctx, AddInput{Collection: "sponsors", File: bytes.NewReader(nil)})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.uploader.AssertNotCalled(s.T(), "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ItemRepositoryTestSuite) Test_Remove_DeletesAssetAndRecord() {
	ids := s.seed(media.CollectionCarousel, 3)
	items, _ := s.repo.List(s.ctx, media.CollectionCarousel)
	target := items[1]
	s.uploader.On("Delete", mock.Anything, target.RemoteRef).Return(service.DeleteResultOK, nil).Once()

	s.Require().NoError(s.repo.Remove(s.ctx, target))

	after, _ := s.repo.List(s.ctx, media.CollectionCarousel)
	s.Equal([]string{ids[0], ids[2]}, media.IDs(after))
	// Remove does not compact
	s.Equal(2, after[1].Order)
}

func (s *ItemRepositoryTestSuite) Test_Remove_IsIdempotentOnNotFound() {
	s.seed(media.CollectionCarousel, 1)
	items, _ := s.repo.List(s.ctx, media.CollectionCarousel)
	target := items[0]
	s.uploader.On("Delete", mock.Anything, target.RemoteRef).Return(service.DeleteResultOK, nil).Once()
	s.uploader.On("Delete", mock.Anything, target.RemoteRef).Return(service.DeleteResultNotFound, nil).Once()

	s.Require().NoError(s.repo.Remove(s.ctx, target))
	err := s.repo.Remove(s.ctx, target)

	s.NoError(err)
	s.NotErrorIs(err, apperror.ErrDeletionFailed)
}

func (s *ItemRepositoryTestSuite) Test_Remove_NotFoundStillDeletesRecord() {
	s.seed(media.CollectionGallery, 1)
	items, _ := s.repo.List(s.ctx, media.CollectionGallery)
	s.uploader.On("Delete", mock.Anything, items[0].RemoteRef).Return(service.DeleteResultNotFound, nil).Once()

	s.Require().NoError(s.repo.Remove(s.ctx, items[0]))

	after, _ := s.repo.List(s.ctx, media.CollectionGallery)
	s.Empty(after)
}

func (s *ItemRepositoryTestSuite) Test_Remove_RemoteFailureKeepsRecord() {
	s.seed(media.CollectionGallery, 1)
	items, _ := s.repo.List(s.ctx, media.CollectionGallery)
	s.uploader.On("Delete", mock.Anything, items[0].RemoteRef).
		Return(service.DeleteResult(""), errors.New("503 from cloudinary")).Once()

	err := s.repo.Remove(s.ctx, items[0])

	s.ErrorIs(err, apperror.ErrDeletionFailed)
	after, _ := s.repo.List(s.ctx, media.CollectionGallery)
	s.Len(after, 1)
	s.Empty(s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_RemoveByID_Unknown() {
	_, err := s.repo.RemoveByID(s.ctx, media.CollectionGallery, "missing")
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ItemRepositoryTestSuite) staleRepo(collection string, seeded, cached int) (*ItemRepository, []string) {
	ids := s.seed(collection, seeded)
	all, err := s.mem.List(s.ctx, collection)
	s.Require().NoError(err)
	store := &staleCacheStore{flakyStore: s.store, snapshot: all[:cached]}
	return NewItemRepository(store, s.uploader, testCatalog(), s.publisher, logger.NewNopLogger()), ids
}

func (s *ItemRepositoryTestSuite) Test_Add_OrderComesFromStoreNotCache() {
	repo, _ := s.staleRepo(media.CollectionGallery, 2, 1)
	s.expectUpload("summit-2027/gallery", "summit-2027/gallery/new")

	item, err := repo.Add(s.ctx, AddInput{Collection: media.CollectionGallery, File: bytes.NewReader([]byte("png"))})
	s.Require().NoError(err)
	s.Equal(2, item.Order)

	cached, err := repo.ListCached(s.ctx, media.CollectionGallery)
	s.Require().NoError(err)
	s.Len(cached, 1)
	items, err := repo.List(s.ctx, media.CollectionGallery)
	s.Require().NoError(err)
	s.Equal([]int{0, 1, 2}, []int{items[0].Order, items[1].Order, items[2].Order})
}

func (s *ItemRepositoryTestSuite) Test_Reorder_ValidatesAgainstStoreNotCache() {
	repo, ids := s.staleRepo(media.CollectionCarousel, 3, 2)

	err := repo.Reorder(s.ctx, media.CollectionCarousel, []string{ids[1], ids[0]})
	s.ErrorIs(err, apperror.ErrInvalidOrdering)

	want := []string{ids[2], ids[0], ids[1]}
	s.Require().NoError(repo.Reorder(s.ctx, media.CollectionCarousel, want))
	items, err := repo.List(s.ctx, media.CollectionCarousel)
	s.Require().NoError(err)
	s.Equal(want, media.IDs(items))
}

func (s *ItemRepositoryTestSuite) Test_Reorder_Scenario() {
	ids := s.seed(media.CollectionCarousel, 3)
	a, b, c := ids[0], ids[1], ids[2]

	s.Require().NoError(s.repo.Reorder(s.ctx, media.CollectionCarousel, []string{c, a, b}))

	items, err := s.repo.List(s.ctx, media.CollectionCarousel)
	s.Require().NoError(err)
	s.Equal([]string{c, a, b}, media.IDs(items))
	for i, it := range items {
		s.Equal(i, it.Order)
	}
	s.Equal([]event.MediaEventType{event.MediaEventTypeReordered}, s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_Reorder_UsesAtomicBatchWhenAvailable() {
	repo := NewItemRepository(s.mem, s.uploader, testCatalog(), nil, logger.NewNopLogger())
	ids := s.seed(media.CollectionGallery, 4)
	want := []string{ids[3], ids[1], ids[0], ids[2]}

	s.Require().NoError(repo.Reorder(s.ctx, media.CollectionGallery, want))

	items, _ := repo.List(s.ctx, media.CollectionGallery)
	s.Equal(want, media.IDs(items))
}

func (s *ItemRepositoryTestSuite) Test_Reorder_InvalidOrderingLeavesOrdersUnchanged() {
	ids := s.seed(media.CollectionSpeakers, 3)

	cases := map[string][]string{
		"unknown id": {ids[0], ids[1], "ghost"},
		"partial":    {ids[1], ids[0]},
		"duplicate":  {ids[0], ids[0], ids[1]},
		"empty":      {},
	}
	for name, ordering := range cases {
		err := s.repo.Reorder(s.ctx, media.CollectionSpeakers, ordering)
		s.ErrorIs(err, apperror.ErrInvalidOrdering, name)
	}

	items, _ := s.repo.List(s.ctx, media.CollectionSpeakers)
	s.Equal(ids, media.IDs(items))
	for i, it := range items {
		s.Equal(i, it.Order)
	}
	s.Empty(s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_Reorder_PartialFailureIsSurfaced() {
	ids := s.seed(media.CollectionCarousel, 3)
	s.store.failUpdateOn[ids[1]] = errors.New("deadline exceeded")

	err := s.repo.Reorder(s.ctx, media.CollectionCarousel, []string{ids[2], ids[1], ids[0]})

	s.ErrorIs(err, apperror.ErrPartialReorder)
	var partial *media.PartialReorderError
	s.Require().ErrorAs(err, &partial)
	s.Equal([]string{ids[1]}, partial.FailedIDs())
	s.ElementsMatch([]string{ids[2], ids[0]}, partial.Applied)
	s.Empty(s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_Renumber_RestoresDensity() {
	ids := s.seed(media.CollectionCarousel, 4)
	items, _ := s.repo.List(s.ctx, media.CollectionCarousel)
	s.uploader.On("Delete", mock.Anything, mock.Anything).Return(service.DeleteResultOK, nil)
	s.Require().NoError(s.repo.Remove(s.ctx, items[1]))

	s.Require().NoError(s.repo.Renumber(s.ctx, media.CollectionCarousel))

	after, _ := s.repo.List(s.ctx, media.CollectionCarousel)
	s.Equal([]string{ids[0], ids[2], ids[3]}, media.IDs(after))
	for i, it := range after {
		s.Equal(i, it.Order)
	}
}

func (s *ItemRepositoryTestSuite) Test_Renumber_NoopWhenDense() {
	s.seed(media.CollectionGallery, 2)
	s.Require().NoError(s.repo.Renumber(s.ctx, media.CollectionGallery))
	s.Empty(s.publisher.types())
}

func (s *ItemRepositoryTestSuite) Test_UpdateMetadata_MergesAndKeepsIdentity() {
	s.expectUpload("summit-2027/speakers", "summit-2027/speakers/ada")
	item, err := s.repo.Add(s.ctx, AddInput{Collection: media.CollectionSpeakers, File: bytes.NewReader(nil)})
	s.Require().NoError(err)

	updated, err := s.repo.UpdateMetadata(s.ctx, media.CollectionSpeakers, item.ID, map[string]any{
		"name":    "Ada Lovelace",
		"company": nil,
	})
	s.Require().NoError(err)

	s.Equal("Ada Lovelace", updated.Metadata["name"])
	s.Equal("Title", updated.Metadata["title"])
	s.NotContains(updated.Metadata, "company")

	stored, err := s.repo.Get(s.ctx, media.CollectionSpeakers, item.ID)
	s.Require().NoError(err)
	s.Equal(item.RemoteRef, stored.RemoteRef)
	s.Equal(item.Order, stored.Order)
	s.Equal("Ada Lovelace", stored.Metadata["name"])
}

func (s *ItemRepositoryTestSuite) Test_All_RunsFreshQueryEachTime() {
	ids := s.seed(media.CollectionGallery, 2)
	seq := s.repo.All(s.ctx, media.CollectionGallery)

	collect := func() []string {
		var out []string
		for it, err := range seq {
			s.Require().NoError(err)
			out = append(out, it.ID)
		}
		return out
	}

	s.Equal(ids, collect())
	extra := s.seed(media.CollectionGallery, 1)
	s.Len(collect(), 3)
	s.NotEmpty(extra)
}

func (s *ItemRepositoryTestSuite) Test_All_YieldsListError() {
	s.store.failList = errors.New("offline")

	var errs []error
	for it, err := range s.repo.All(s.ctx, media.CollectionGallery) {
		s.Nil(it)
		errs = append(errs, err)
	}
	s.Len(errs, 1)
}

func TestValidateOrdering(t *testing.T) {
	items := []*media.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	require.NoError(t, validateOrdering(items, []string{"c", "a", "b"}))
	assert.ErrorIs(t, validateOrdering(items, []string{"a", "b", "d"}), apperror.ErrInvalidOrdering)
	assert.ErrorIs(t, validateOrdering(items, []string{"a", "a", "b"}), apperror.ErrInvalidOrdering)
	assert.ErrorIs(t, validateOrdering(items, []string{"a", "b"}), apperror.ErrInvalidOrdering)
	require.NoError(t, validateOrdering(nil, nil))
}
