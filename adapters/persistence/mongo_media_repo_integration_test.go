package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type MongoMediaRepoIntegrationTestSuite struct {
	suite.Suite
	client         *mongo.Client
	db             *mongo.Database
	mongoContainer *mongodb.MongoDBContainer
	mediaRepo      *mongoMediaRepo
	orphanRepo     *mongoOrphanRepo
}

func (s *MongoMediaRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		s.T().Fatalf("Failed to start mongo container: %s", err)
	}
	s.mongoContainer = mongoContainer

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Fatalf("Failed to connect mongo: %s", err)
	}
	s.client = client
	s.db = client.Database("summit_test")

	log := logger.NewNopLogger()
	s.mediaRepo = NewMongoMediaRepo(s.db, log)
	s.orphanRepo = NewMongoOrphanRepo(s.db, log)
}

func (s *MongoMediaRepoIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(context.Background())
	}
	if s.mongoContainer != nil {
		if err := s.mongoContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate mongo container: %s", err)
		}
	}
}

func (s *MongoMediaRepoIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Drop(context.Background()))
	s.Require().NoError(s.mediaRepo.EnsureIndexes(context.Background(), []string{
		media.CollectionCarousel, media.CollectionSpeakers, media.CollectionGallery,
	}))
}

func TestMongoMediaRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(MongoMediaRepoIntegrationTestSuite))
}

func (s *MongoMediaRepoIntegrationTestSuite) create(collection, ref string, order int, createdAt time.Time) string {
	id, err := s.mediaRepo.Create(context.Background(), &media.Item{
		Collection: collection,
		RemoteRef:  ref,
		URL:        "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/" + ref,
		Order:      order,
		Width:      1200,
		Height:     1800,
		Metadata:   map[string]any{"caption": ref},
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	})
	s.Require().NoError(err)
	return id
}

func (s *MongoMediaRepoIntegrationTestSuite) Test_Create_And_List() {
	ctx := context.Background()
	now := time.Now().UTC()
	b := s.create(media.CollectionGallery, "summit-2027/gallery/b", 1, now)
	a := s.create(media.CollectionGallery, "summit-2027/gallery/a", 0, now)
	s.create(media.CollectionCarousel, "summit-2027/carousel/x", 0, now)

	items, err := s.mediaRepo.List(ctx, media.CollectionGallery)

	s.NoError(err)
	s.Equal([]string{a, b}, media.IDs(items))
	s.Equal("summit-2027/gallery/a", items[0].RemoteRef)
	s.Equal(media.CollectionGallery, items[0].Collection)
	s.Equal(1800, items[0].Height)
	s.Equal("summit-2027/gallery/a", items[0].Metadata["caption"])
}

func (s *MongoMediaRepoIntegrationTestSuite) Test_List_TiesBreakOnCreatedAtThenID() {
	ctx := context.Background()
	now := time.Now().UTC()
	later := s.create(media.CollectionCarousel, "later", 0, now.Add(time.Second))
	earlier := s.create(media.CollectionCarousel, "earlier", 0, now)
	same1 := s.create(media.CollectionCarousel, "same-1", 1, now)
	same2 := s.create(media.CollectionCarousel, "same-2", 1, now)

	items, err := s.mediaRepo.List(ctx, media.CollectionCarousel)

	s.Require().NoError(err)
	// ObjectIDs grow with insertion order.
	s.Equal([]string{earlier, later, same1, same2}, media.IDs(items))
}

func (s *MongoMediaRepoIntegrationTestSuite) Test_Update_And_Delete() {
	ctx := context.Background()
	id := s.create(media.CollectionSpeakers, "summit-2027/speakers/ada", 0, time.Now().UTC())

	s.NoError(s.mediaRepo.Update(ctx, media.CollectionSpeakers, id, media.OrderPatch(4)))
	s.NoError(s.mediaRepo.Update(ctx, media.CollectionSpeakers, id, media.Patch{Metadata: map[string]any{"name": "Ada"}}))
	items, err := s.mediaRepo.List(ctx, media.CollectionSpeakers)
	s.Require().NoError(err)
	s.Equal(4, items[0].Order)
	s.Equal("Ada", items[0].Metadata["name"])
	s.Equal("summit-2027/speakers/ada", items[0].RemoteRef)

	s.NoError(s.mediaRepo.Delete(ctx, media.CollectionSpeakers, id))
	s.ErrorIs(s.mediaRepo.Delete(ctx, media.CollectionSpeakers, id), apperror.ErrNotFound)
	s.ErrorIs(s.mediaRepo.Update(ctx, media.CollectionSpeakers, id, media.OrderPatch(3)), apperror.ErrNotFound)
	s.ErrorIs(s.mediaRepo.Delete(ctx, media.CollectionSpeakers, "not-an-object-id"), apperror.ErrNotFound)
	s.ErrorIs(s.mediaRepo.Update(ctx, media.CollectionSpeakers, "not-an-object-id", media.OrderPatch(1)), apperror.ErrNotFound)
}

func (s *MongoMediaRepoIntegrationTestSuite) Test_NestedMetadataRoundTrips() {
	ctx := context.Background()
	metadata := map[string]any{
		"name":  "Ada",
		"links": []any{map[string]any{"label": "site", "href": "https://ada.dev"}},
		"stats": map[string]any{"talks": 3, "tags": []any{"ai", "infra"}},
	}
	now := time.Now().UTC()
	_, err := s.mediaRepo.Create(ctx, &media.Item{
		Collection: media.CollectionSpeakers,
		RemoteRef:  "summit-2027/speakers/ada",
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	s.Require().NoError(err)

	items, err := s.mediaRepo.List(ctx, media.CollectionSpeakers)
	s.Require().NoError(err)
	s.Require().Len(items, 1)

	got, err := json.Marshal(items[0].Metadata)
	s.Require().NoError(err)
	want, err := json.Marshal(metadata)
	s.Require().NoError(err)
	s.JSONEq(string(want), string(got))
}

func (s *MongoMediaRepoIntegrationTestSuite) Test_OrphanLifecycle() {
	ctx := context.Background()
	first := &orphan.Asset{Collection: media.CollectionGallery, RemoteRef: "summit-2027/gallery/lost", Reason: orphan.ReasonSweep}
	s.Require().NoError(s.orphanRepo.Record(ctx, first))
	dup := &orphan.Asset{Collection: media.CollectionGallery, RemoteRef: "summit-2027/gallery/lost", Reason: orphan.ReasonSweep}
	s.Require().NoError(s.orphanRepo.Record(ctx, dup))
	s.Equal(first.ID, dup.ID)

	list, err := s.orphanRepo.ListUnresolved(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.NoError(s.orphanRepo.MarkResolved(ctx, first.ID, time.Now().UTC()))
	found, err := s.orphanRepo.FindByID(ctx, first.ID)
	s.Require().NoError(err)
	s.True(found.Resolved())

	list, _ = s.orphanRepo.ListUnresolved(ctx)
	s.Empty(list)

	_, err = s.orphanRepo.FindByID(ctx, "missing")
	s.ErrorIs(err, apperror.ErrNotFound)
}
