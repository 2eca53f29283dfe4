// Package bootstrap builds the object graph shared by the server, the worker and summitctl from
// configuration.
package bootstrap

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/adapters/event"
	"github.com/khoahotran/summit-cms/adapters/media_storage"
	"github.com/khoahotran/summit-cms/adapters/persistence"
	"github.com/khoahotran/summit-cms/adapters/persistence/memstore"
	"github.com/khoahotran/summit-cms/internal/application/service"
	mediaUC "github.com/khoahotran/summit-cms/internal/application/usecase/media"
	"github.com/khoahotran/summit-cms/internal/application/usecase/reconcile"
	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

type App struct {
	Config     config.Config
	Logger     logger.Logger
	Catalog    *media.Catalog
	Uploader   service.Uploader
	Items      *mediaUC.ItemRepository
	Orphans    orphan.Repository
	Reconciler *reconcile.OrphanReconciler
	Publisher  event.Publisher

	closers []func()
}

// Catalog turns the collections section of the config into a media.Catalog.
func Catalog(cfg config.Config) *media.Catalog {
	keys := slices.Sorted(maps.Keys(cfg.Collections))
	cols := make([]media.Collection, 0, len(keys))
	for _, k := range keys {
		c := cfg.Collections[k]
		folder := c.Folder
		if folder == "" {
			folder = cfg.Media.DefaultFolder + "/" + k
		}
		cols = append(cols, media.Collection{Key: k, Folder: folder, Defaults: c.Defaults})
	}
	return media.NewCatalog(cols...)
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: log, Catalog: Catalog(cfg)}

	uploader, err := app.newUploader(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Uploader = uploader

	store, orphans, err := app.newStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Orphans = orphans

	app.Publisher = app.newPublisher()

	app.Items = mediaUC.NewItemRepository(store, uploader, app.Catalog, app.Publisher, log)

	lister, _ := uploader.(service.AssetLister)
	app.Reconciler = reconcile.NewOrphanReconciler(orphans, app.Items, uploader, lister, cfg.Reconcile.AutoPurge, log)

	log.Info("Application wired",
		zap.String("records_driver", cfg.Records.Driver),
		zap.String("media_provider", cfg.Media.Provider),
		zap.Strings("collections", app.Catalog.Keys()),
	)
	return app, nil
}

func (a *App) newUploader(ctx context.Context) (service.Uploader, error) {
	switch a.Config.Media.Provider {
	case ProviderCloudinary, "":
		return media_storage.NewCloudinaryAdapter(a.Config, a.Logger)
	case ProviderS3:
		return media_storage.NewS3Adapter(ctx, a.Config, a.Logger)
	}
	return nil, fmt.Errorf("unknown media provider %q", a.Config.Media.Provider)
}

func (a *App) newStores(ctx context.Context) (media.RecordStore, orphan.Repository, error) {
	var (
		store   media.RecordStore
		orphans orphan.Repository
	)

	switch a.Config.Records.Driver {
	case DriverPostgres, "":
		pool, err := persistence.NewPostgresPool(ctx, a.Config, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pool.Close)
		store = persistence.NewPostgresMediaRepo(pool, a.Logger)
		orphans = persistence.NewPostgresOrphanRepo(pool, a.Logger)
	case DriverMongo:
		db, err := persistence.NewMongoDatabase(ctx, a.Config, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Client().Disconnect(context.Background()) })
		repo := persistence.NewMongoMediaRepo(db, a.Logger)
		if err := repo.EnsureIndexes(ctx, a.Catalog.Keys()); err != nil {
			return nil, nil, err
		}
		store = repo
		orphans = persistence.NewMongoOrphanRepo(db, a.Logger)
	case DriverMemory:
		a.Logger.Warn("Using in-memory record store, data is lost on restart")
		store = memstore.New()
		orphans = memstore.NewOrphanStore()
	default:
		return nil, nil, fmt.Errorf("unknown records driver %q", a.Config.Records.Driver)
	}

	if a.Config.Redis.Addr != "" {
		rdb, err := persistence.NewRedisClient(ctx, a.Config, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		store = persistence.NewCachedMediaRepo(store, rdb, a.Config.Records.CacheTTL, a.Logger)
	}
	return store, orphans, nil
}

func (a *App) newPublisher() event.Publisher {
	if len(a.Config.Kafka.Brokers) == 0 {
		a.Logger.Warn("No Kafka brokers configured, media events are dropped")
		return event.NopPublisher{}
	}
	producer, err := event.NewKafkaProducerClient(a.Config, a.Logger)
	if err != nil {
		a.Logger.Error("Kafka producer unavailable, media events are dropped", err)
		return event.NopPublisher{}
	}
	a.closers = append(a.closers, producer.Close)
	return producer
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
