package feed

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

const maxFeedItems = 20

type ItemLister interface {
	ListCached(ctx context.Context, collection string) ([]*media.Item, error)
}

// CollectionFeedUseCase publishes the most recently added items of a collection as RSS.
type CollectionFeedUseCase struct {
	items   ItemLister
	siteURL string
	logger  logger.Logger
	now     func() time.Time
}

func NewCollectionFeedUseCase(items ItemLister, siteURL string, log logger.Logger) *CollectionFeedUseCase {
	return &CollectionFeedUseCase{
		items:   items,
		siteURL: strings.TrimSuffix(siteURL, "/"),
		logger:  log,
		now:     time.Now,
	}
}

func (uc *CollectionFeedUseCase) Execute(ctx context.Context, collection string) (*feeds.Feed, error) {
	items, err := uc.items.ListCached(ctx, collection)
	if err != nil {
		return nil, err
	}

	feed := &feeds.Feed{
		Title:       "Summit 2027 - " + collection,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s", uc.siteURL, collection)},
		Description: fmt.Sprintf("Latest %s media from Summit 2027.", collection),
		Created:     uc.now(),
	}

	newest := slices.Clone(items)
	slices.SortStableFunc(newest, func(a, b *media.Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(newest) > maxFeedItems {
		newest = newest[:maxFeedItems]
	}

	feed.Items = make([]*feeds.Item, 0, len(newest))
	for _, it := range newest {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          it.ID,
			Title:       itemTitle(it),
			Link:        &feeds.Link{Href: it.URL},
			Description: metadataString(it.Metadata, "description", "role", "title"),
			Created:     it.CreatedAt,
			Enclosure:   &feeds.Enclosure{Url: it.URL, Type: "image/jpeg", Length: "0"},
		})
	}

	uc.logger.Debug("Collection feed generated", zap.String("collection", collection), zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func itemTitle(it *media.Item) string {
	if s := metadataString(it.Metadata, "name", "alt"); s != "" {
		return s
	}
	return fmt.Sprintf("%s #%d", it.Collection, it.Order+1)
}

// metadataString returns the first non-empty string value among keys.
func metadataString(md map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := md[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
