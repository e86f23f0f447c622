package core

import (
	"context"
	"time"

	"sharevault/pkg/linkmeta"
)

// pageFetcherAdapter adapts pkg/linkmeta.PageFetcher to core.PageFetcher.
type pageFetcherAdapter struct {
	fetcher *linkmeta.PageFetcher
}

// NewPageFetcher creates a PageFetcher backed by pkg/linkmeta.
func NewPageFetcher(timeout time.Duration) PageFetcher {
	return &pageFetcherAdapter{
		fetcher: linkmeta.NewPageFetcher(timeout),
	}
}

func (a *pageFetcherAdapter) PageInfo(ctx context.Context, pageURL string) (*PageInfo, error) {
	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return &PageInfo{
		Title:    page.Title,
		ImageURL: page.ImageURL,
	}, nil
}

// NewVideoCatalog creates a VideoCatalog backed by the video Data API.
func NewVideoCatalog(apiKey string, timeout time.Duration) VideoCatalog {
	return linkmeta.NewYouTubeClient(apiKey, timeout)
}
