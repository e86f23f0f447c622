package linkmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// YouTubeVideosURL is the Data API endpoint for video resources.
	YouTubeVideosURL = "https://www.googleapis.com/youtube/v3/videos"
	// YouTubeThumbnailTemplate yields the default thumbnail of a video id.
	YouTubeThumbnailTemplate = "https://img.youtube.com/vi/%s/default.jpg"
	// maxAPIResponseBytes bounds the decoded Data API response.
	maxAPIResponseBytes = 1 << 20
)

type youTubeVideosResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// YouTubeClient looks up video titles, one id per request.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewYouTubeClient(apiKey string, timeout time.Duration) *YouTubeClient {
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: YouTubeVideosURL,
		client:  newHTTPClient(timeout),
	}
}

// VideoTitle returns the title of videoID. An empty result set is ErrNotFound.
func (c *YouTubeClient) VideoTitle(ctx context.Context, videoID string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)
	params.Set("key", c.apiKey)

	body, err := get(ctx, c.client, c.baseURL+"?"+params.Encode(), nil, maxAPIResponseBytes)
	if err != nil {
		return "", fmt.Errorf("video lookup for %s: %w", videoID, err)
	}
	defer func() {
		_ = body.Close()
	}()

	var resp youTubeVideosResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode video response: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	return resp.Items[0].Snippet.Title, nil
}

// ThumbnailURL returns the default thumbnail of videoID without a request.
func (c *YouTubeClient) ThumbnailURL(videoID string) string {
	return fmt.Sprintf(YouTubeThumbnailTemplate, videoID)
}
