// Package spotify implements the music catalog and curated playlist on top
// of the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sharevault/internal/core"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
	// MaxTrackSearchResults limits track search results used for video matching
	MaxTrackSearchResults = 10
	// playlistPageSize is the page size used when listing playlists and their items
	playlistPageSize = 50
	// playlistItemsPageSize is the page size used when reading playlist items
	playlistItemsPageSize = 100
	// oauthState guards the interactive authorization round trip
	oauthState = "sharevault-auth-state"
	// curatedPlaylistDescription is set on playlists created by Sync
	curatedPlaylistDescription = "Tracks shared in the group chat"
)

type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
	auth   *spotifyauth.Authenticator
	userID string
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	return &Client{
		config: config,
		logger: logger,
		auth:   auth,
	}
}

// Authenticate prefers a saved user token. Without one it runs the
// interactive authorization when the playlist must be written, and falls
// back to app-only client credentials otherwise, which is enough for
// catalog lookups.
func (c *Client) Authenticate(ctx context.Context, needUser bool) error {
	token, err := c.loadToken()
	switch {
	case err == nil:
		userErr := c.useUserToken(ctx, token)
		if userErr == nil {
			return nil
		}
		if needUser {
			c.logger.Warn("Saved token invalid, starting OAuth flow", zap.Error(userErr))
			return c.startOAuthFlow(ctx)
		}
		c.logger.Warn("Saved token invalid, using client credentials", zap.Error(userErr))
	case needUser:
		c.logger.Info("No saved token found, starting OAuth flow")
		return c.startOAuthFlow(ctx)
	}

	return c.useClientCredentials(ctx)
}

func (c *Client) useUserToken(ctx context.Context, token *oauth2.Token) error {
	client := spotify.New(c.auth.Client(ctx, token))

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	c.client = client
	c.userID = user.ID
	c.logger.Info("Authenticated successfully", zap.String("user", user.DisplayName))
	return nil
}

func (c *Client) useClientCredentials(ctx context.Context) error {
	cfg := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain client credentials token: %w", err)
	}

	c.client = spotify.New(spotifyauth.New().Client(ctx, token))
	c.logger.Info("Authenticated with client credentials")
	return nil
}

func (c *Client) api() (*spotify.Client, error) {
	if c.client == nil {
		return nil, core.ErrNotAuthenticated
	}
	return c.client, nil
}

func (c *Client) userAPI() (*spotify.Client, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}
	if c.userID == "" {
		return nil, fmt.Errorf("%w: playlist access needs a user token", core.ErrNotAuthenticated)
	}
	return client, nil
}

// CanModifyPlaylists reports whether a user token is in use. Client
// credentials only cover catalog lookups.
func (c *Client) CanModifyPlaylists() bool {
	_, err := c.userAPI()
	return err == nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func isNotFound(err error) bool {
	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Tracks resolves up to core.MaxTracksPerRequest ids. Results are keyed by
// the requested id since relinked tracks may come back under another id.
func (c *Client) Tracks(ctx context.Context, ids []string) (map[string]core.TrackInfo, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	tracks, err := client.GetTracks(ctx, toIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks: %w", err)
	}

	out := make(map[string]core.TrackInfo, len(tracks))
	for i, track := range tracks {
		if track == nil || i >= len(ids) {
			continue
		}
		out[ids[i]] = core.TrackInfo{
			Name:     track.Name,
			Artists:  joinArtists(track.Artists),
			ImageURL: firstImage(track.Album.Images),
		}
	}
	return out, nil
}

func (c *Client) Albums(ctx context.Context, ids []string) (map[string]core.AlbumInfo, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	albums, err := client.GetAlbums(ctx, toIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get albums: %w", err)
	}

	out := make(map[string]core.AlbumInfo, len(albums))
	for i, album := range albums {
		if album == nil || i >= len(ids) {
			continue
		}
		out[ids[i]] = core.AlbumInfo{
			Name:     album.Name,
			Artists:  joinArtists(album.Artists),
			ImageURL: firstImage(album.Images),
		}
	}
	return out, nil
}

func (c *Client) Artists(ctx context.Context, ids []string) (map[string]core.ArtistInfo, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	artists, err := client.GetArtists(ctx, toIDs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get artists: %w", err)
	}

	out := make(map[string]core.ArtistInfo, len(artists))
	for i, artist := range artists {
		if artist == nil || i >= len(ids) {
			continue
		}
		out[ids[i]] = core.ArtistInfo{
			Name:     artist.Name,
			ImageURL: firstImage(artist.Images),
		}
	}
	return out, nil
}

func (c *Client) Playlist(ctx context.Context, id string) (*core.PlaylistInfo, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	playlist, err := client.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("playlist %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	return &core.PlaylistInfo{
		Name:     playlist.Name,
		ImageURL: firstImage(playlist.Images),
	}, nil
}

// FindPlaylist looks for a playlist of the current user by exact name.
func (c *Client) FindPlaylist(ctx context.Context, name string) (string, bool, error) {
	client, err := c.userAPI()
	if err != nil {
		return "", false, err
	}

	offset := 0
	for {
		page, err := client.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize), spotify.Offset(offset))
		if err != nil {
			return "", false, fmt.Errorf("failed to list playlists: %w", err)
		}

		for i := range page.Playlists {
			if page.Playlists[i].Name == name {
				return string(page.Playlists[i].ID), true, nil
			}
		}

		if len(page.Playlists) < playlistPageSize {
			return "", false, nil
		}
		offset += playlistPageSize
	}
}

func (c *Client) CreatePlaylist(ctx context.Context, name string) (string, error) {
	client, err := c.userAPI()
	if err != nil {
		return "", err
	}

	playlist, err := client.CreatePlaylistForUser(ctx, c.userID, name, curatedPlaylistDescription, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}

	c.logger.Info("Playlist created", zap.String("name", name), zap.String("playlistID", string(playlist.ID)))
	return string(playlist.ID), nil
}

func (c *Client) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	client, err := c.userAPI()
	if err != nil {
		return nil, err
	}

	var allTrackIDs []string
	offset := 0

	for {
		items, err := client.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(playlistItemsPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}

		for i := range items.Items {
			// Only process tracks (not episodes or null items)
			if items.Items[i].Track.Track != nil {
				allTrackIDs = append(allTrackIDs, string(items.Items[i].Track.Track.ID))
			}
		}

		if len(items.Items) < playlistItemsPageSize {
			break
		}
		offset += playlistItemsPageSize
	}

	c.logger.Debug("Retrieved playlist tracks",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(allTrackIDs)))

	return allTrackIDs, nil
}

// AddTracks appends up to core.MaxPlaylistAddsPerRequest tracks.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	client, err := c.userAPI()
	if err != nil {
		return err
	}

	if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("failed to add tracks to playlist: %w", err)
	}

	c.logger.Info("Tracks added to playlist",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(trackIDs)))
	return nil
}

func (c *Client) SearchTracks(ctx context.Context, query string) ([]core.TrackCandidate, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	results, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(MaxTrackSearchResults))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if results.Tracks == nil {
		return nil, nil
	}

	candidates := make([]core.TrackCandidate, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		track := &results.Tracks.Tracks[i]
		candidates = append(candidates, core.TrackCandidate{
			ID:      string(track.ID),
			Name:    track.Name,
			Artists: joinArtists(track.Artists),
			URL:     track.ExternalURLs["spotify"],
		})
	}
	return candidates, nil
}

func (c *Client) startOAuthFlow(ctx context.Context) error {
	authURL := c.auth.AuthURL(oauthState)

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if saveErr := c.saveToken(token); saveErr != nil {
		c.logger.Warn("Failed to save token", zap.Error(saveErr))
	}

	if err := c.useUserToken(ctx, token); err != nil {
		return err
	}

	c.logger.Info("OAuth flow completed successfully")
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(c.config.TokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}
	if tokenData.Token == nil {
		return nil, errors.New("token file holds no token")
	}

	return tokenData.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	tokenData := TokenData{Token: token}

	data, err := json.MarshalIndent(tokenData, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.config.TokenPath, data, FilePermission)
}
