// Package youtube brokers connected Google/YouTube accounts: token refresh,
// channel passthrough, and publishing rendered videos.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"clipstudio/errs"
)

// Connector wraps the Google OAuth2 app credentials for connected accounts.
type Connector struct {
	oauth  *oauth2.Config
	logger *zap.Logger
}

// NewConnector creates a connector for the given OAuth client.
func NewConnector(clientID, clientSecret string, logger *zap.Logger) *Connector {
	return &Connector{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				youtubeapi.YoutubeUploadScope,
				youtubeapi.YoutubeReadonlyScope,
			},
		},
		logger: logger,
	}
}

// TokenResponse is the refresh contract: access token plus lifetime seconds.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RefreshToken exchanges a refresh token for a fresh access token. A refused
// exchange is an auth error: the user must reconnect the account, so callers
// should not present it as a generic failure.
func (c *Connector) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, errs.New(errs.KindAuth, "refresh_token is required")
	}

	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, "account connection expired, reconnect your account", err)
	}

	expiresIn := int64(0)
	if !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return &TokenResponse{
		AccessToken: token.AccessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

// Channel returns the authenticated user's channel with snippet and
// statistics, provider-shaped and passed through unmodified.
func (c *Connector) Channel(ctx context.Context, accessToken string) (*youtubeapi.Channel, error) {
	service, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
		Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "channel lookup failed")
	}
	if len(resp.Items) == 0 {
		return nil, errs.New(errs.KindAuth, "no channel for this account")
	}
	return resp.Items[0], nil
}

// VideoMetadata describes a video being published.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// Publish uploads the rendered file at path to the connected channel and
// returns the new video id.
func (c *Connector) Publish(ctx context.Context, accessToken, path string, metadata VideoMetadata) (string, error) {
	service, err := c.service(ctx, accessToken)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	privacy := metadata.Privacy
	if privacy == "" {
		privacy = "private"
	}

	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(file)

	response, err := call.Do()
	if err != nil {
		return "", classify(err, "failed to upload video")
	}

	c.logger.Info("video published", zap.String("video_id", response.Id))
	return response.Id, nil
}

func (c *Connector) service(ctx context.Context, accessToken string) (*youtubeapi.Service, error) {
	if accessToken == "" {
		return nil, errs.New(errs.KindAuth, "missing bearer token")
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	service, err := youtubeapi.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return service, nil
}

// classify maps provider 401/403 responses to auth errors so the caller can
// drive a reconnect flow instead of a generic failure.
func classify(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return errs.Wrap(errs.KindAuth, "token rejected, reconnect your account", err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
