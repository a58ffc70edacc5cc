package classroom

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Profile is the identity of the user behind a token source, as reported by
// the Google userinfo endpoint.
type Profile struct {
	ID         string
	Name       string
	Email      string
	PictureURL string
}

// FetchProfile resolves the profile of the user whose credential backs ts.
func FetchProfile(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (Profile, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := []option.ClientOption{option.WithTokenSource(ts)}
	if o.endpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := oauth2api.NewService(ctx, apiOpts...)
	if err != nil {
		return Profile{}, fmt.Errorf("classroom: userinfo service: %w", err)
	}

	ui, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Profile{}, fmt.Errorf("classroom: fetch userinfo: %w", err)
	}

	return Profile{
		ID:         ui.Id,
		Name:       ui.Name,
		Email:      ui.Email,
		PictureURL: ui.Picture,
	}, nil
}
