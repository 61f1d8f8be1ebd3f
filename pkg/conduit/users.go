/*
Copyright 2023 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package conduit

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nuclio/errors"
)

type userEnvelope struct {
	User User `json:"user"`
}

type profileEnvelope struct {
	Profile Profile `json:"profile"`
}

// Login authenticates and uses the returned token for subsequent requests
func (c *Client) Login(ctx context.Context, credentials *Credentials) (*User, error) {
	envelope := userEnvelope{}

	if err := c.call(ctx,
		http.MethodPost,
		"/users/login",
		map[string]interface{}{"user": credentials},
		&envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to login")
	}

	c.SetToken(envelope.User.Token)

	return &envelope.User, nil
}

// Register creates a user and uses the returned token for subsequent requests
func (c *Client) Register(ctx context.Context, registration *Registration) (*User, error) {
	envelope := userEnvelope{}

	if err := c.call(ctx,
		http.MethodPost,
		"/users",
		map[string]interface{}{"user": registration},
		&envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to register")
	}

	c.SetToken(envelope.User.Token)

	return &envelope.User, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	envelope := userEnvelope{}

	if err := c.get(ctx, "/user", nil, &envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to get current user")
	}

	return &envelope.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, update *UserUpdate) (*User, error) {
	envelope := userEnvelope{}

	if err := c.call(ctx,
		http.MethodPut,
		"/user",
		map[string]interface{}{"user": update},
		&envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to update user")
	}

	return &envelope.User, nil
}

func (c *Client) GetProfile(ctx context.Context, username string) (*Profile, error) {
	envelope := profileEnvelope{}

	if err := c.get(ctx, profilePath(username), nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to get profile of %s", username)
	}

	return &envelope.Profile, nil
}

func (c *Client) Follow(ctx context.Context, username string) (*Profile, error) {
	envelope := profileEnvelope{}

	if err := c.call(ctx, http.MethodPost, profilePath(username)+"/follow", nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to follow %s", username)
	}

	return &envelope.Profile, nil
}

func (c *Client) Unfollow(ctx context.Context, username string) (*Profile, error) {
	envelope := profileEnvelope{}

	if err := c.call(ctx, http.MethodDelete, profilePath(username)+"/follow", nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to unfollow %s", username)
	}

	return &envelope.Profile, nil
}

func profilePath(username string) string {
	return "/profiles/" + url.PathEscape(username)
}
