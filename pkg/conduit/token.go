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
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/nuclio/errors"
)

// TokenExpiry returns when a Conduit token expires. The signature is not verified, only the server
// holds the key. A token without an "exp" claim returns the zero time
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, errors.Wrap(err, "Failed to parse token")
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}

	return claims.ExpiresAt.Time, nil
}

// TokenExpired returns true if the token carries an expiration that has passed
func TokenExpired(token string, now time.Time) bool {
	expiry, err := TokenExpiry(token)
	if err != nil || expiry.IsZero() {
		return false
	}

	return !now.Before(expiry)
}
