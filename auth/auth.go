/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package auth resolves the request principal, either from a header set by a
// trusted proxy or from an OpenID Connect ID token, and stores it with
// userctx.
package auth

import (
	"context"
	"crypto"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/userctx"
)

// DefaultUserHeader is read by Header when no name is given.
const DefaultUserHeader = "X-User-ID"

var ErrMissingToken = errors.New("missing bearer token")

// Claims is the subset of ID token claims used to identify the principal.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// Verifier checks a raw token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Claims, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys and verifies ID tokens issued
// for clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (Verifier, error) {
	if issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if clientID == "" {
		return nil, errors.New("client ID is required")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &oidcVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticVerifier verifies tokens against fixed public keys without
// discovery.
func NewStaticVerifier(issuer, clientID string, keys ...crypto.PublicKey) Verifier {
	keySet := &oidc.StaticKeySet{PublicKeys: keys}
	return &oidcVerifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: clientID})}
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Claims{}, err
	}
	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}
	return claims, nil
}

// Header trusts the named header as the principal id.
func Header(name string) func(http.Handler) http.Handler {
	if name == "" {
		name = DefaultUserHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := strings.TrimSpace(r.Header.Get(name)); id != "" {
				r = r.WithContext(userctx.SetUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Bearer verifies an "Authorization: Bearer" token. Invalid tokens are
// rejected with 401; a missing token is rejected only when required.
func Bearer(verifier Verifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				if required {
					_ = response.Error("Unauthenticated.", http.StatusUnauthorized).Write(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				_ = response.Error("Unauthenticated.", http.StatusUnauthorized).Write(w)
				return
			}
			ctx := userctx.SetUserID(r.Context(), claims.Subject)
			if claims.Email != "" {
				ctx = userctx.SetUserEmail(ctx, claims.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
