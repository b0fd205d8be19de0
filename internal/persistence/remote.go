package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/lox/sphereforge/internal/simerr"
)

// RemoteBackend stores opaque save blobs against an HTTP endpoint,
// authenticated with a bearer token (spec §4.10's remote persistence
// backend). This is the one ambient component built directly on
// net/http rather than a pack third-party client: the pack's HTTP-ish
// dependencies (gorilla/websocket) are a different protocol entirely,
// and no REST/object-store client ships in the example set for this
// shape of request — justified in DESIGN.md.
type RemoteBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote constructs a RemoteBackend against baseURL, authenticating
// every request with token as a bearer credential.
func NewRemote(baseURL, token string, client *http.Client) *RemoteBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteBackend{baseURL: baseURL, token: token, client: client}
}

func (r *RemoteBackend) endpoint(key string) string {
	return r.baseURL + "/saves/" + url.PathEscape(key)
}

func (r *RemoteBackend) Put(ctx context.Context, key string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.endpoint(key), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", simerr.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return simerr.ErrNotAuthenticated
	default:
		return fmt.Errorf("%w: unexpected status %d", simerr.ErrStorageUnavailable, resp.StatusCode)
	}
}

func (r *RemoteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(key), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", simerr.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, simerr.ErrNotAuthenticated
	case http.StatusNotFound:
		return nil, errNoSuchKey
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", simerr.ErrStorageUnavailable, resp.StatusCode)
	}
}
