// Package github implements the content store against the GitHub
// repository contents API. The repository is the database: every write is
// a commit, the blob sha is the version token, and the change description
// becomes the commit message.
//
// The API's precondition semantics line up with the store contract: a PUT
// carrying a stale sha fails with 409, and a PUT without a sha for a path
// that already exists fails with 422 — both are version conflicts, so an
// unseen document is never clobbered.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpampin/mercadito/internal/transport"
	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// DefaultBaseURL is the hosted API root.
const DefaultBaseURL = "https://api.github.com"

const apiVersion = "2022-11-28"

// Store is a contentstore.Store backed by a GitHub repository.
type Store struct {
	owner   string
	repo    string
	branch  string
	baseURL string
	client  *transport.Client
}

// Compile-time interface check.
var _ contentstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(s *Store) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClient overrides the transport client.
func WithClient(client *transport.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// New creates a store for the given repository and branch, authenticating
// with a personal access token scoped to contents read/write.
func New(owner, repo, branch, token string, opts ...Option) *Store {
	s := &Store{
		owner:   owner,
		repo:    repo,
		branch:  branch,
		baseURL: DefaultBaseURL,
		client:  transport.New(&transport.BearerAuth{Token: token}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// contentFile is the API's file representation.
type contentFile struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

// Read implements the Store interface.
func (s *Store) Read(ctx context.Context, path string) (contentstore.File, error) {
	endpoint := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.branch)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return contentstore.File{}, errors.WrapIO("read", path, err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return contentstore.File{}, err
	}

	var file contentFile
	if err := transport.DecodeResponse(resp, path, &file); err != nil {
		return contentstore.File{}, err
	}

	// The API wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return contentstore.File{}, errors.WrapParse("base64", path, err)
	}

	return contentstore.File{
		Path:    path,
		Content: decoded,
		Version: contentstore.Version(file.SHA),
	}, nil
}

// Write implements the Store interface. The expected version rides along
// as the sha precondition; omitting it asserts the path is new.
func (s *Store) Write(ctx context.Context, path string, content []byte, expected contentstore.Version, message string) (contentstore.Version, error) {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  s.branch,
	}
	if expected != contentstore.None {
		payload["sha"] = string(expected)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return contentstore.None, errors.WrapParse("json", path, err)
	}

	req, err := http.NewRequest(http.MethodPut, s.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return contentstore.None, errors.WrapIO("write", path, err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return contentstore.None, err
	}

	var result struct {
		Content contentFile `json:"content"`
	}
	if err := transport.DecodeResponse(resp, path, &result); err != nil {
		return contentstore.None, conflictAware(err, path, expected)
	}
	return contentstore.Version(result.Content.SHA), nil
}

// Remove implements the Store interface.
func (s *Store) Remove(ctx context.Context, path string, expected contentstore.Version, message string) error {
	payload := map[string]string{
		"message": message,
		"sha":     string(expected),
		"branch":  s.branch,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapParse("json", path, err)
	}

	req, err := http.NewRequest(http.MethodDelete, s.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return errors.WrapIO("delete", path, err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	if err := transport.DecodeResponse(resp, path, nil); err != nil {
		return conflictAware(err, path, expected)
	}
	return nil
}

// List implements the Store interface. A missing directory yields an empty
// listing, not an error.
func (s *Store) List(ctx context.Context, dir string) ([]contentstore.Entry, error) {
	endpoint := s.contentsURL(dir) + "?ref=" + url.QueryEscape(s.branch)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var files []contentFile
	if err := transport.DecodeResponse(resp, dir, &files); err != nil {
		if errors.IsNotFound(err) {
			return []contentstore.Entry{}, nil
		}
		return nil, err
	}

	entries := make([]contentstore.Entry, 0, len(files))
	for _, file := range files {
		kind := contentstore.EntryFile
		if file.Type == "dir" {
			kind = contentstore.EntryDir
		}
		entries = append(entries, contentstore.Entry{
			Path:    file.Path,
			Kind:    kind,
			Version: contentstore.Version(file.SHA),
		})
	}
	return entries, nil
}

// User is the authenticated token owner, used to check the token against
// the allowed login before any write is attempted.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Verify returns the user the configured token belongs to.
func (s *Store) Verify(ctx context.Context) (User, error) {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/user", nil)
	if err != nil {
		return User{}, errors.WrapIO("read", "/user", err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := transport.DecodeResponse(resp, "/user", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Accept", "application/vnd.github+json")
	return s.client.Do(ctx, req)
}

// contentsURL builds the contents endpoint with each path segment escaped.
func (s *Store) contentsURL(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.baseURL + "/repos/" + url.PathEscape(s.owner) + "/" + url.PathEscape(s.repo) + "/contents/" + strings.Join(segments, "/")
}

// conflictAware rewraps precondition failures so callers can branch on the
// conflict sentinel with the offending path attached.
func conflictAware(err error, path string, expected contentstore.Version) error {
	if errors.IsConflict(err) {
		return errors.NewConflictError(path, string(expected), err)
	}
	return err
}
