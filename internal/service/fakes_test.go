package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/auth"
	"github.com/sakif/commentdesk/internal/model"
)

// fakeUserRepo is an in-memory repository.UserRepository keyed by external id.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.User
	nextID int

	createErr error
	getErr    error
	updateErr error

	// missNextGet makes the next lookup report not-found regardless of state.
	missNextGet bool

	creates int
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.ExternalID]; ok {
		return apperror.Conflict("user", "externalId", user.ExternalID)
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ExternalID] = *user
	return nil
}

func (f *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.missNextGet {
		f.missNextGet = false
		return nil, apperror.NotFound("user", "externalId", externalID)
	}
	u, ok := f.users[externalID]
	if !ok {
		return nil, apperror.NotFound("user", "externalId", externalID)
	}
	return &u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ExternalID]; !ok {
		return apperror.NotFound("user", "externalId", user.ExternalID)
	}
	user.UpdatedAt = time.Now()
	f.users[user.ExternalID] = *user
	return nil
}

func (f *fakeUserRepo) Close() error { return nil }

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// fakeGraph records calls and returns canned bodies.
type fakeGraph struct {
	me       string
	media    string
	comments string
	posted   string
	err      error

	calls       int
	lastToken   string
	lastFields  string
	lastMediaID string
	lastReplyTo string
	lastMessage string
}

func (g *fakeGraph) record(token string) error {
	g.calls++
	g.lastToken = token
	return g.err
}

func (g *fakeGraph) Me(_ context.Context, token, fields string) (json.RawMessage, error) {
	if err := g.record(token); err != nil {
		return nil, err
	}
	g.lastFields = fields
	return json.RawMessage(g.me), nil
}

func (g *fakeGraph) Media(_ context.Context, token string) (json.RawMessage, error) {
	if err := g.record(token); err != nil {
		return nil, err
	}
	return json.RawMessage(g.media), nil
}

func (g *fakeGraph) Comments(_ context.Context, token, mediaID string) (json.RawMessage, error) {
	if err := g.record(token); err != nil {
		return nil, err
	}
	g.lastMediaID = mediaID
	return json.RawMessage(g.comments), nil
}

func (g *fakeGraph) PostComment(_ context.Context, token, mediaID, commentID, message string) (json.RawMessage, error) {
	if err := g.record(token); err != nil {
		return nil, err
	}
	g.lastMediaID = mediaID
	g.lastReplyTo = commentID
	g.lastMessage = message
	return json.RawMessage(g.posted), nil
}

// fakeProvider hands out a scripted sequence of exchange results.
type fakeProvider struct {
	users     []*auth.InstagramUser
	err       error
	exchanges int
	lastState string
}

func (p *fakeProvider) AuthURL(state string) string {
	p.lastState = state
	if state == "" {
		return "https://api.instagram.com/oauth/authorize?client_id=app"
	}
	return "https://api.instagram.com/oauth/authorize?client_id=app&state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*auth.InstagramUser, error) {
	p.exchanges++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.users) == 0 {
		return nil, errors.New("no scripted exchange left")
	}
	u := p.users[0]
	p.users = p.users[1:]
	return u, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
