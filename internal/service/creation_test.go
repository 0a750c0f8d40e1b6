package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quickai/quickai/internal/model"
	"github.com/quickai/quickai/internal/repository"
)

// fakeReader is an in-memory CreationReader.
type fakeReader struct {
	mu        sync.Mutex
	creations map[string]*model.Creation
}

func newFakeReader(creations ...*model.Creation) *fakeReader {
	r := &fakeReader{creations: make(map[string]*model.Creation)}
	for _, c := range creations {
		r.creations[c.ID] = c
	}
	return r
}

func (r *fakeReader) get(id string) (*model.Creation, bool) {
	c, ok := r.creations[id]
	if !ok {
		return nil, false
	}
	copied := *c
	copied.Likes = append([]string(nil), c.Likes...)
	return &copied, true
}

func (r *fakeReader) GetCreationByID(ctx context.Context, id string) (*model.Creation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.get(id)
	if !ok {
		return nil, repository.ErrCreationNotFound
	}
	return c, nil
}

func (r *fakeReader) ListCreationsByUser(ctx context.Context, userID string) ([]*model.Creation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Creation
	for id, c := range r.creations {
		if c.UserID == userID {
			copied, _ := r.get(id)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r *fakeReader) ListPublishedCreations(ctx context.Context) ([]*model.Creation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Creation
	for id, c := range r.creations {
		if c.Publish {
			copied, _ := r.get(id)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r *fakeReader) SetCreationPublish(ctx context.Context, id, userID string, publish bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creations[id]
	if !ok || c.UserID != userID {
		return repository.ErrCreationNotFound
	}
	c.Publish = publish
	return nil
}

func (r *fakeReader) AddLike(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creations[id]
	if !ok {
		return false, repository.ErrCreationNotFound
	}
	for _, existing := range c.Likes {
		if existing == userID {
			return false, nil
		}
	}
	c.Likes = append(c.Likes, userID)
	return true, nil
}

func (r *fakeReader) RemoveLike(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creations[id]
	if !ok {
		return false, repository.ErrCreationNotFound
	}
	for i, existing := range c.Likes {
		if existing == userID {
			c.Likes = append(c.Likes[:i], c.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestTogglePublish_Owner(t *testing.T) {
	t.Parallel()

	store := newFakeReader(&model.Creation{ID: "c1", UserID: "user-1", Likes: []string{}})
	svc := NewCreationService(store, testLogger(), nil)

	creation, err := svc.TogglePublish(freeContext("user-1"), "c1", true)
	if err != nil {
		t.Fatalf("TogglePublish() error = %v", err)
	}
	if !creation.Publish {
		t.Error("creation should be published")
	}

	creation, err = svc.TogglePublish(freeContext("user-1"), "c1", false)
	if err != nil {
		t.Fatalf("TogglePublish() unpublish error = %v", err)
	}
	if creation.Publish {
		t.Error("creation should be unpublished again")
	}
}

func TestTogglePublish_NotOwner(t *testing.T) {
	t.Parallel()

	store := newFakeReader(&model.Creation{ID: "c1", UserID: "user-1", Likes: []string{}})
	svc := NewCreationService(store, testLogger(), nil)

	_, err := svc.TogglePublish(freeContext("user-2"), "c1", true)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}

	stored, _ := store.GetCreationByID(context.Background(), "c1")
	if stored.Publish {
		t.Error("a denied toggle must not change visibility")
	}
}

func TestTogglePublish_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewCreationService(newFakeReader(), testLogger(), nil)

	_, err := svc.TogglePublish(freeContext("user-1"), "missing", true)
	if !errors.Is(err, ErrCreationNotFound) {
		t.Fatalf("error = %v, want ErrCreationNotFound", err)
	}
}

func TestTogglePublish_Unauthenticated(t *testing.T) {
	t.Parallel()

	svc := NewCreationService(newFakeReader(), testLogger(), nil)

	_, err := svc.TogglePublish(context.Background(), "c1", true)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestToggleLike_Involution(t *testing.T) {
	t.Parallel()

	store := newFakeReader(&model.Creation{ID: "c1", UserID: "user-1", Likes: []string{"user-3"}})
	svc := NewCreationService(store, testLogger(), nil)

	out, err := svc.ToggleLike(freeContext("user-2"), "c1")
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !out.Liked {
		t.Error("first toggle should like")
	}
	if !out.Creation.LikedBy("user-2") {
		t.Error("refreshed creation should contain the caller")
	}
	if !out.Creation.LikedBy("user-3") {
		t.Error("other users' likes must survive")
	}

	out, err = svc.ToggleLike(freeContext("user-2"), "c1")
	if err != nil {
		t.Fatalf("second ToggleLike() error = %v", err)
	}
	if out.Liked {
		t.Error("second toggle should unlike")
	}
	if out.Creation.LikedBy("user-2") {
		t.Error("caller should be removed from likes")
	}
	if out.Creation.LikeCount() != 1 {
		t.Errorf("like count = %d, want 1", out.Creation.LikeCount())
	}
}

func TestToggleLike_AnyAuthenticatedUser(t *testing.T) {
	t.Parallel()

	// Liking does not require ownership, only authentication.
	store := newFakeReader(&model.Creation{ID: "c1", UserID: "owner", Likes: []string{}})
	svc := NewCreationService(store, testLogger(), nil)

	out, err := svc.ToggleLike(freeContext("stranger"), "c1")
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !out.Liked {
		t.Error("stranger should be able to like a creation")
	}
}

func TestToggleLike_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewCreationService(newFakeReader(), testLogger(), nil)

	_, err := svc.ToggleLike(freeContext("user-1"), "missing")
	if !errors.Is(err, ErrCreationNotFound) {
		t.Fatalf("error = %v, want ErrCreationNotFound", err)
	}
}

func TestListOwnCreations(t *testing.T) {
	t.Parallel()

	store := newFakeReader(
		&model.Creation{ID: "c1", UserID: "user-1", Likes: []string{}},
		&model.Creation{ID: "c2", UserID: "user-1", Publish: true, Likes: []string{}},
		&model.Creation{ID: "c3", UserID: "user-2", Likes: []string{}},
	)
	svc := NewCreationService(store, testLogger(), nil)

	creations, err := svc.ListOwnCreations(freeContext("user-1"))
	if err != nil {
		t.Fatalf("ListOwnCreations() error = %v", err)
	}
	if len(creations) != 2 {
		t.Errorf("len = %d, want 2 (published and unpublished rows alike)", len(creations))
	}
}

func TestListPublicFeed(t *testing.T) {
	t.Parallel()

	store := newFakeReader(
		&model.Creation{ID: "c1", UserID: "user-1", Likes: []string{}},
		&model.Creation{ID: "c2", UserID: "user-1", Publish: true, Likes: []string{}},
		&model.Creation{ID: "c3", UserID: "user-2", Publish: true, Likes: []string{}},
	)
	svc := NewCreationService(store, testLogger(), nil)

	creations, err := svc.ListPublicFeed(context.Background())
	if err != nil {
		t.Fatalf("ListPublicFeed() error = %v", err)
	}
	if len(creations) != 2 {
		t.Errorf("len = %d, want only published rows", len(creations))
	}
	for _, c := range creations {
		if !c.Publish {
			t.Errorf("creation %s in feed is not published", c.ID)
		}
	}
}
