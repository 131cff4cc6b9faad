package services

import (
	"context"
	"testing"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories/memory"
)

type feedFixture struct {
	svc     *FeedService
	users   *memory.UserStore
	follows *memory.FollowStore
	posts   *memory.PostStore
	stories *memory.StoryStore
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	f := &feedFixture{
		users:   memory.NewUserStore(),
		follows: memory.NewFollowStore(),
		posts:   memory.NewPostStore(),
		stories: memory.NewStoryStore(),
	}
	f.svc = NewFeedService(f.users, f.follows, f.posts, f.stories)
	return f
}

func (f *feedFixture) seedUserWithReligion(t *testing.T, id, religion string, private bool) {
	t.Helper()
	err := f.users.CreateUser(context.Background(), &models.User{
		ID:          id,
		Username:    id,
		DisplayName: id,
		Email:       id + "@example.com",
		Religion:    religion,
		IsPrivate:   private,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (f *feedFixture) seedPost(t *testing.T, authorID, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: content, CreatedAt: createdAt}
	if err := f.posts.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("seed post for %s: %v", authorID, err)
	}
	return post
}

func feedAuthors(posts []models.Post) map[string]bool {
	authors := make(map[string]bool)
	for _, p := range posts {
		authors[p.AuthorID] = true
	}
	return authors
}

func TestHomeFeedIsViewerPlusFollowing(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "", true)
	f.seedUserWithReligion(t, "followed", "", true)
	f.seedUserWithReligion(t, "stranger", "", false)

	acceptEdge(t, f.follows, "viewer", "followed")

	now := time.Now()
	f.seedPost(t, "viewer", "mine", now.Add(-3*time.Minute))
	f.seedPost(t, "followed", "followed post", now.Add(-2*time.Minute))
	// Public but not followed: stays out of the home feed.
	f.seedPost(t, "stranger", "public post", now.Add(-1*time.Minute))

	posts, meta, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	authors := feedAuthors(posts)
	if !authors["viewer"] || !authors["followed"] {
		t.Errorf("feed authors = %v, want viewer and followed", authors)
	}
	if authors["stranger"] {
		t.Error("unfollowed public author leaked into home feed")
	}
	if meta.TotalItems != 2 {
		t.Errorf("total items = %d, want 2", meta.TotalItems)
	}
}

func TestDiscoveryFeedWidensWithPublicSameReligion(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "hindu", true)
	f.seedUserWithReligion(t, "publicMatch", "hindu", false)
	f.seedUserWithReligion(t, "privateMatch", "hindu", true)
	f.seedUserWithReligion(t, "publicOther", "buddhist", false)

	now := time.Now()
	f.seedPost(t, "publicMatch", "match", now.Add(-3*time.Minute))
	f.seedPost(t, "privateMatch", "hidden", now.Add(-2*time.Minute))
	f.seedPost(t, "publicOther", "other", now.Add(-1*time.Minute))

	posts, _, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{Discovery: true})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	authors := feedAuthors(posts)
	if !authors["publicMatch"] {
		t.Error("public same-religion author missing from discovery feed")
	}
	if authors["privateMatch"] {
		t.Error("private author included via category fallback")
	}
	if authors["publicOther"] {
		t.Error("different-religion author included via category fallback")
	}
}

func TestFeedExcludesBlockedAuthorsBothDirections(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "hindu", false)
	f.seedUserWithReligion(t, "blockedByViewer", "hindu", false)
	f.seedUserWithReligion(t, "blocksViewer", "hindu", false)

	if _, err := f.users.AddBlockedUser(ctx, "viewer", "blockedByViewer"); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := f.users.AddBlockedUser(ctx, "blocksViewer", "viewer"); err != nil {
		t.Fatalf("block: %v", err)
	}

	now := time.Now()
	f.seedPost(t, "blockedByViewer", "a", now.Add(-2*time.Minute))
	f.seedPost(t, "blocksViewer", "b", now.Add(-1*time.Minute))

	posts, _, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{Discovery: true})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	authors := feedAuthors(posts)
	if authors["blockedByViewer"] || authors["blocksViewer"] {
		t.Errorf("feed authors = %v, blocked pair must be excluded", authors)
	}
}

func TestFeedExcludesDeactivatedAuthorsAndDeletedPosts(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "", false)
	f.seedUserWithReligion(t, "gone", "", false)
	f.seedUserWithReligion(t, "active", "", true)

	acceptEdge(t, f.follows, "viewer", "gone")
	acceptEdge(t, f.follows, "viewer", "active")

	now := time.Now()
	f.seedPost(t, "gone", "from deactivated", now.Add(-3*time.Minute))
	keep := f.seedPost(t, "active", "keep", now.Add(-2*time.Minute))
	deleted := f.seedPost(t, "active", "deleted", now.Add(-1*time.Minute))

	if err := f.users.DeactivateUser(ctx, "gone"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if ok, err := f.posts.SoftDeletePost(ctx, deleted.ID.Hex(), "active"); err != nil || !ok {
		t.Fatalf("soft delete: ok=%v err=%v", ok, err)
	}

	posts, meta, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if meta.TotalItems != 1 {
		t.Errorf("total items = %d, want 1", meta.TotalItems)
	}
	if len(posts) != 1 || posts[0].ID != keep.ID {
		t.Errorf("feed = %+v, want only the surviving post", posts)
	}
}

func TestFeedWithNoPostsYieldsEmptyPage(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "", true)

	posts, meta, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("posts = %v, want empty non-nil slice", posts)
	}
	if meta.TotalItems != 0 || meta.HasNextPage {
		t.Errorf("meta = %+v, want empty page", meta)
	}
}

func TestFeedMissingViewer(t *testing.T) {
	f := newFeedFixture(t)
	if _, _, err := f.svc.BuildFeed(context.Background(), "ghost", FeedOptions{}); err != ErrUserNotFound {
		t.Errorf("BuildFeed missing viewer: got %v, want ErrUserNotFound", err)
	}
}

func TestFeedPagination(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "", false)

	now := time.Now()
	for i := 0; i < 3; i++ {
		f.seedPost(t, "viewer", "post", now.Add(time.Duration(-i)*time.Minute))
	}

	page1, meta1, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{Pager: models.Pager{Page: 1, Limit: 2}})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != 2 || !meta1.HasNextPage || meta1.HasPreviousPage {
		t.Errorf("page 1 = %d posts, meta %+v; want 2 posts with next page only", len(page1), meta1)
	}

	page2, meta2, err := f.svc.BuildFeed(ctx, "viewer", FeedOptions{Pager: models.Pager{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 1 || meta2.HasNextPage || !meta2.HasPreviousPage {
		t.Errorf("page 2 = %d posts, meta %+v; want 1 post with previous page only", len(page2), meta2)
	}

	// Newest first across the page boundary.
	if !page1[0].CreatedAt.After(page1[1].CreatedAt) || !page1[1].CreatedAt.After(page2[0].CreatedAt) {
		t.Error("feed not sorted newest first across pages")
	}
}

func TestStoriesFollowHomeFeedAuthors(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)
	f.seedUserWithReligion(t, "viewer", "hindu", false)
	f.seedUserWithReligion(t, "followed", "hindu", false)
	f.seedUserWithReligion(t, "stranger", "hindu", false)

	acceptEdge(t, f.follows, "viewer", "followed")

	for _, author := range []string{"followed", "stranger"} {
		err := f.stories.CreateStory(ctx, &models.Story{AuthorID: author, MediaURL: "https://cdn.example.com/" + author + ".jpg"})
		if err != nil {
			t.Fatalf("seed story for %s: %v", author, err)
		}
	}

	stories, err := f.svc.Stories(ctx, "viewer")
	if err != nil {
		t.Fatalf("Stories: %v", err)
	}
	if len(stories) != 1 || stories[0].AuthorID != "followed" {
		t.Errorf("stories = %+v, want only the followed author's story", stories)
	}
}
