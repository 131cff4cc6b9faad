package services

import (
	"context"
	"log"
	"sort"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
)

// FeedService assembles paginated content feeds from the viewer's visible
// author set. The home feed covers the viewer and the users they follow;
// the discovery feed additionally widens with non-private authors sharing
// the viewer's religion. Blocked and deactivated authors are always
// excluded. An empty author set yields an empty page, not an error.
type FeedService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	posts   repositories.PostRepository
	stories repositories.StoryRepository
}

// NewFeedService creates a new FeedService
func NewFeedService(users repositories.UserRepository, follows repositories.FollowRepository, posts repositories.PostRepository, stories repositories.StoryRepository) *FeedService {
	return &FeedService{users: users, follows: follows, posts: posts, stories: stories}
}

// FeedOptions controls feed assembly.
type FeedOptions struct {
	Discovery bool
	Pager     models.Pager
}

// BuildFeed returns a page of posts by the viewer's visible authors, newest first.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID string, opts FeedOptions) ([]models.Post, models.PageMeta, error) {
	pager := opts.Pager.Normalize()

	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	authors, err := s.VisibleAuthorIDs(ctx, viewer, opts.Discovery)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	if len(authors) == 0 {
		return []models.Post{}, models.NewPageMeta(pager, 0), nil
	}

	posts, total, err := s.posts.GetPostsByAuthors(ctx, authors, pager.Skip(), int64(pager.Limit))
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, models.NewPageMeta(pager, total), nil
}

// Stories returns the unexpired stories of the viewer's home-feed authors.
// Expired documents are swept lazily on read.
func (s *FeedService) Stories(ctx context.Context, viewerID string) ([]models.Story, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.stories.DeleteExpiredStories(ctx); err != nil {
		log.Printf("failed to sweep expired stories: %v", err)
	}
	authors, err := s.VisibleAuthorIDs(ctx, viewer, false)
	if err != nil {
		return nil, err
	}
	stories, err := s.stories.GetActiveStoriesByAuthors(ctx, authors)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []models.Story{}
	}
	return stories, nil
}

// VisibleAuthorIDs computes the viewer's visible author set: the viewer
// plus everyone they hold an accepted edge to, widened for discovery with
// public same-religion authors. Authors the viewer has blocked, authors
// blocking the viewer and deactivated authors are removed.
func (s *FeedService) VisibleAuthorIDs(ctx context.Context, viewer *models.User, discovery bool) ([]string, error) {
	set := map[string]bool{viewer.ID: true}

	following, err := s.follows.AcceptedFollowingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range following {
		set[id] = true
	}

	if discovery && viewer.Religion != "" {
		// Category fallback widens with public authors only; a private
		// author is never included this way.
		fallback, err := s.users.PublicUserIDsByReligion(ctx, viewer.Religion)
		if err != nil {
			return nil, err
		}
		for _, id := range fallback {
			set[id] = true
		}
	}

	for _, id := range viewer.BlockedUsers {
		delete(set, id)
	}
	blockers, err := s.users.BlockerIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range blockers {
		delete(set, id)
	}

	candidates := make([]string, 0, len(set))
	for id := range set {
		candidates = append(candidates, id)
	}
	active, err := s.users.ActiveUserIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	sort.Strings(active)
	return active, nil
}

func (s *FeedService) viewer(ctx context.Context, viewerID string) (*models.User, error) {
	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return viewer, nil
}
