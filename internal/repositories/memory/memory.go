// Package memory provides in-memory implementations of the repository
// interfaces for tests. Conditional transitions are performed under a
// mutex so the stores preserve the exactly-once semantics the MongoDB
// implementations get from conditional single-document updates.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is an in-memory repositories.UserRepository.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.BlockedUsers = append([]string(nil), u.BlockedUsers...)
	return &cp
}

func (s *UserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return repositories.ErrDuplicate
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *UserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.DisplayName = user.DisplayName
	stored.Bio = user.Bio
	stored.AvatarURL = user.AvatarURL
	stored.Religion = user.Religion
	stored.IsPrivate = user.IsPrivate
	stored.DeviceToken = user.DeviceToken
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) DeactivateUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsActive = false
	return nil
}

func (s *UserStore) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, *copyUser(u))
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *UserStore) AdjustFollowCounts(_ context.Context, followerID, followingID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if follower, ok := s.users[followerID]; ok {
		follower.FollowingCount += delta
	}
	if following, ok := s.users[followingID]; ok {
		following.FollowersCount += delta
	}
	return nil
}

func (s *UserStore) AdjustPostsCount(_ context.Context, id string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.PostsCount += delta
	}
	return nil
}

func (s *UserStore) AddBlockedUser(_ context.Context, blockerID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocker, ok := s.users[blockerID]
	if !ok {
		return false, nil
	}
	for _, id := range blocker.BlockedUsers {
		if id == targetID {
			return false, nil
		}
	}
	blocker.BlockedUsers = append(blocker.BlockedUsers, targetID)
	return true, nil
}

func (s *UserStore) RemoveBlockedUser(_ context.Context, blockerID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocker, ok := s.users[blockerID]
	if !ok {
		return false, nil
	}
	for i, id := range blocker.BlockedUsers {
		if id == targetID {
			blocker.BlockedUsers = append(blocker.BlockedUsers[:i], blocker.BlockedUsers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) BlockerIDs(_ context.Context, targetID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.users {
		for _, id := range u.BlockedUsers {
			if id == targetID {
				out = append(out, u.ID)
				break
			}
		}
	}
	return out, nil
}

func (s *UserStore) PublicUserIDsByReligion(_ context.Context, religion string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.users {
		if u.Religion == religion && !u.IsPrivate && u.IsActive {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func (s *UserStore) ActiveUserIDs(_ context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, id := range ids {
		if u, ok := s.users[id]; ok && u.IsActive {
			out = append(out, id)
		}
	}
	return out, nil
}

// FollowStore is an in-memory repositories.FollowRepository.
type FollowStore struct {
	mu    sync.Mutex
	edges map[string]*models.FollowEdge // keyed by hex document ID
}

// NewFollowStore creates an empty FollowStore.
func NewFollowStore() *FollowStore {
	return &FollowStore{edges: make(map[string]*models.FollowEdge)}
}

func copyEdge(e *models.FollowEdge) *models.FollowEdge {
	cp := *e
	if e.RespondedAt != nil {
		t := *e.RespondedAt
		cp.RespondedAt = &t
	}
	return &cp
}

func (s *FollowStore) findPair(followerID, followingID string) *models.FollowEdge {
	for _, e := range s.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return e
		}
	}
	return nil
}

func (s *FollowStore) InsertEdge(_ context.Context, edge *models.FollowEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findPair(edge.FollowerID, edge.FollowingID) != nil {
		return repositories.ErrDuplicate
	}
	if edge.ID.IsZero() {
		edge.ID = primitive.NewObjectID()
	}
	s.edges[edge.ID.Hex()] = copyEdge(edge)
	return nil
}

func (s *FollowStore) GetEdge(_ context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := s.findPair(followerID, followingID)
	if edge == nil {
		return nil, repositories.ErrNotFound
	}
	return copyEdge(edge), nil
}

func (s *FollowStore) GetEdgeByID(_ context.Context, id string) (*models.FollowEdge, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("invalid follow edge ID format: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyEdge(edge), nil
}

func (s *FollowStore) ReopenEdge(_ context.Context, followerID, followingID string, requestedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := s.findPair(followerID, followingID)
	if edge == nil || edge.Status != models.FollowStatusRejected {
		return false, nil
	}
	edge.Status = models.FollowStatusPending
	edge.RequestedAt = requestedAt
	edge.RespondedAt = nil
	return true, nil
}

func (s *FollowStore) TransitionEdge(_ context.Context, id string, from, to models.FollowStatus, respondedAt time.Time) (bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return false, fmt.Errorf("invalid follow edge ID format: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id]
	if !ok || edge.Status != from {
		return false, nil
	}
	edge.Status = to
	t := respondedAt
	edge.RespondedAt = &t
	return true, nil
}

func (s *FollowStore) DeleteEdge(_ context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := s.findPair(followerID, followingID)
	if edge == nil {
		return nil, repositories.ErrNotFound
	}
	delete(s.edges, edge.ID.Hex())
	return copyEdge(edge), nil
}

func (s *FollowStore) DeleteEdgesBetween(ctx context.Context, userA, userB string) ([]models.FollowEdge, error) {
	var deleted []models.FollowEdge
	for _, pair := range [][2]string{{userA, userB}, {userB, userA}} {
		edge, err := s.DeleteEdge(ctx, pair[0], pair[1])
		if err != nil {
			if err == repositories.ErrNotFound {
				continue
			}
			return deleted, err
		}
		deleted = append(deleted, *edge)
	}
	return deleted, nil
}

func (s *FollowStore) AcceptedFollowingIDs(_ context.Context, followerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.edges {
		if e.FollowerID == followerID && e.Status == models.FollowStatusAccepted {
			out = append(out, e.FollowingID)
		}
	}
	return out, nil
}

func (s *FollowStore) IsAccepted(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := s.findPair(followerID, followingID)
	return edge != nil && edge.Status == models.FollowStatusAccepted, nil
}

func (s *FollowStore) ListFollowers(_ context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	return s.list(func(e *models.FollowEdge) bool {
		return e.FollowingID == userID && e.Status == models.FollowStatusAccepted
	}, skip, limit)
}

func (s *FollowStore) ListFollowing(_ context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	return s.list(func(e *models.FollowEdge) bool {
		return e.FollowerID == userID && e.Status == models.FollowStatusAccepted
	}, skip, limit)
}

func (s *FollowStore) ListPendingRequests(_ context.Context, userID string, skip, limit int64) ([]models.FollowEdge, int64, error) {
	return s.list(func(e *models.FollowEdge) bool {
		return e.FollowingID == userID && e.Status == models.FollowStatusPending
	}, skip, limit)
}

// CountEdgesBetween reports how many edge documents exist for the pair in
// either direction. Test helper, not part of the repository interface.
func (s *FollowStore) CountEdgesBetween(userA, userB string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.edges {
		if (e.FollowerID == userA && e.FollowingID == userB) || (e.FollowerID == userB && e.FollowingID == userA) {
			count++
		}
	}
	return count
}

func (s *FollowStore) list(match func(*models.FollowEdge) bool, skip, limit int64) ([]models.FollowEdge, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.FollowEdge
	for _, e := range s.edges {
		if match(e) {
			all = append(all, *copyEdge(e))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].RequestedAt, all[j].RequestedAt
		if all[i].RespondedAt != nil {
			ti = *all[i].RespondedAt
		}
		if all[j].RespondedAt != nil {
			tj = *all[j].RespondedAt
		}
		return ti.After(tj)
	})
	total := int64(len(all))
	if skip >= total {
		return nil, total, nil
	}
	all = all[skip:]
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// PostStore is an in-memory repositories.PostRepository.
type PostStore struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

// NewPostStore creates an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]*models.Post)}
}

func (s *PostStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.IsActive = true
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	cp := *post
	s.posts[post.ID.Hex()] = &cp
	return nil
}

func (s *PostStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok || !post.IsActive {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (s *PostStore) GetPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, int64, error) {
	return s.GetPostsByAuthors(ctx, []string{authorID}, skip, limit)
}

func (s *PostStore) GetPostsByAuthors(_ context.Context, authorIDs []string, skip, limit int64) ([]models.Post, int64, error) {
	if len(authorIDs) == 0 {
		return nil, 0, nil
	}
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Post
	for _, p := range s.posts {
		if p.IsActive && authors[p.AuthorID] {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if skip >= total {
		return nil, total, nil
	}
	all = all[skip:]
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *PostStore) SoftDeletePost(_ context.Context, id, authorID string) (bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return false, fmt.Errorf("invalid post ID format: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok || post.AuthorID != authorID || !post.IsActive {
		return false, nil
	}
	post.IsActive = false
	return true, nil
}

// StoryStore is an in-memory repositories.StoryRepository.
type StoryStore struct {
	mu      sync.Mutex
	stories map[string]*models.Story
}

// NewStoryStore creates an empty StoryStore.
func NewStoryStore() *StoryStore {
	return &StoryStore{stories: make(map[string]*models.Story)}
}

func (s *StoryStore) CreateStory(_ context.Context, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	story.ID = primitive.NewObjectID()
	story.IsActive = true
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	cp := *story
	s.stories[story.ID.Hex()] = &cp
	return nil
}

func (s *StoryStore) GetActiveStoriesByAuthors(_ context.Context, authorIDs []string) ([]models.Story, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Story
	now := time.Now()
	for _, st := range s.stories {
		if st.IsActive && authors[st.AuthorID] && st.ExpiresAt.After(now) {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *StoryStore) DeleteExpiredStories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, st := range s.stories {
		if !st.ExpiresAt.After(now) {
			delete(s.stories, id)
		}
	}
	return nil
}

// NotificationStore is an in-memory repositories.NotificationRepository.
// FailCreates makes CreateNotification return an error, for exercising the
// fire-and-forget contract.
type NotificationStore struct {
	mu            sync.Mutex
	nextID        uint
	notifications []models.Notification

	FailCreates bool
}

// NewNotificationStore creates an empty NotificationStore.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) CreateNotification(notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreates {
		return fmt.Errorf("notification store unavailable")
	}
	s.nextID++
	notification.ID = s.nextID
	notification.CreatedAt = time.Now()
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *NotificationStore) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *NotificationStore) GetUnreadCount(recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkAsRead(notificationID uint, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID && s.notifications[i].RecipientID == recipientID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *NotificationStore) MarkAllAsRead(recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].RecipientID == recipientID {
			s.notifications[i].IsRead = true
		}
	}
	return nil
}
