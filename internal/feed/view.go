// ABOUTME: Pure feed view builder joining posts, users, and reaction state.
// ABOUTME: Sorting, search filtering, and author resolution with Anonymous fallback.
package feed

import (
	"sort"
	"strings"

	"github.com/2389-research/feedkit/internal/models"
)

// AnonymousName is substituted when a post's author has no profile.
const AnonymousName = "Anonymous"

// ViewRecord is the render-ready join of a post, its resolved author, and
// its reaction state. Derived, never independently mutated.
type ViewRecord struct {
	Post           models.Post
	AuthorName     string
	AuthorPhotoURL string
	LikeCount      int
	HasLiked       bool
	Expanded       bool
	Comments       []models.Comment
}

// BuildView produces the ordered feed for one snapshot of the cache.
// Posts sort newest first (ties broken by id); searchTerm filters by
// case-insensitive substring over title, body, and resolved author name,
// with the empty term passing everything. Side-effect free and
// deterministic for a given input.
func BuildView(posts []models.Post, users map[string]models.User, currentUserID, searchTerm string) []ViewRecord {
	sorted := append([]models.Post(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	records := make([]ViewRecord, 0, len(sorted))
	for _, post := range sorted {
		author, hasAuthor := users[post.UserID]
		name := author.FullName
		if !hasAuthor || name == "" {
			name = AnonymousName
		}

		if term != "" && !matchesSearch(post, name, term) {
			continue
		}

		_, liked := post.Reactions[currentUserID]
		if currentUserID == "" {
			liked = false
		}

		records = append(records, ViewRecord{
			Post:           post,
			AuthorName:     name,
			AuthorPhotoURL: author.PhotoURL,
			LikeCount:      len(post.Reactions),
			HasLiked:       liked,
		})
	}
	return records
}

func matchesSearch(post models.Post, authorName, term string) bool {
	return strings.Contains(strings.ToLower(post.Title), term) ||
		strings.Contains(strings.ToLower(post.Content), term) ||
		strings.Contains(strings.ToLower(authorName), term)
}
