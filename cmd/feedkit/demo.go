// ABOUTME: Demo data seeding for --local mode.
// ABOUTME: Fills the in-memory store with users, posts, comments, and tasks.
package main

import (
	"fmt"
	"time"

	"github.com/2389-research/feedkit/internal/store"
)

// seedDemoData populates a fresh in-memory store with a small but
// representative data set: three users, posts with reactions, one comment
// thread, and closed tasks spread across categories and dates.
func seedDemoData(mem *store.MemoryStore) {
	now := time.Now().UTC()

	mem.Seed("users", "demo-user", map[string]any{
		"fullName": "Demo User",
		"photoURL": "",
	})
	mem.Seed("users", "ana", map[string]any{
		"fullName": "Ana Souza",
		"photoURL": "",
	})
	mem.Seed("users", "rafael", map[string]any{
		"fullName": "Rafael Lima",
		"photoURL": "",
	})

	mem.Seed("forums", "post-1", map[string]any{
		"title":     "Survey results are in",
		"content":   "The quarterly survey wrapped up. Response rate was 72%, up from 61%.",
		"userId":    "ana",
		"createdAt": now.Add(-2 * time.Hour),
		"reactions": map[string]string{"rafael": "like"},
	})
	mem.Seed("forums", "post-2", map[string]any{
		"title":     "Field kit checklist updated",
		"content":   "Added the spare battery pack and the new label printer to the checklist.",
		"userId":    "rafael",
		"createdAt": now.Add(-26 * time.Hour),
		"reactions": map[string]string{},
	})
	mem.Seed("forums", "post-3", map[string]any{
		"title":     "Welcome aboard",
		"content":   "Say hi to the two new folks joining the operations team this week.",
		"userId":    "ana",
		"createdAt": now.Add(-3 * 24 * time.Hour),
		"reactions": map[string]string{"ana": "like", "rafael": "like"},
	})

	mem.Seed("forums/post-1/comments", "comment-1", map[string]any{
		"userId":    "rafael",
		"text":      "Nice jump in participation.",
		"createdAt": now.Add(-90 * time.Minute),
	})
	mem.Seed("forums/post-1/comments", "comment-2", map[string]any{
		"userId":    "ana",
		"text":      "Full breakdown coming on Friday.",
		"createdAt": now.Add(-30 * time.Minute),
	})

	categories := []string{
		"Levantamento Técnico", "Eventos", "Eventos", "Survey",
		"Caderno Teste", "Operação Assistida", "Viagem POE", "Outro",
	}
	for i, title := range categories {
		mem.Seed("tasks", fmt.Sprintf("task-%d", i+1), map[string]any{
			"title":    title,
			"closedAt": now.Add(-time.Duration(i%4) * 24 * time.Hour),
		})
	}
	mem.Seed("tasks", "task-open", map[string]any{
		"title": "Eventos",
	})
}
