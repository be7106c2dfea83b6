package service

import (
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"sort"
)

// AttachReplies groups a flat comment list into top-level comments with their
// replies attached, both ordered by creation time. A reply whose parent is not
// a top-level comment in the list is dropped and logged. The input is not
// modified.
func AttachReplies(comments []*data.Comment, log logger.Logger) []*data.Comment {
	sorted := make([]*data.Comment, 0, len(comments))
	for _, c := range comments {
		cp := *c
		cp.Replies = nil
		sorted = append(sorted, &cp)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	topLevel := make([]*data.Comment, 0, len(sorted))
	byID := make(map[string]*data.Comment, len(sorted))
	for _, c := range sorted {
		if c.ParentID == nil {
			topLevel = append(topLevel, c)
			byID[c.ID] = c
		}
	}

	for _, c := range sorted {
		if c.ParentID == nil {
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			log.With(map[string]interface{}{
				"comment_id": c.ID,
				"parent_id":  *c.ParentID,
				"post_id":    c.PostID,
			}).Warn("Dropping orphaned reply: parent is not a top-level comment")
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}

	return topLevel
}
