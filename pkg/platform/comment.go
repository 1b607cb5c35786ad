package platform

import (
	"context"
	"fmt"
	"strings"
)

// topicMarker renders the stable first-line prefix used to re-identify a
// comment across updates.
func topicMarker(topic string) string {
	return fmt.Sprintf("### %s\n\n", topic)
}

// EnsureComment converges one comment on an issue or pull request. The
// comment is addressed by topic marker when a topic is given, otherwise by
// exact body equality. It reports whether the comment is now in the desired
// state; the operation's own failures are logged and reported as false
// rather than raised.
func (s *Session) EnsureComment(ctx context.Context, number int, topic, content string) bool {
	content = MassageMarkdown(content)

	var body string
	if topic != "" {
		body = topicMarker(topic) + content
	} else {
		body = content
	}

	comments, err := s.client.ListComments(ctx, s.repo, number)
	if err != nil {
		s.logger.Warn("could not list comments", "number", number, "error", err)
		return false
	}
	existing := findComment(comments, topic, body)

	switch {
	case existing == nil:
		if _, err := s.client.CreateComment(ctx, s.repo, number, body); err != nil {
			s.logger.Warn("could not create comment", "number", number, "error", err)
			return false
		}
		s.logger.Info("comment created", "number", number, "topic", topic)
	case existing.Body != body:
		if _, err := s.client.UpdateComment(ctx, s.repo, existing.ID, body); err != nil {
			s.logger.Warn("could not update comment", "number", number, "error", err)
			return false
		}
		s.logger.Debug("comment updated", "number", number, "topic", topic)
	default:
		s.logger.Debug("comment already up to date", "number", number, "topic", topic)
	}
	return true
}

// CommentSelector addresses a comment either by topic marker or by exact
// content. Exactly one field should be set.
type CommentSelector struct {
	Topic   string
	Content string
}

// EnsureCommentRemoval deletes the comment matching the selector, if any.
// Absence of a match is a silent no-op; deletion failure is logged, not
// escalated.
func (s *Session) EnsureCommentRemoval(ctx context.Context, number int, sel CommentSelector) {
	comments, err := s.client.ListComments(ctx, s.repo, number)
	if err != nil {
		s.logger.Warn("could not list comments", "number", number, "error", err)
		return
	}

	var match *Comment
	if sel.Topic != "" {
		match = findComment(comments, sel.Topic, "")
	} else {
		match = findComment(comments, "", sel.Content)
	}
	if match == nil {
		return
	}

	s.logger.Debug("removing comment", "number", number, "comment", match.ID)
	if err := s.client.DeleteComment(ctx, s.repo, match.ID); err != nil {
		s.logger.Warn("could not delete comment", "comment", match.ID, "error", err)
	}
}

// findComment locates a comment by topic marker when topic is set, otherwise
// by exact body equality.
func findComment(comments []*Comment, topic, body string) *Comment {
	if topic != "" {
		prefix := topicMarker(topic)
		for _, c := range comments {
			if strings.HasPrefix(c.Body, prefix) {
				return c
			}
		}
		return nil
	}
	for _, c := range comments {
		if c.Body == body {
			return c
		}
	}
	return nil
}
