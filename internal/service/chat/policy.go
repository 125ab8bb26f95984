package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"support-chat-backend/internal/completion"
	"support-chat-backend/internal/model"
)

// respond produces the single AI follow-up for a customer message. The
// chat is re-read first so that a staff takeover or an earlier escalation
// wins over a reply that was queued before it.
func (s *Service) respond(ctx context.Context, trigger model.MessageItem) error {
	chat, err := s.repo.GetChat(ctx, trigger.ChatParentID)
	if err != nil {
		return fmt.Errorf("reload chat: %w", err)
	}
	if !chat.AIHandling() {
		return nil
	}

	if s.detect(trigger.Message) {
		if _, err := s.repo.MarkNeedsHuman(ctx, chat.ID); err != nil {
			return fmt.Errorf("mark needs human: %w", err)
		}
		escalations.Inc()
		log.Printf("[chat] chat %s escalated to a human", chat.ID)
		_, err := s.postAI(ctx, chat.ID, EscalationNotice, "escalation")
		return err
	}

	reply, err := s.complete(ctx, trigger)
	if err != nil {
		completionFailures.Inc()
		log.Printf("[chat] completion for chat %s failed: %v", chat.ID, err)
		_, err := s.postAI(ctx, chat.ID, ApologyMessage, "apology")
		return err
	}
	_, err = s.postAI(ctx, chat.ID, reply, "reply")
	return err
}

func (s *Service) complete(ctx context.Context, trigger model.MessageItem) (string, error) {
	if s.completer == nil {
		return "", &completion.Error{Message: "no completer configured"}
	}

	messages, err := s.repo.ListMessages(ctx, trigger.ChatParentID)
	if err != nil {
		return "", &completion.Error{Message: "load history", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()

	reply, err := s.completer.Complete(ctx, buildHistory(messages, trigger))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &completion.Error{Message: "empty reply"}
	}
	return reply, nil
}

// buildHistory maps the log up to and including trigger onto completion
// turns. The welcome message is left out and trigger is always the final
// user turn, even if the store has not caught up with it yet.
func buildHistory(messages []model.MessageItem, trigger model.MessageItem) []completion.Turn {
	turns := make([]completion.Turn, 0, len(messages)+1)
	for _, m := range messages {
		if m.ID == trigger.ID || m.Created > trigger.Created {
			break
		}
		if m.Author == model.AuthorAI && strings.HasPrefix(m.Message, welcomePrefix) {
			continue
		}
		turns = append(turns, completion.Turn{
			Role:    model.ParseAuthor(m.Author).CompletionRole(),
			Content: m.Message,
		})
	}
	return append(turns, completion.Turn{Role: completion.RoleUser, Content: trigger.Message})
}
