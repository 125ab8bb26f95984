package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"support-chat-backend/internal/completion"
	"support-chat-backend/internal/escalation"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/queue"
	"support-chat-backend/internal/store"
)

// Service is the only writer of chat and message state. Welcome messages,
// staff announcements and AI replies run as background jobs on its queue
// and never hold up the caller.
type Service struct {
	repo      store.Repository
	completer completion.Completer
	jobs      *queue.RequestQueueManager
	detect    escalation.Detector
	order     *ordering
	pending   sync.WaitGroup

	followUpDelay         time.Duration
	assignOnlyIfUnclaimed bool
	completionTimeout     time.Duration
}

func New(repo store.Repository, completer completion.Completer, jobs *queue.RequestQueueManager, opts Options) *Service {
	if opts.Detector == nil {
		opts.Detector = escalation.WantsHuman
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = 20 * time.Second
	}
	return &Service{
		repo:                  repo,
		completer:             completer,
		jobs:                  jobs,
		detect:                opts.Detector,
		order:                 newOrdering(),
		followUpDelay:         opts.FollowUpDelay,
		assignOnlyIfUnclaimed: opts.AssignOnlyIfUnclaimed,
		completionTimeout:     opts.CompletionTimeout,
	}
}

func (s *Service) CreateChat(ctx context.Context, author string) (model.ChatItem, error) {
	chat, err := s.repo.CreateChat(ctx, model.ChatItem{
		Author:        strings.TrimSpace(author),
		AssignedStaff: model.AuthorAI,
	})
	if err != nil {
		return model.ChatItem{}, newError(ErrorCodeStore, "failed to create chat", err)
	}
	chatsCreated.Inc()

	s.schedule(chat.ID, "welcome", func(ctx context.Context) error {
		_, err := s.postAI(ctx, chat.ID, WelcomeMessage, "welcome")
		return err
	})
	return chat, nil
}

func (s *Service) PostMessage(ctx context.Context, chatParentID, author, text string) (model.MessageItem, error) {
	chatParentID = strings.TrimSpace(chatParentID)
	if chatParentID == "" {
		return model.MessageItem{}, newError(ErrorCodeValidation, "chatParentID is required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return model.MessageItem{}, newError(ErrorCodeValidation, "message is required", nil)
	}

	who := model.ParseAuthor(author)
	if who.IsCustomer() && who.Name == "" {
		who = model.Customer(model.AnonymousAuthor)
	}

	chat, err := s.repo.GetChat(ctx, chatParentID)
	if err != nil {
		return model.MessageItem{}, storeError(err, "chat not found", "failed to load chat")
	}

	message, err := s.repo.CreateMessage(ctx, model.MessageItem{
		ChatParentID: chat.ID,
		Author:       who.String(),
		Message:      text,
		Sent:         true,
	})
	if err != nil {
		return model.MessageItem{}, newError(ErrorCodeStore, "failed to send message", err)
	}

	if who.IsCustomer() && chat.AIHandling() {
		s.schedule(chat.ID, "respond", func(ctx context.Context) error {
			return s.respond(ctx, message)
		})
	}
	return message, nil
}

// MarkRead flags a message as read. It never fails the caller: an unknown
// id or a store error is logged and reported as false.
func (s *Service) MarkRead(ctx context.Context, messageID string) (model.MessageItem, bool) {
	message, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		log.Printf("[chat] mark read %s: %v", messageID, err)
		return model.MessageItem{}, false
	}
	if message.Read {
		return message, true
	}

	message, err = s.repo.MarkMessageRead(ctx, messageID)
	if err != nil {
		log.Printf("[chat] mark read %s: %v", messageID, err)
		return model.MessageItem{}, false
	}
	return message, true
}

func (s *Service) AssignStaff(ctx context.Context, chatID, staffName string) (model.ChatItem, error) {
	chatID = strings.TrimSpace(chatID)
	staffName = strings.TrimSpace(staffName)
	if chatID == "" || staffName == "" {
		return model.ChatItem{}, newError(ErrorCodeValidation, "chat id and staffName are required", nil)
	}
	if staffName == model.AuthorAI || staffName == model.AuthorStaff {
		return model.ChatItem{}, newError(ErrorCodeValidation, "staffName is reserved", nil)
	}

	chat, err := s.repo.AssignStaff(ctx, chatID, staffName, s.assignOnlyIfUnclaimed)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return model.ChatItem{}, newError(ErrorCodeConflict, "chat is already assigned to another staff member", err)
		}
		return model.ChatItem{}, storeError(err, "chat not found", "failed to assign chat")
	}

	s.schedule(chat.ID, "announce", func(ctx context.Context) error {
		_, err := s.postAI(ctx, chat.ID, fmt.Sprintf(announcementFormat, staffName), "announcement")
		return err
	})
	return chat, nil
}

func (s *Service) ListEscalatedChats(ctx context.Context) ([]model.ChatItem, error) {
	needsHuman := true
	chats, err := s.repo.ListChats(ctx, store.ChatFilter{NeedsHuman: &needsHuman})
	if err != nil {
		return nil, newError(ErrorCodeStore, "failed to list escalated chats", err)
	}
	return chats, nil
}

func (s *Service) ListChats(ctx context.Context) ([]model.ChatItem, error) {
	chats, err := s.repo.ListChats(ctx, store.ChatFilter{})
	if err != nil {
		return nil, newError(ErrorCodeStore, "failed to list chats", err)
	}
	return chats, nil
}

func (s *Service) GetChat(ctx context.Context, id string) (model.ChatItem, error) {
	chat, err := s.repo.GetChat(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.ChatItem{}, storeError(err, "chat not found", "failed to load chat")
	}
	return chat, nil
}

func (s *Service) GetMessages(ctx context.Context, chatID string) ([]model.MessageItem, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, newError(ErrorCodeValidation, "chat id is required", nil)
	}
	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, newError(ErrorCodeStore, "failed to list messages", err)
	}
	return messages, nil
}

func (s *Service) JoinCustomer(ctx context.Context, username string) (model.CustomerItem, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.CustomerItem{}, newError(ErrorCodeValidation, "username is required", nil)
	}
	if username == model.AuthorAI || username == model.AuthorStaff {
		return model.CustomerItem{}, newError(ErrorCodeValidation, "username is reserved", nil)
	}

	customer, err := s.repo.CreateCustomer(ctx, model.CustomerItem{
		Username: username,
		Role:     model.RoleCustomer,
	})
	if err != nil {
		return model.CustomerItem{}, newError(ErrorCodeStore, "failed to create user", err)
	}
	return customer, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (model.CustomerItem, error) {
	customer, err := s.repo.GetCustomer(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.CustomerItem{}, storeError(err, "user not found", "failed to load user")
	}
	return customer, nil
}

// Wait blocks until every scheduled follow-up has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// schedule runs fn after every earlier job for the same chat. The waiting
// happens off the worker pool so a queued job never blocks a worker.
func (s *Service) schedule(chatID, name string, fn func(ctx context.Context) error) {
	prev, release := s.order.next(chatID)
	s.pending.Add(1)

	go func() {
		defer s.pending.Done()
		defer release()

		if prev != nil {
			<-prev
		}
		if s.followUpDelay > 0 {
			time.Sleep(s.followUpDelay)
		}

		errc := make(chan error, 1)
		s.jobs.EnqueueJob(queue.Job{
			Fn:   func() error { return fn(context.Background()) },
			Errc: errc,
		})
		if err := <-errc; err != nil {
			followUpFailures.Inc()
			log.Printf("[chat] %s for chat %s failed: %v", name, chatID, err)
		}
	}()
}

func (s *Service) postAI(ctx context.Context, chatID, text, kind string) (model.MessageItem, error) {
	message, err := s.repo.CreateMessage(ctx, model.MessageItem{
		ChatParentID: chatID,
		Author:       model.AuthorAI,
		Message:      text,
		Sent:         true,
	})
	if err != nil {
		return model.MessageItem{}, fmt.Errorf("post %s: %w", kind, err)
	}
	aiReplies.WithLabelValues(kind).Inc()
	return message, nil
}

func storeError(err error, notFound, failed string) *Error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrorCodeNotFound, notFound, err)
	}
	return newError(ErrorCodeStore, failed, err)
}
