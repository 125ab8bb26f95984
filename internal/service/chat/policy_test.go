package chat

import (
	"testing"

	"support-chat-backend/internal/completion"
	"support-chat-backend/internal/model"
)

func TestBuildHistory(t *testing.T) {
	log := []model.MessageItem{
		{ID: "1", Author: "ai", Message: WelcomeMessage, Created: "a"},
		{ID: "2", Author: "Alice", Message: "hi", Created: "b"},
		{ID: "3", Author: "ai", Message: "hello!", Created: "c"},
		{ID: "4", Author: "staff", Message: "note", Created: "d"},
		{ID: "5", Author: "Alice", Message: "plans?", Created: "e"},
		{ID: "6", Author: "Alice", Message: "later", Created: "f"},
	}

	turns := buildHistory(log, log[4])
	want := []completion.Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello!"},
		{Role: "assistant", Content: "note"},
		{Role: "user", Content: "plans?"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %+v", len(want), turns)
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Fatalf("turn %d: expected %+v, got %+v", i, want[i], turns[i])
		}
	}
}

func TestBuildHistoryAppendsMissingTrigger(t *testing.T) {
	log := []model.MessageItem{
		{ID: "1", Author: "ai", Message: WelcomeMessage, Created: "a"},
	}
	trigger := model.MessageItem{ID: "2", Author: "Alice", Message: "hi", Created: "b"}

	turns := buildHistory(log, trigger)
	if len(turns) != 1 || turns[0].Role != completion.RoleUser || turns[0].Content != "hi" {
		t.Fatalf("unexpected turns %+v", turns)
	}
}
