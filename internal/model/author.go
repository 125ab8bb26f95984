package model

import "strings"

const (
	AuthorAI        = "ai"
	AuthorStaff     = "staff"
	AnonymousAuthor = "Anonymous"
)

type AuthorKind int

const (
	AuthorKindCustomer AuthorKind = iota
	AuthorKindStaff
	AuthorKindAI
)

// Author is the closed set of message authors. On the wire it is a plain
// string: "ai", "staff", or the customer's display name.
type Author struct {
	Kind AuthorKind
	Name string
}

func Customer(name string) Author { return Author{Kind: AuthorKindCustomer, Name: name} }

var (
	Staff = Author{Kind: AuthorKindStaff}
	AI    = Author{Kind: AuthorKindAI}
)

func ParseAuthor(raw string) Author {
	switch strings.TrimSpace(raw) {
	case AuthorAI:
		return AI
	case AuthorStaff:
		return Staff
	default:
		return Customer(strings.TrimSpace(raw))
	}
}

func (a Author) String() string {
	switch a.Kind {
	case AuthorKindAI:
		return AuthorAI
	case AuthorKindStaff:
		return AuthorStaff
	default:
		return a.Name
	}
}

func (a Author) IsCustomer() bool { return a.Kind == AuthorKindCustomer }

// CompletionRole maps the author onto a chat-completion role.
func (a Author) CompletionRole() string {
	if a.IsCustomer() {
		return "user"
	}
	return "assistant"
}
