package model

type ChatItem struct {
	ID            string `dynamodbav:"id" json:"id"`
	Author        string `dynamodbav:"author,omitempty" json:"author,omitempty"`
	AssignedStaff string `dynamodbav:"assignedStaff" json:"assignedStaff"`
	NeedsHuman    bool   `dynamodbav:"needsHuman" json:"needsHuman"`
	Created       string `dynamodbav:"created" json:"created"`
	Updated       string `dynamodbav:"updated" json:"updated"`
}

// DisplayAuthor is the name staff see for the chat.
func (c ChatItem) DisplayAuthor() string {
	if c.Author == "" {
		return AnonymousAuthor
	}
	return c.Author
}

// AIHandling reports whether the AI auto-responder still owns the chat.
func (c ChatItem) AIHandling() bool {
	if c.NeedsHuman {
		return false
	}
	return c.AssignedStaff == "" || c.AssignedStaff == AuthorAI
}

type MessageItem struct {
	ID           string `dynamodbav:"id" json:"id"`
	ChatParentID string `dynamodbav:"chatParentID" json:"chatParentID"`
	Author       string `dynamodbav:"author" json:"author"`
	Message      string `dynamodbav:"message" json:"message"`
	Sent         bool   `dynamodbav:"sent" json:"sent"`
	Read         bool   `dynamodbav:"read" json:"read"`
	Created      string `dynamodbav:"created" json:"created"`
}

type CustomerItem struct {
	ID       string `dynamodbav:"id" json:"id"`
	Username string `dynamodbav:"username" json:"username"`
	Role     string `dynamodbav:"role" json:"role"`
	Created  string `dynamodbav:"created" json:"created"`
}

type StaffUserItem struct {
	ID           string `dynamodbav:"id" json:"id"`
	Email        string `dynamodbav:"email" json:"email"`
	Name         string `dynamodbav:"name" json:"name"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
}

const RoleCustomer = "customer"
