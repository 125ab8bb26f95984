package dto

type JoinRequest struct {
	Username string `json:"username"`
}

type CreateChatRequest struct {
	Author string `json:"author"`
}

type AssignStaffRequest struct {
	StaffName string `json:"staffName"`
}

type CreateMessageRequest struct {
	ChatParentID string `json:"chatParentID"`
	Author       string `json:"author"`
	Message      string `json:"message"`
}
