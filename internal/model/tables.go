package model

// Collection names carried on change events and websocket envelopes.
const (
	CollectionChats      = "chats"
	CollectionMessages   = "messages"
	CollectionCustomers  = "customers"
	CollectionStaffUsers = "staffUsers"
)

// TimeLayout is fixed width so that timestamps sort lexicographically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"
