package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"support-chat-backend/internal/database"
	"support-chat-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	messagesByChatIndex = "byChat"
	staffByEmailIndex   = "byEmail"
)

// existsCondition stops UpdateItem from upserting a missing record.
var existsCondition = &database.Condition{
	Expression: "attribute_exists(#id)",
	Names:      map[string]string{"#id": "id"},
}

type DynamoRepository struct {
	db    *database.Database
	clock *Clock
}

func NewDynamoRepository(db *database.Database, now func() time.Time) *DynamoRepository {
	return &DynamoRepository{db: db, clock: NewClock(now)}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": database.AttrString(id)}
}

func (r *DynamoRepository) CreateChat(ctx context.Context, chat model.ChatItem) (model.ChatItem, error) {
	chat.ID = uuid.NewString()
	chat.Created = r.clock.Next()
	chat.Updated = chat.Created
	if err := r.db.Client.PutItem(ctx, r.db.Tables.Chats, chat, nil); err != nil {
		return model.ChatItem{}, err
	}
	return chat, nil
}

func (r *DynamoRepository) GetChat(ctx context.Context, id string) (model.ChatItem, error) {
	var chat model.ChatItem
	if err := r.db.Client.GetItem(ctx, r.db.Tables.Chats, idKey(id), &chat); err != nil {
		return model.ChatItem{}, translate(err)
	}
	return chat, nil
}

func (r *DynamoRepository) ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	var (
		filterExpr string
		values     map[string]types.AttributeValue
		names      map[string]string
	)
	if filter.NeedsHuman != nil {
		filterExpr = "#needsHuman = :needsHuman"
		values = map[string]types.AttributeValue{":needsHuman": database.AttrBool(*filter.NeedsHuman)}
		names = map[string]string{"#needsHuman": "needsHuman"}
	}

	items, err := r.db.Client.ScanAllWithFilter(ctx, r.db.Tables.Chats, filterExpr, values, names)
	if err != nil {
		return nil, err
	}
	chats, err := database.UnmarshalAll[model.ChatItem](items)
	if err != nil {
		return nil, err
	}
	sortChatsDesc(chats)
	return chats, nil
}

func (r *DynamoRepository) AssignStaff(ctx context.Context, chatID, staffName string, onlyIfUnclaimed bool) (model.ChatItem, error) {
	cond := existsCondition
	if onlyIfUnclaimed {
		cond = &database.Condition{
			Expression: "attribute_exists(#id) AND (attribute_not_exists(#assignedStaff) OR #assignedStaff IN (:unassigned, :ai, :staffName))",
			Values: map[string]types.AttributeValue{
				":unassigned": database.AttrString(""),
				":ai":         database.AttrString(model.AuthorAI),
			},
			Names: map[string]string{"#id": "id"},
		}
	}

	var chat model.ChatItem
	err := r.db.Client.UpdateItem(
		ctx,
		r.db.Tables.Chats,
		idKey(chatID),
		"SET #assignedStaff = :staffName, #updated = :updated",
		map[string]types.AttributeValue{
			":staffName": database.AttrString(staffName),
			":updated":   database.AttrString(r.clock.Next()),
		},
		map[string]string{
			"#assignedStaff": "assignedStaff",
			"#updated":       "updated",
		},
		cond,
		&chat,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		// Tell a missing chat apart from a claimed one.
		if _, getErr := r.GetChat(ctx, chatID); getErr != nil {
			return model.ChatItem{}, getErr
		}
		return model.ChatItem{}, ErrConditionFailed
	}
	if err != nil {
		return model.ChatItem{}, err
	}
	return chat, nil
}

func (r *DynamoRepository) MarkNeedsHuman(ctx context.Context, chatID string) (model.ChatItem, error) {
	var chat model.ChatItem
	err := r.db.Client.UpdateItem(
		ctx,
		r.db.Tables.Chats,
		idKey(chatID),
		"SET #needsHuman = :true, #updated = :updated",
		map[string]types.AttributeValue{
			":true":    database.AttrBool(true),
			":updated": database.AttrString(r.clock.Next()),
		},
		map[string]string{
			"#needsHuman": "needsHuman",
			"#updated":    "updated",
		},
		existsCondition,
		&chat,
	)
	if err != nil {
		return model.ChatItem{}, translate(err)
	}
	return chat, nil
}

func (r *DynamoRepository) CreateMessage(ctx context.Context, message model.MessageItem) (model.MessageItem, error) {
	message.ID = uuid.NewString()
	message.Created = r.clock.Next()
	if err := r.db.Client.PutItem(ctx, r.db.Tables.Messages, message, nil); err != nil {
		return model.MessageItem{}, err
	}
	return message, nil
}

func (r *DynamoRepository) GetMessage(ctx context.Context, id string) (model.MessageItem, error) {
	var message model.MessageItem
	if err := r.db.Client.GetItem(ctx, r.db.Tables.Messages, idKey(id), &message); err != nil {
		return model.MessageItem{}, translate(err)
	}
	return message, nil
}

func (r *DynamoRepository) ListMessages(ctx context.Context, chatID string) ([]model.MessageItem, error) {
	items, err := r.db.Client.QueryAll(
		ctx,
		r.db.Tables.Messages,
		aws.String(messagesByChatIndex),
		"#chatParentID = :chatID",
		map[string]types.AttributeValue{":chatID": database.AttrString(chatID)},
		map[string]string{"#chatParentID": "chatParentID"},
		true,
	)
	if err != nil && database.IsIndexMissing(err) {
		items, err = r.db.Client.ScanAllWithFilter(
			ctx,
			r.db.Tables.Messages,
			"#chatParentID = :chatID",
			map[string]types.AttributeValue{":chatID": database.AttrString(chatID)},
			map[string]string{"#chatParentID": "chatParentID"},
		)
	}
	if err != nil {
		return nil, err
	}

	messages, err := database.UnmarshalAll[model.MessageItem](items)
	if err != nil {
		return nil, err
	}
	// The index only orders by created; re-sort for the id tie-break and
	// for the scan fallback.
	sortMessagesAsc(messages)
	return messages, nil
}

func (r *DynamoRepository) MarkMessageRead(ctx context.Context, id string) (model.MessageItem, error) {
	var message model.MessageItem
	err := r.db.Client.UpdateItem(
		ctx,
		r.db.Tables.Messages,
		idKey(id),
		"SET #read = :true",
		map[string]types.AttributeValue{":true": database.AttrBool(true)},
		map[string]string{"#read": "read"},
		existsCondition,
		&message,
	)
	if err != nil {
		return model.MessageItem{}, translate(err)
	}
	return message, nil
}

func (r *DynamoRepository) CreateCustomer(ctx context.Context, customer model.CustomerItem) (model.CustomerItem, error) {
	customer.ID = uuid.NewString()
	customer.Created = r.clock.Next()
	if err := r.db.Client.PutItem(ctx, r.db.Tables.Customers, customer, nil); err != nil {
		return model.CustomerItem{}, err
	}
	return customer, nil
}

func (r *DynamoRepository) GetCustomer(ctx context.Context, id string) (model.CustomerItem, error) {
	var customer model.CustomerItem
	if err := r.db.Client.GetItem(ctx, r.db.Tables.Customers, idKey(id), &customer); err != nil {
		return model.CustomerItem{}, translate(err)
	}
	return customer, nil
}

func (r *DynamoRepository) GetStaffUserByEmail(ctx context.Context, email string) (model.StaffUserItem, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	values := map[string]types.AttributeValue{":email": database.AttrString(email)}
	names := map[string]string{"#email": "email"}

	items, err := r.db.Client.QueryAll(
		ctx,
		r.db.Tables.StaffUsers,
		aws.String(staffByEmailIndex),
		"#email = :email",
		values,
		names,
		true,
	)
	if err != nil && database.IsIndexMissing(err) {
		items, err = r.db.Client.ScanAllWithFilter(ctx, r.db.Tables.StaffUsers, "#email = :email", values, names)
	}
	if err != nil {
		return model.StaffUserItem{}, err
	}

	users, err := database.UnmarshalAll[model.StaffUserItem](items)
	if err != nil {
		return model.StaffUserItem{}, err
	}
	if len(users) == 0 {
		return model.StaffUserItem{}, ErrNotFound
	}
	return users[0], nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, database.ErrItemNotFound), errors.Is(err, database.ErrConditionFailed):
		return ErrNotFound
	default:
		return err
	}
}

// EnsureStaffUser stores user unless an account with the same email exists.
func (r *DynamoRepository) EnsureStaffUser(ctx context.Context, user model.StaffUserItem) (model.StaffUserItem, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	existing, err := r.GetStaffUserByEmail(ctx, user.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.StaffUserItem{}, err
	}

	user.ID = uuid.NewString()
	if err := r.db.Client.PutItem(ctx, r.db.Tables.StaffUsers, user, nil); err != nil {
		return model.StaffUserItem{}, err
	}
	return user, nil
}
