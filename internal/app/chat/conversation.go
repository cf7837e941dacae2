/*
Package chat contains the conversation state of a workspace.

This file defines the Conversation: the transient message list of the active room, the
send pipeline with its assistant mention trigger, on-demand summaries and invitations.
Messages live only as long as the room stays active.
*/
package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"connect/internal/app/assistant"
	"connect/internal/app/user"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
)

const (
	// DefaultMention is the token that triggers an assistant completion.
	DefaultMention = "@ai"

	// DefaultHistorySize is how many earlier messages accompany a completion request.
	DefaultHistorySize = 5

	// MaxContentBytes is the maximum size of an outgoing message.
	MaxContentBytes = 5000

	// ReplyFallback replaces an empty assistant completion.
	ReplyFallback = "I'm on standby."

	// SummaryFallback replaces an empty assistant summary.
	SummaryFallback = "Summary generated based on recent context."
)

// RoomStore is the part of the Registry a conversation writes through.
type RoomStore interface {
	Room(roomID string) (Room, bool)
	AddParticipant(roomID, userID string)
	UpdateLastMessage(roomID, text string)
}

// Options tune a Conversation. Zero values select the defaults.
type Options struct {
	// Mention is matched case-insensitively anywhere in outgoing text.
	Mention string

	// HistorySize bounds the rolling context; negative disables history.
	HistorySize int

	// History seeds a room when it becomes active.
	History HistorySource

	// OnChange is invoked after every visible state change, outside internal locks.
	OnChange func()

	Now func() time.Time
}

// State is a snapshot of the conversation for rendering.
type State struct {
	RoomID      string    `json:"roomId,omitempty"`
	Messages    []Message `json:"messages"`
	Drafting    bool      `json:"drafting"`
	Summary     string    `json:"summary,omitempty"`
	SummaryOpen bool      `json:"summaryOpen"`
	InviteOpen  bool      `json:"inviteOpen"`
}

// Conversation is the message pipeline of the active room.
type Conversation struct {
	self      user.User
	users     []user.User
	rooms     RoomStore
	assistant assistant.Provider
	opts      Options

	mu sync.Mutex

	// roomID is the room whose messages are held, "" when none.
	roomID string

	// epoch increments on every room switch; late assistant results from an older epoch are dropped.
	epoch uint64

	// messages is replaced wholesale on every append.
	messages []Message

	// inFlight counts assistant requests that have not returned yet.
	inFlight int

	summary     string
	summaryOpen bool
	inviteOpen  bool

	// pending tracks background assistant requests.
	pending sync.WaitGroup

	logger zerolog.Logger
}

// NewConversation creates a conversation for self. users is the full set of known users,
// self included, and is used for invite candidates and sender names.
func NewConversation(self user.User, users []user.User, rooms RoomStore, provider assistant.Provider, opts Options) *Conversation {
	if opts.Mention == "" {
		opts.Mention = DefaultMention
	}
	opts.Mention = strings.ToLower(opts.Mention)
	if opts.HistorySize == 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.History == nil {
		opts.History = SeededHistory{Now: opts.Now}
	}

	return &Conversation{
		self:      self,
		users:     slices.Clone(users),
		rooms:     rooms,
		assistant: provider,
		opts:      opts,
		logger:    logx.Component("Conversation").With().Str("user_id", self.ID).Logger(),
	}
}

func (c *Conversation) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}

// RoomID returns the id of the room currently held, "" when none.
func (c *Conversation) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.roomID
}

// Sync follows the registry's active room. A change of room identity resets the
// conversation and re-seeds it; an unchanged room is left alone.
func (c *Conversation) Sync(ctx context.Context, active Room, ok bool) {
	current := c.RoomID()

	switch {
	case ok && active.ID != current:
		c.Open(ctx, active)
	case !ok && current != "":
		c.Close()
	}
}

// Open switches to room: messages, the summary panel and the invite panel are cleared, then
// the room's history is loaded.
func (c *Conversation) Open(ctx context.Context, room Room) {
	c.mu.Lock()
	c.resetLocked(room.ID)
	epoch := c.epoch
	c.mu.Unlock()
	c.changed()

	seed := c.opts.History.Load(ctx, room, c.self, c.users)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.messages = slices.Clone(seed)
	c.mu.Unlock()
	c.changed()
}

// Close drops the held room, leaving no conversation selected.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.resetLocked("")
	c.mu.Unlock()
	c.changed()
}

func (c *Conversation) resetLocked(roomID string) {
	c.roomID = roomID
	c.epoch++
	c.messages = nil
	c.summary = ""
	c.summaryOpen = false
	c.inviteOpen = false
}

// appendLocked appends m if the conversation is still in epoch.
func (c *Conversation) appendLocked(epoch uint64, m Message) bool {
	if c.epoch != epoch {
		return false
	}
	next := make([]Message, 0, len(c.messages)+1)
	next = append(next, c.messages...)
	c.messages = append(next, m)
	return true
}

// MentionsAssistant reports whether text contains the mention token.
func (c *Conversation) MentionsAssistant(text string) bool {
	return strings.Contains(strings.ToLower(text), c.opts.Mention)
}

// SendMessage appends text as a message from self and records it as the room summary.
// Blank text is ignored. If the text mentions the assistant, a completion is requested in the
// background with the preceding messages as context; the reply is appended when it arrives,
// unless the room changed in the meantime.
func (c *Conversation) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	c.mu.Lock()
	if c.roomID == "" {
		c.mu.Unlock()
		return errs.NewError(errs.ErrRoomNotFound)
	}

	roomID, epoch := c.roomID, c.epoch
	prior := c.messages
	c.appendLocked(epoch, NewMessage(c.self.ID, c.self.Name, text, c.opts.Now()))

	mentioned := c.MentionsAssistant(text)
	if mentioned {
		c.inFlight++
		c.pending.Add(1)
	}
	c.mu.Unlock()

	c.rooms.UpdateLastMessage(roomID, text)
	c.changed()

	if mentioned {
		history := c.rollingContext(prior)
		go c.requestReply(ctx, epoch, text, history)
	}

	return nil
}

// rollingContext maps the last HistorySize messages to role-tagged turns.
func (c *Conversation) rollingContext(prior []Message) []assistant.Turn {
	if c.opts.HistorySize < 0 {
		return nil
	}

	start := max(len(prior)-c.opts.HistorySize, 0)
	turns := make([]assistant.Turn, 0, len(prior)-start)
	for _, m := range prior[start:] {
		role := assistant.RoleOther
		if m.SenderID == c.self.ID {
			role = assistant.RoleSelf
		}
		turns = append(turns, assistant.Turn{Role: role, Text: m.Text})
	}
	return turns
}

func (c *Conversation) requestReply(ctx context.Context, epoch uint64, prompt string, history []assistant.Turn) {
	defer c.pending.Done()

	reply := c.callAssistant("complete", func() string {
		return c.assistant.Complete(ctx, prompt, history)
	})
	if reply == "" {
		reply = ReplyFallback
	}

	c.mu.Lock()
	c.inFlight--
	if !c.appendLocked(epoch, NewAssistantMessage(reply, c.opts.Now())) {
		c.logger.Debug().Msg("Assistant reply dropped after room switch.")
	}
	c.mu.Unlock()
	c.changed()
}

// callAssistant runs call and turns a panic into an empty result.
func (c *Conversation) callAssistant(op string, call func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Err(fmt.Errorf("%v", r)).Str("op", op).Msg("Assistant provider panicked.")
			out = ""
		}
	}()
	return call()
}

// Summarize asks the assistant for a summary of every visible message and opens the summary
// panel with the result. Sending stays possible while the request is in flight.
func (c *Conversation) Summarize(ctx context.Context) {
	c.mu.Lock()
	if c.roomID == "" {
		c.mu.Unlock()
		return
	}

	epoch := c.epoch
	lines := make([]string, 0, len(c.messages))
	for _, m := range c.messages {
		lines = append(lines, m.SenderName+": "+m.Text)
	}
	c.inFlight++
	c.pending.Add(1)
	c.mu.Unlock()
	c.changed()

	go func() {
		defer c.pending.Done()

		summary := c.callAssistant("summarize", func() string {
			return c.assistant.Summarize(ctx, lines)
		})
		if summary == "" {
			summary = SummaryFallback
		}

		c.mu.Lock()
		c.inFlight--
		if c.epoch == epoch {
			c.summary = summary
			c.summaryOpen = true
		}
		c.mu.Unlock()
		c.changed()
	}()
}

// CloseSummary hides the summary panel.
func (c *Conversation) CloseSummary() {
	c.mu.Lock()
	c.summaryOpen = false
	c.mu.Unlock()
	c.changed()
}

// ToggleInvite opens or closes the invite picker.
func (c *Conversation) ToggleInvite() {
	c.mu.Lock()
	c.inviteOpen = !c.inviteOpen
	c.mu.Unlock()
	c.changed()
}

// CloseInvite hides the invite picker.
func (c *Conversation) CloseInvite() {
	c.mu.Lock()
	c.inviteOpen = false
	c.mu.Unlock()
	c.changed()
}

// InviteCandidates lists known users who are not yet participants of the held room.
func (c *Conversation) InviteCandidates() []user.User {
	roomID := c.RoomID()
	room, ok := c.rooms.Room(roomID)
	if !ok {
		return []user.User{}
	}
	return InviteCandidates(room, c.users)
}

func (c *Conversation) findUser(id string) (user.User, bool) {
	idx := slices.IndexFunc(c.users, func(u user.User) bool { return u.ID == id })
	if idx < 0 {
		return user.User{}, false
	}
	return c.users[idx], true
}

// Invite adds userID to the held room, closes the invite picker and posts a notice.
// Unknown users and existing participants are ignored.
func (c *Conversation) Invite(userID string) {
	roomID := c.RoomID()
	room, ok := c.rooms.Room(roomID)
	if !ok || room.HasParticipant(userID) {
		return
	}

	invitee, ok := c.findUser(userID)
	if !ok {
		return
	}

	c.rooms.AddParticipant(roomID, userID)

	c.mu.Lock()
	c.inviteOpen = false
	if c.roomID == roomID {
		notice := NewSystemMessage(fmt.Sprintf("%s added %s to the conversation.", c.self.Name, invitee.Name), c.opts.Now())
		c.appendLocked(c.epoch, notice)
	}
	c.mu.Unlock()
	c.changed()
}

// Drafting reports whether an assistant request is in flight.
func (c *Conversation) Drafting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inFlight > 0
}

// Messages returns a copy of the current messages.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.messages)
}

// State returns a snapshot of the whole conversation.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := slices.Clone(c.messages)
	if msgs == nil {
		msgs = []Message{}
	}

	return State{
		RoomID:      c.roomID,
		Messages:    msgs,
		Drafting:    c.inFlight > 0,
		Summary:     c.summary,
		SummaryOpen: c.summaryOpen,
		InviteOpen:  c.inviteOpen,
	}
}

// Wait blocks until every background assistant request has finished.
func (c *Conversation) Wait() {
	c.pending.Wait()
}
