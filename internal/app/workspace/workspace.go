/*
Package workspace composes the state of one signed-in browser connection.

A Workspace owns the session controller, the room registry and the active conversation of a
single WebSocket connection. Commands from the browser mutate that state and every change is
pushed back as a full snapshot. Nothing survives the connection.
*/
package workspace

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"connect/internal/app/assistant"
	"connect/internal/app/chat"
	"connect/internal/app/directory"
	"connect/internal/app/identity"
	"connect/internal/app/session"
	"connect/internal/app/user"
	"connect/internal/configs"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/randx"
	"connect/internal/pkg/req"
)

// Sink receives the events of a workspace. Implementations must tolerate calls after Close.
type Sink interface {
	Send(evt Event) error
	Close()
}

// Deps are the process-wide services shared by every workspace.
type Deps struct {
	Identity  *identity.Service
	Directory directory.Provider
	Assistant assistant.Provider

	// Avatars resolves storage keys into URLs; nil leaves keys unresolved.
	Avatars directory.AvatarResolver

	// History seeds conversations; nil selects chat.SeededHistory.
	History chat.HistorySource

	AllowedDomain string
	LogoutPolicy  configs.LogoutPolicy
	Mention       string

	// HistorySize is the assistant context size; 0 sends no history.
	HistorySize int
}

// Workspace is the per-connection application state.
type Workspace struct {
	deps Deps
	sink Sink

	client     *identity.Client
	controller *session.Controller

	// Set once by build, read-only afterwards.
	self       user.User
	colleagues []user.User
	users      []user.User
	registry   *chat.Registry
	conv       *chat.Conversation

	mu    sync.Mutex
	ready bool
	ended bool

	// lost records a sign-out observed while the workspace was still being built.
	lost    bool
	pending map[string]string

	// publishMu orders snapshot assembly and delivery.
	publishMu sync.Mutex

	// newConfirmationID generates delete confirmation ids.
	newConfirmationID func() string

	logger zerolog.Logger
}

// New creates a workspace that reports to sink.
func New(deps Deps, sink Sink) *Workspace {
	return &Workspace{
		deps:              deps,
		sink:              sink,
		pending:           make(map[string]string),
		newConfirmationID: randx.ConfirmationID,
		logger:            logx.Component("Workspace"),
	}
}

// Start resolves token into a session and builds the workspace for it. It returns
// ErrUnauthorized when the token does not belong to a live session and ErrSessionEnded
// when the session was signed out before the workspace became ready.
func (w *Workspace) Start(ctx context.Context, token string) *errs.CustomError {
	w.client = w.deps.Identity.NewClient(ctx, token)
	w.controller = session.NewController(w.client, session.Options{
		AllowedDomain: w.deps.AllowedDomain,
		LogoutPolicy:  w.deps.LogoutPolicy,
		OnChange:      w.onAuthChange,
	})

	w.controller.Start(ctx)

	self, ok := w.controller.User()
	if !ok {
		w.Close()
		return errs.NewError(errs.ErrUnauthorized)
	}

	w.build(ctx, self)

	lost := w.controller.State().Phase != session.PhaseAuthenticated
	w.mu.Lock()
	lost = lost || w.lost || w.ended
	if !lost {
		w.ready = true
	}
	w.mu.Unlock()

	if lost {
		w.logger.Info().Msg("Session ended while the workspace was being built.")
		w.Close()
		return errs.NewError(errs.ErrSessionEnded)
	}

	w.logger.Info().Int("colleagues", len(w.colleagues)).Msg("Workspace ready.")
	w.publish()
	return nil
}

// build queries the directory once and prepares the chat state for self. The workspace
// becomes ready only if the session survived the build.
func (w *Workspace) build(ctx context.Context, self user.User) {
	if !directory.IsURL(self.Avatar) && w.deps.Avatars != nil {
		if url, err := w.deps.Avatars.ResolveAvatar(ctx, self.Avatar); err == nil {
			self.Avatar = url
		} else {
			self.Avatar = user.InitialsAvatar(self.Name)
		}
	}

	profiles, err := w.deps.Directory.ListProfiles(ctx, self.ID)
	if err != nil {
		w.logger.Error().Err(err).Str("user_id", self.ID).Msg("Directory query failed, continuing without colleagues.")
		profiles = nil
	}
	colleagues := directory.Users(ctx, profiles, w.deps.Avatars)

	historySize := w.deps.HistorySize
	if historySize == 0 {
		historySize = -1
	}

	w.self = self
	w.colleagues = colleagues
	w.users = append([]user.User{self}, colleagues...)
	w.registry = chat.NewRegistry(self)
	w.conv = chat.NewConversation(self, w.users, w.registry, w.deps.Assistant, chat.Options{
		Mention:     w.deps.Mention,
		HistorySize: historySize,
		History:     w.deps.History,
		OnChange:    w.publish,
	})
	w.logger = w.logger.With().Str("user_id", self.ID).Logger()
}

func (w *Workspace) isReady() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.ready && !w.ended
}

func (w *Workspace) onAuthChange(state session.AuthState) {
	if state.Phase != session.PhaseAnonymous {
		return
	}

	w.mu.Lock()
	if !w.ready {
		w.lost = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.end(errs.NewError(errs.ErrSessionEnded).Message)
}

// end notifies the browser once and closes the connection.
func (w *Workspace) end(message string) {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return
	}
	w.ended = true
	w.mu.Unlock()

	w.logger.Info().Msg("Session ended, closing workspace.")
	_ = w.sink.Send(Event{Type: EvtSessionEnded, Payload: SessionEndedPayload{Message: message}})
	w.sink.Close()
}

// Handle applies one command. Failures are reported to the browser as ERROR events.
func (w *Workspace) Handle(ctx context.Context, cmd Command) {
	if !w.isReady() {
		return
	}

	if cerr := w.dispatch(ctx, cmd); cerr != nil {
		_ = w.sink.Send(Event{Type: EvtError, Payload: ErrorPayload{Code: cerr.Code, Message: cerr.Message}})
	}

	if w.isReady() {
		w.publish()
	}
}

func (w *Workspace) dispatch(ctx context.Context, cmd Command) *errs.CustomError {
	switch cmd.Type {
	case CmdSelectColleague:
		var p UserPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		w.selectColleague(ctx, p.UserID)

	case CmdSelectRoom:
		var p RoomPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		w.registry.SetActive(p.RoomID)
		w.syncConversation(ctx)

	case CmdRequestDelete:
		var p RoomPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		w.requestDelete(p.RoomID)

	case CmdConfirmDelete:
		var p ConfirmationPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		return w.confirmDelete(ctx, p.ConfirmationID)

	case CmdCancelDelete:
		var p ConfirmationPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		w.mu.Lock()
		delete(w.pending, p.ConfirmationID)
		w.mu.Unlock()

	case CmdSendMessage:
		var p TextPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		if err := w.conv.SendMessage(ctx, p.Text); err != nil {
			return errs.From(err)
		}

	case CmdSummarize:
		w.conv.Summarize(ctx)

	case CmdCloseSummary:
		w.conv.CloseSummary()

	case CmdToggleInvite:
		w.conv.ToggleInvite()

	case CmdInvite:
		var p UserPayload
		if cerr := req.BindPayload(cmd.Payload, &p); cerr != nil {
			return cerr
		}
		w.conv.Invite(p.UserID)

	case CmdLogout:
		if err := w.controller.Logout(ctx); err != nil {
			return errs.From(err)
		}

	default:
		return errs.NewError(errs.ErrUnsupportedCommand, string(cmd.Type))
	}

	return nil
}

func (w *Workspace) selectColleague(ctx context.Context, userID string) {
	idx := slices.IndexFunc(w.colleagues, func(u user.User) bool { return u.ID == userID })
	if idx < 0 {
		w.logger.Debug().Str("colleague_id", userID).Msg("Unknown colleague selected.")
		return
	}

	w.registry.SelectColleague(w.colleagues[idx])
	w.syncConversation(ctx)
}

func (w *Workspace) syncConversation(ctx context.Context) {
	active, ok := w.registry.ActiveRoom()
	w.conv.Sync(ctx, active, ok)
}

func (w *Workspace) requestDelete(roomID string) {
	room, ok := w.registry.Room(roomID)
	if !ok {
		return
	}

	id := w.newConfirmationID()
	w.mu.Lock()
	w.pending[id] = roomID
	w.mu.Unlock()

	_ = w.sink.Send(Event{Type: EvtDeleteConfirmation, Payload: DeleteConfirmationPayload{
		ConfirmationID: id,
		RoomID:         roomID,
		RoomName:       chat.DisplayName(room, w.self.ID, w.users),
	}})
}

func (w *Workspace) confirmDelete(ctx context.Context, confirmationID string) *errs.CustomError {
	w.mu.Lock()
	roomID, ok := w.pending[confirmationID]
	delete(w.pending, confirmationID)
	w.mu.Unlock()

	if !ok {
		return errs.NewError(errs.ErrConfirmationNotFound)
	}

	w.registry.DeleteRoom(roomID)
	w.syncConversation(ctx)
	return nil
}

// Snapshot assembles the state the browser renders.
func (w *Workspace) Snapshot() Snapshot {
	snap := Snapshot{
		Auth:       w.controller.State(),
		Colleagues: []Colleague{},
		Rooms:      []RoomEntry{},
		GroupRooms: []RoomEntry{},
	}
	if !w.isReady() {
		return snap
	}

	activeID := w.registry.ActiveID()
	entry := func(r chat.Room) RoomEntry {
		return RoomEntry{Room: r, DisplayName: chat.DisplayName(r, w.self.ID, w.users), Active: r.ID == activeID}
	}

	for _, c := range w.colleagues {
		col := Colleague{User: c}
		if r, ok := w.registry.DirectRoomWith(c.ID); ok {
			col.RoomID = r.ID
			col.Active = r.ID == activeID
		}
		if c.Status == user.StatusOnline {
			snap.OnlineCount++
		}
		snap.Colleagues = append(snap.Colleagues, col)
	}

	for _, r := range w.registry.Rooms() {
		snap.Rooms = append(snap.Rooms, entry(r))
	}
	for _, r := range w.registry.GroupRooms() {
		snap.GroupRooms = append(snap.GroupRooms, entry(r))
	}

	room, ok := w.registry.ActiveRoom()
	if !ok || room.ID != w.conv.RoomID() {
		return snap
	}

	state := w.conv.State()
	snap.Active = &ActiveRoom{
		RoomEntry:        entry(room),
		Members:          chat.Participants(room, w.users),
		Messages:         chat.Render(state.Messages, w.self.ID, w.users),
		Drafting:         state.Drafting,
		Summary:          state.Summary,
		SummaryOpen:      state.SummaryOpen,
		InviteOpen:       state.InviteOpen,
		InviteCandidates: w.conv.InviteCandidates(),
	}
	return snap
}

func (w *Workspace) publish() {
	w.publishMu.Lock()
	defer w.publishMu.Unlock()

	if !w.isReady() {
		return
	}
	if err := w.sink.Send(Event{Type: EvtSnapshot, Payload: w.Snapshot()}); err != nil {
		w.logger.Debug().Err(err).Msg("Snapshot not delivered.")
	}
}

// Close releases the session subscription. Assistant requests still in flight finish on
// their own and their results are discarded with the workspace.
func (w *Workspace) Close() {
	w.mu.Lock()
	w.ended = true
	w.mu.Unlock()

	if w.controller != nil {
		w.controller.Close()
	}
	if w.client != nil {
		w.client.Close()
	}
}
