package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"bitwise74/codedrop/internal"
	"bitwise74/codedrop/internal/admins"
	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/gate"
	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/internal/service"
	"bitwise74/codedrop/internal/testdb"
	"bitwise74/codedrop/internal/users"
	"bitwise74/codedrop/pkg/ratelimit"
)

const (
	adminID int64 = 100
	userID  int64 = 200
)

type sent struct {
	chatID   int64
	text     string
	fileID   string
	kind     model.MediaKind
	buttons  [][]Button
	markdown bool
}

type callbackAnswer struct {
	id    string
	text  string
	alert bool
}

type fakeSender struct {
	mu        sync.Mutex
	messages  []sent
	callbacks []callbackAnswer
	inline    [][]InlineResult
	fileErr   error
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, opts ...SendOption) error {
	o := ApplyOptions(opts)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{chatID: chatID, text: text, buttons: o.Buttons, markdown: o.Markdown})
	return nil
}

func (f *fakeSender) SendFile(_ context.Context, chatID int64, fileID string, kind model.MediaKind, caption string, opts ...SendOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fileErr != nil {
		return f.fileErr
	}

	f.messages = append(f.messages, sent{chatID: chatID, text: caption, fileID: fileID, kind: kind, buttons: ApplyOptions(opts).Buttons})
	return nil
}

func (f *fakeSender) SendButtons(ctx context.Context, chatID int64, text string, rows [][]Button) error {
	return f.SendText(ctx, chatID, text, WithButtons(rows...))
}

func (f *fakeSender) EditText(ctx context.Context, chatID int64, _ int, text string, opts ...SendOption) error {
	return f.SendText(ctx, chatID, text, opts...)
}

func (f *fakeSender) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callbackAnswer{id: callbackID, text: text, alert: alert})
	return nil
}

func (f *fakeSender) AnswerInline(_ context.Context, _ string, results []InlineResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inline = append(f.inline, results)
	return nil
}

func (f *fakeSender) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.messages) == 0 {
		return sent{}
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) lastCallback() callbackAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.callbacks) == 0 {
		return callbackAnswer{}
	}
	return f.callbacks[len(f.callbacks)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeSender) has(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.text == text {
			return true
		}
	}
	return false
}

type fakeOracle struct {
	mu     sync.Mutex
	status gate.MembershipStatus
	calls  int
}

func (o *fakeOracle) Membership(context.Context, string, int64) (gate.Membership, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return gate.Membership{Status: o.status}, nil
}

func (o *fakeOracle) set(s gate.MembershipStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = s
}

type broadcastLog struct {
	mu  sync.Mutex
	ids []int64
}

func (b *broadcastLog) send(_ context.Context, chatID int64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, chatID)
	return nil
}

func (b *broadcastLog) recipients() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.ids...)
}

type env struct {
	h         *Handler
	d         *internal.Deps
	sender    *fakeSender
	oracle    *fakeOracle
	broadcast *broadcastLog
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testdb.New(t)
	oracle := &fakeOracle{status: gate.StatusMember}
	log := &broadcastLog{}

	d := &internal.Deps{
		DB:            db,
		Registry:      registry.New(db),
		Users:         users.New(db),
		Admins:        admins.New(db, []int64{adminID}),
		Conversations: conversation.New(100, time.Minute),
		Gate:          gate.New(oracle, gate.Config{Channel: "@files"}),
		Limiter:       ratelimit.New[int64](ratelimit.Config{Requests: 100, Period: time.Minute}),
		Broadcaster:   service.NewBroadcaster(log.send, service.BroadcastConfig{BatchSize: 10}),
	}

	s := &fakeSender{}
	h := New(Config{ChannelLink: "https://t.me/files", CodeLength: 6, Retention: 24 * time.Hour}, d, s)

	return &env{h: h, d: d, sender: s, oracle: oracle, broadcast: log}
}

func (e *env) store(t *testing.T, code string) {
	t.Helper()

	_, err := e.d.Registry.Register(context.Background(), registry.MediaInput{
		Code:     code,
		OwnerID:  adminID,
		FileID:   "file-" + code,
		FileType: model.KindVideo,
		Format:   "mp4",
		Caption:  "a clip",
	})
	if err != nil {
		t.Fatalf("store %s: %v", code, err)
	}
}

func (e *env) send(ev Event) {
	e.h.Handle(context.Background(), ev)
}

func textEvent(from int64, text string) Event {
	return Event{Kind: EventText, SessionID: from, From: User{ID: from, FirstName: "Test"}, MessageID: 1, Text: text}
}

func commandEvent(from int64, name, args string) Event {
	return Event{Kind: EventCommand, SessionID: from, From: User{ID: from}, MessageID: 1, Command: name, Args: args, Text: "/" + name}
}

func fileEvent(from int64) Event {
	return Event{
		Kind:      EventFile,
		SessionID: from,
		From:      User{ID: from},
		MessageID: 1,
		File:      &conversation.File{ID: "tg-file", Kind: "video", Name: "clip.mp4", MimeType: "video/mp4"},
		Caption:   "holiday",
	}
}

func buttonEvent(from int64, action string) Event {
	return Event{Kind: EventButton, SessionID: from, From: User{ID: from}, MessageID: 5, CallbackID: "cb-" + action, ActionID: action}
}
