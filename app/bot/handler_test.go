package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bitwise74/codedrop/internal/gate"
	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveDeliversAndCountsView(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(textEvent(userID, " ab12cd "))

	got := e.sender.last()
	assert.Equal(t, "file-AB12CD", got.fileID)
	assert.Equal(t, model.KindVideo, got.kind)
	assert.Contains(t, got.text, "a clip")
	assert.Contains(t, got.text, "👁 1")
	assert.Empty(t, got.buttons, "regular users get no delete button")

	m, err := e.d.Registry.Lookup(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Views)
}

func TestRetrieveByAdminOffersDelete(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(textEvent(adminID, "AB12CD"))

	got := e.sender.last()
	require.Len(t, got.buttons, 1)
	assert.Equal(t, actionDeleteMedia+"AB12CD", got.buttons[0][0].Action)
}

func TestRetrieveUnknownCode(t *testing.T) {
	e := newEnv(t)

	e.send(textEvent(userID, "NOPE42"))
	assert.Equal(t, msgNotFound, e.sender.last().text)

	e.send(textEvent(userID, "not a code!"))
	assert.Equal(t, msgNotFound, e.sender.last().text)
}

func TestRetrieveFailedSendKeepsViews(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")
	e.sender.fileErr = errors.New("telegram is down")

	e.send(textEvent(userID, "AB12CD"))

	assert.Equal(t, msgTryLater, e.sender.last().text)

	m, err := e.d.Registry.Lookup(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Zero(t, m.Views)
}

func TestRetrieveRequiresSubscription(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")
	e.oracle.set(gate.StatusLeft)

	e.send(textEvent(userID, "AB12CD"))

	got := e.sender.last()
	assert.Equal(t, msgSubscribe, got.text)
	assert.Empty(t, got.fileID)
	require.Len(t, got.buttons, 2)
	assert.Equal(t, "https://t.me/files", got.buttons[0][0].URL)
	assert.Equal(t, actionSubCheck, got.buttons[1][0].Action)

	e.oracle.set(gate.StatusMember)
	e.send(buttonEvent(userID, actionSubCheck))
	assert.Equal(t, msgSubscribeOK, e.sender.last().text)

	e.send(textEvent(userID, "AB12CD"))
	assert.Equal(t, "file-AB12CD", e.sender.last().fileID)
}

func TestRetrieveRateLimited(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")
	e.d.Limiter = ratelimit.New[int64](ratelimit.Config{Requests: 2, Period: time.Hour})

	e.send(textEvent(userID, "AB12CD"))
	e.send(textEvent(userID, "AB12CD"))
	e.send(textEvent(userID, "AB12CD"))

	assert.Equal(t, msgRateLimited, e.sender.last().text)

	m, err := e.d.Registry.Lookup(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Views)
}

func TestUploadWizardWithChosenCode(t *testing.T) {
	e := newEnv(t)

	e.send(fileEvent(adminID))

	prompt := e.sender.last()
	assert.Equal(t, msgAskCode, prompt.text)
	require.NotEmpty(t, prompt.buttons)
	assert.Equal(t, actionGenerate, prompt.buttons[0][0].Action)

	name, ok := e.d.Conversations.Pending(adminID)
	require.True(t, ok)
	assert.Equal(t, "upload_code", name)

	e.send(textEvent(adminID, "summer24"))

	got := e.sender.last()
	assert.Equal(t, fmt.Sprintf(msgSaved, "SUMMER24"), got.text)
	assert.True(t, got.markdown)

	m, err := e.d.Registry.Lookup(context.Background(), "SUMMER24")
	require.NoError(t, err)
	assert.Equal(t, "tg-file", m.FileID)
	assert.Equal(t, model.KindVideo, m.FileType)
	assert.Equal(t, "mp4", m.Format)
	assert.Equal(t, "clip.mp4", m.FileName)
	assert.Equal(t, "holiday", m.Caption)
	assert.Equal(t, adminID, m.OwnerID)

	_, ok = e.d.Conversations.Pending(adminID)
	assert.False(t, ok)
}

func TestUploadWizardRepromptsOnCollision(t *testing.T) {
	e := newEnv(t)
	e.store(t, "TAKEN1")

	e.send(fileEvent(adminID))
	e.send(textEvent(adminID, "taken1"))

	assert.Equal(t, msgCodeTaken, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(adminID)
	require.True(t, ok, "collision re-arms the step")

	m, err := e.d.Registry.Lookup(context.Background(), "TAKEN1")
	require.NoError(t, err)
	assert.Equal(t, "file-TAKEN1", m.FileID, "existing record is untouched")

	e.send(textEvent(adminID, "FREE01"))
	assert.Equal(t, fmt.Sprintf(msgSaved, "FREE01"), e.sender.last().text)
}

func TestUploadWizardRepromptsOnInvalidCode(t *testing.T) {
	e := newEnv(t)

	e.send(fileEvent(adminID))
	e.send(textEvent(adminID, "no spaces"))

	assert.Equal(t, msgCodeInvalid, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(adminID)
	assert.True(t, ok)
}

func TestUploadWizardGenerateRetriesOnCollision(t *testing.T) {
	e := newEnv(t)
	e.store(t, "TAKEN1")

	codes := []string{"TAKEN1", "FRESH1"}
	e.h.WithGenerator(func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	})

	e.send(fileEvent(adminID))
	e.send(buttonEvent(adminID, actionGenerate))

	assert.Equal(t, fmt.Sprintf(msgSaved, "FRESH1"), e.sender.last().text)
	assert.Equal(t, "cb-"+actionGenerate, e.sender.lastCallback().id)

	_, err := e.d.Registry.Lookup(context.Background(), "FRESH1")
	assert.NoError(t, err)
}

func TestUploadWizardGenerateGivesUp(t *testing.T) {
	e := newEnv(t)
	e.store(t, "TAKEN1")
	e.h.WithGenerator(func() string { return "TAKEN1" })

	e.send(fileEvent(adminID))
	e.send(commandEvent(adminID, "auto", ""))

	assert.Equal(t, msgAutoFailed, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(adminID)
	assert.True(t, ok)
}

func TestUploadWizardCancelButton(t *testing.T) {
	e := newEnv(t)

	e.send(fileEvent(adminID))
	e.send(buttonEvent(adminID, actionWizardCancel))

	assert.Equal(t, msgCancelled, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(adminID)
	assert.False(t, ok)

	n, err := e.d.Registry.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadByRegularUser(t *testing.T) {
	e := newEnv(t)

	e.send(fileEvent(userID))

	assert.Equal(t, msgUploadAdmins, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(userID)
	assert.False(t, ok)
}

func TestCancelCommand(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(commandEvent(adminID, "cancel", ""))
	assert.Equal(t, msgNothingToStop, e.sender.last().text)

	e.send(fileEvent(adminID))
	e.send(commandEvent(adminID, "cancel", ""))
	assert.Equal(t, msgCancelled, e.sender.last().text)

	// With nothing pending, text is a code again
	e.send(textEvent(adminID, "AB12CD"))
	assert.Equal(t, "file-AB12CD", e.sender.last().fileID)
}

func TestCommandDropsPendingStep(t *testing.T) {
	e := newEnv(t)

	e.send(fileEvent(adminID))
	e.send(commandEvent(adminID, "help", ""))

	assert.Equal(t, msgHelp, e.sender.last().text)
	_, ok := e.d.Conversations.Pending(adminID)
	assert.False(t, ok)
}

func TestStartCommand(t *testing.T) {
	e := newEnv(t)

	e.send(commandEvent(userID, "start", ""))
	assert.Equal(t, msgWelcome, e.sender.last().text)

	e.d.Gate.Forget(userID)
	e.oracle.set(gate.StatusKicked)
	e.send(commandEvent(userID+1, "start", ""))
	assert.Equal(t, msgSubscribe, e.sender.last().text)

	e.send(commandEvent(userID, "nope", ""))
	assert.Equal(t, msgUnknownCmd, e.sender.last().text)
}

func TestEveryEventTouchesUser(t *testing.T) {
	e := newEnv(t)

	e.send(textEvent(userID, "hello"))
	e.send(commandEvent(userID+1, "start", ""))
	e.send(buttonEvent(userID+2, actionSubCheck))

	n, err := e.d.Users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	u, err := e.d.Users.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Test", u.FirstName)
}

func TestDeleteCommand(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(commandEvent(userID, "delete", "AB12CD"))
	assert.Equal(t, msgNoPerm, e.sender.last().text)

	e.send(commandEvent(adminID, "del", ""))
	assert.Equal(t, msgDeleteUsage, e.sender.last().text)

	e.send(commandEvent(adminID, "del", "ab12cd"))
	assert.Equal(t, fmt.Sprintf(msgDeleted, "AB12CD"), e.sender.last().text)

	e.send(commandEvent(adminID, "delete", "AB12CD"))
	assert.Equal(t, fmt.Sprintf(msgNotFoundCode, "AB12CD"), e.sender.last().text)
}

func TestDeleteButtonOnDeliveredFile(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(buttonEvent(userID, actionDeleteMedia+"AB12CD"))
	assert.Equal(t, callbackAnswer{id: "cb-" + actionDeleteMedia + "AB12CD", text: msgNoPermAlert, alert: true}, e.sender.lastCallback())

	e.send(buttonEvent(adminID, actionDeleteMedia+"AB12CD"))
	assert.Equal(t, msgDeleteAlert, e.sender.lastCallback().text)

	_, err := e.d.Registry.Lookup(context.Background(), "AB12CD")
	assert.Error(t, err)
}

func TestAdminPanel(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")
	e.send(textEvent(userID, "hi"))

	e.send(commandEvent(userID, "admin", ""))
	assert.Equal(t, msgNoPerm, e.sender.last().text)

	e.send(commandEvent(adminID, "admin", ""))

	got := e.sender.last()
	assert.Equal(t, fmt.Sprintf(msgAdminPanel, 1, 2, 1), got.text)
	require.Len(t, got.buttons, 3)
	assert.Equal(t, actionAdminStats, got.buttons[0][0].Action)

	e.send(buttonEvent(userID, actionAdminStats))
	assert.True(t, e.sender.lastCallback().alert)

	e.send(buttonEvent(adminID, actionAdminStats))
	assert.Contains(t, e.sender.last().text, "Retention: 24h0m0s")
}

func TestAdminDeleteFlow(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(buttonEvent(adminID, actionAdminDelete))
	assert.Equal(t, msgAskDelete, e.sender.last().text)

	e.send(textEvent(adminID, "ab12cd"))
	assert.Equal(t, fmt.Sprintf(msgDeleted, "AB12CD"), e.sender.last().text)
}

func TestListAndTop(t *testing.T) {
	e := newEnv(t)

	e.send(commandEvent(adminID, "list", ""))
	assert.Equal(t, msgEmptyList, e.sender.last().text)

	e.store(t, "AAA111")
	e.store(t, "BBB222")
	require.NoError(t, e.d.Registry.IncrementView(context.Background(), "AAA111"))

	e.send(commandEvent(adminID, "top", ""))
	assert.Equal(t, msgTopHeader+"1. AAA111 | video | 👁 1\n2. BBB222 | video | 👁 0", e.sender.last().text)

	e.send(commandEvent(userID, "list", ""))
	assert.Equal(t, msgNoPerm, e.sender.last().text)
}

func TestAddAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.send(commandEvent(adminID, "addadmin", "300"))
	assert.Equal(t, fmt.Sprintf(msgAdminAdded, 300), e.sender.last().text)
	assert.True(t, e.d.Admins.IsAdmin(ctx, 300))

	e.send(buttonEvent(adminID, actionAdminAdd))
	assert.Equal(t, msgAskAdmin, e.sender.last().text)

	forwarded := textEvent(adminID, "some forwarded text")
	forwarded.ForwardFromID = 400
	e.send(forwarded)
	assert.True(t, e.d.Admins.IsAdmin(ctx, 400))

	e.send(commandEvent(adminID, "addadmin", "abc"))
	assert.Equal(t, msgBadUserID, e.sender.last().text)

	e.send(commandEvent(userID, "addadmin", "500"))
	assert.Equal(t, msgNoPerm, e.sender.last().text)
	assert.False(t, e.d.Admins.IsAdmin(ctx, 500))
}

func TestBroadcastFlow(t *testing.T) {
	e := newEnv(t)

	for id := int64(1); id <= 3; id++ {
		e.send(textEvent(id, "hi"))
	}

	e.send(buttonEvent(adminID, actionAdminBroadcast))
	assert.Equal(t, msgAskBroadcast, e.sender.last().text)

	e.send(textEvent(adminID, "  "))
	assert.Equal(t, msgBroadcastEmpty, e.sender.last().text)

	e.send(buttonEvent(adminID, actionAdminBroadcast))
	e.send(textEvent(adminID, "new files today"))
	e.d.Broadcaster.Wait()

	assert.ElementsMatch(t, []int64{1, 2, 3, adminID}, e.broadcast.recipients())
	assert.Eventually(t, func() bool {
		return e.sender.has(fmt.Sprintf(msgBroadcastDone, 4, 0))
	}, time.Second, 10*time.Millisecond)
	assert.True(t, e.sender.has(fmt.Sprintf(msgBroadcastStarted, 4)))

	e.send(buttonEvent(adminID, actionAdminStop))
	assert.Equal(t, msgNoBroadcast, e.sender.lastCallback().text)
}

func TestInlineQuery(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(Event{Kind: EventInline, SessionID: userID, From: User{ID: userID}, InlineQueryID: "q1", Query: "ab12cd"})
	e.send(Event{Kind: EventInline, SessionID: userID, From: User{ID: userID}, InlineQueryID: "q2", Query: "AB1"})

	require.Len(t, e.sender.inline, 2)
	require.Len(t, e.sender.inline[0], 1)
	assert.Equal(t, "AB12CD", e.sender.inline[0][0].ID)
	assert.Contains(t, e.sender.inline[0][0].Text, "Views: 0")
	assert.Empty(t, e.sender.inline[1])

	m, err := e.d.Registry.Lookup(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Zero(t, m.Views, "inline previews don't count as views")
}

func TestUploadUnsupportedKind(t *testing.T) {
	e := newEnv(t)

	ev := fileEvent(adminID)
	ev.File.Kind = "sticker"
	e.send(ev)

	assert.Zero(t, e.sender.count())
	_, ok := e.d.Conversations.Pending(adminID)
	assert.False(t, ok)
}

func TestDeleteRejectsMalformedCode(t *testing.T) {
	e := newEnv(t)
	e.store(t, "AB12CD")

	e.send(commandEvent(adminID, "delete", "AB`12"))

	got := e.sender.last()
	assert.Equal(t, msgCodeInvalid, got.text)
	assert.False(t, got.markdown)

	e.send(buttonEvent(adminID, actionAdminDelete))
	e.send(textEvent(adminID, "*bold*"))
	assert.Equal(t, msgCodeInvalid, e.sender.last().text)

	n, err := e.d.Registry.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
