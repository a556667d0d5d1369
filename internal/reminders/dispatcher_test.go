package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaser-agent-backend/internal/ai"
	"chaser-agent-backend/internal/tasks"
	"chaser-agent-backend/internal/workflow"
)

type fakeGenerator struct {
	msg  ai.GeneratedMessage
	err  error
	seen []ai.MessageContext
}

func (f *fakeGenerator) Generate(_ context.Context, mc ai.MessageContext) (ai.GeneratedMessage, error) {
	f.seen = append(f.seen, mc)
	if f.err != nil {
		return ai.GeneratedMessage{}, f.err
	}
	return f.msg, nil
}

type fakeBook struct {
	marked []int
	err    error
}

func (f *fakeBook) MarkReminded(_ context.Context, taskID int, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, taskID)
	return nil
}

type fakeLogs struct {
	entries []ReminderLog
	err     error
}

func (f *fakeLogs) Append(_ context.Context, e ReminderLog) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, e)
	return len(f.entries), nil
}

type fakeSender struct {
	to      []string
	subject []string
	err     error
}

func (f *fakeSender) Send(_ context.Context, to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.subject = append(f.subject, subject)
	return nil
}

type fakeHook struct {
	payloads []workflow.Payload
}

func (f *fakeHook) Notify(_ context.Context, p workflow.Payload) {
	f.payloads = append(f.payloads, p)
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func sampleTask() tasks.Task {
	return tasks.Task{
		ID:            7,
		Title:         "Quarterly report",
		AssigneeName:  "Sarah Connor",
		AssigneeEmail: "sarah@example.com",
		Deadline:      time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Priority:      tasks.PriorityHigh,
		Status:        tasks.StatusPending,
		ReminderCount: 1,
		CreatedBy:     3,
	}
}

func newTestDispatcher(gen *fakeGenerator, book *fakeBook, logs *fakeLogs, sender *fakeSender, hook *fakeHook) *Dispatcher {
	d := &Dispatcher{
		Tasks:  book,
		Logs:   logs,
		Email:  sender,
		AppURL: "http://localhost:3000",
		Now:    fixedNow,
	}
	if gen != nil {
		d.AI = gen
	}
	if hook != nil {
		d.Hook = hook
	}
	return d
}

func TestDispatchWithAI(t *testing.T) {
	gen := &fakeGenerator{msg: ai.GeneratedMessage{Subject: "Heads up!", Body: "Please finish soon.", IsAIGenerated: true}}
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	hook := &fakeHook{}
	d := newTestDispatcher(gen, book, logs, sender, hook)

	outcome, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeScheduled, true, "")
	require.NoError(t, err)

	assert.True(t, outcome.Sent)
	assert.True(t, outcome.IsAIGenerated)
	assert.Equal(t, 2, outcome.ReminderNumber)
	assert.Equal(t, ToneFirm, outcome.Tone)
	assert.Equal(t, "Heads up!", outcome.Subject)

	require.Len(t, gen.seen, 1)
	assert.Equal(t, 2, gen.seen[0].ReminderCount)
	assert.Equal(t, 2, gen.seen[0].DaysRemaining)

	assert.Equal(t, []string{"sarah@example.com"}, sender.to)
	assert.Equal(t, []int{7}, book.marked)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, "sent", entry.Status)
	assert.Equal(t, MessageTypeScheduled, entry.MessageType)
	assert.Equal(t, 2, entry.ReminderNumber)
	assert.True(t, entry.IsAIGenerated)
	require.NotNil(t, entry.SentAt)

	require.Len(t, hook.payloads, 1)
	assert.Equal(t, workflow.EventReminderTriggered, hook.payloads[0].Event)
}

func TestDispatchAIFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("groq unavailable")}
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	d := newTestDispatcher(gen, book, logs, sender, nil)

	outcome, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeScheduled, true, "")
	require.NoError(t, err)

	assert.True(t, outcome.Sent)
	assert.False(t, outcome.IsAIGenerated)
	assert.NotEmpty(t, outcome.Subject)

	require.Len(t, logs.entries, 1)
	assert.False(t, logs.entries[0].IsAIGenerated)
	assert.Equal(t, "sent", logs.entries[0].Status)
}

func TestDispatchWithoutAIUsesCustomMessage(t *testing.T) {
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	d := newTestDispatcher(nil, book, logs, sender, nil)

	outcome, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeManual, false, "Ping: need this by Friday.")
	require.NoError(t, err)

	assert.True(t, outcome.Sent)
	assert.False(t, outcome.IsAIGenerated)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "Ping: need this by Friday.", logs.entries[0].Message)
	assert.Equal(t, MessageTypeManual, logs.entries[0].MessageType)
}

func TestDispatchManualHookEvent(t *testing.T) {
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	hook := &fakeHook{}
	d := newTestDispatcher(nil, book, logs, sender, hook)

	_, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeManual, false, "")
	require.NoError(t, err)
	require.Len(t, hook.payloads, 1)
	assert.Equal(t, workflow.EventManualNudge, hook.payloads[0].Event)
}

func TestDispatchSendFailureStillLogs(t *testing.T) {
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{err: errors.New("ses throttled")}
	hook := &fakeHook{}
	d := newTestDispatcher(nil, book, logs, sender, hook)

	outcome, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeScheduled, false, "")
	require.NoError(t, err)

	assert.False(t, outcome.Sent)
	assert.Contains(t, outcome.Error, "ses throttled")

	// the attempt is logged even though nothing was delivered
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "failed", logs.entries[0].Status)
	assert.Equal(t, "ses throttled", logs.entries[0].ErrorMessage)
	assert.Nil(t, logs.entries[0].SentAt)

	// a failed attempt keeps its reminder number for the retry
	assert.Empty(t, book.marked)

	// the hook is best effort and fires on failed attempts too
	require.Len(t, hook.payloads, 1)
	assert.Equal(t, workflow.EventReminderTriggered, hook.payloads[0].Event)
}

func TestDispatchLogFailureIsReturned(t *testing.T) {
	book := &fakeBook{}
	logs := &fakeLogs{err: errors.New("db down")}
	sender := &fakeSender{}
	d := newTestDispatcher(nil, book, logs, sender, nil)

	_, err := d.Dispatch(context.Background(), sampleTask(), MessageTypeScheduled, false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append reminder log")
}

func TestEscalateTargetsOwner(t *testing.T) {
	book := &fakeBook{}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	d := newTestDispatcher(nil, book, logs, sender, nil)

	tk := sampleTask()
	tk.ReminderCount = 5
	owner := tasks.Contact{Name: "Dana Boss", Email: "dana@example.com"}

	outcome, err := d.Escalate(context.Background(), tk, owner)
	require.NoError(t, err)

	assert.True(t, outcome.Sent)
	assert.Equal(t, ToneEscalation, outcome.Tone)
	assert.Equal(t, []string{"dana@example.com"}, sender.to)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, MessageTypeEscalation, logs.entries[0].MessageType)
	assert.Equal(t, "dana@example.com", logs.entries[0].RecipientEmail)

	// escalations never advance the assignee's reminder count
	assert.Empty(t, book.marked)
}
