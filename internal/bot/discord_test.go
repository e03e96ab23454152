package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDiscordSession is a mock implementation of DiscordSessionInterface for testing
type MockDiscordSession struct {
	mu sync.Mutex

	shouldFailOnOpen bool
	openCalled       bool
	closed           bool
	handlers         []interface{}
	status           string

	sent       []*discordgo.MessageSend
	edits      []*discordgo.MessageEdit
	deleted    []string
	responses  []*discordgo.InteractionResponse
	followups  []*discordgo.WebhookParams
	registered []*discordgo.ApplicationCommand
	appID      string
	guildID    string
	nextID     int

	webhookEdits     []followupEdit
	failWebhookEdits bool
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
	return func() {}
}

func (m *MockDiscordSession) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCalled = true
	if m.shouldFailOnOpen {
		return errors.New("failed to open discord connection")
	}
	return nil
}

func (m *MockDiscordSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockDiscordSession) UpdateGameStatus(_ int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = name
	return nil
}

func (m *MockDiscordSession) newMessage(channelID string) *discordgo.Message {
	m.nextID++
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", m.nextID), ChannelID: channelID}
}

func (m *MockDiscordSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return m.newMessage(channelID), nil
}

func (m *MockDiscordSession) ChannelMessageEditComplex(e *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, e)
	return &discordgo.Message{ID: e.ID, ChannelID: e.Channel}, nil
}

func (m *MockDiscordSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *MockDiscordSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	return nil
}

func (m *MockDiscordSession) FollowupMessageCreate(i *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followups = append(m.followups, data)
	return m.newMessage(i.ChannelID), nil
}

type followupEdit struct {
	messageID string
	data      *discordgo.WebhookEdit
}

func (m *MockDiscordSession) FollowupMessageEdit(i *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWebhookEdits {
		return nil, errors.New("unknown webhook")
	}
	m.webhookEdits = append(m.webhookEdits, followupEdit{messageID: messageID, data: data})
	return &discordgo.Message{ID: messageID, ChannelID: i.ChannelID}, nil
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appID, m.guildID, m.registered = appID, guildID, commands
	return commands, nil
}

// Simulate delivers an event to every registered handler accepting it.
func (m *MockDiscordSession) Simulate(event interface{}) {
	m.mu.Lock()
	handlers := append([]interface{}(nil), m.handlers...)
	m.mu.Unlock()

	for _, h := range handlers {
		switch fn := h.(type) {
		case func(*discordgo.Session, *discordgo.Ready):
			if ev, ok := event.(*discordgo.Ready); ok {
				fn(nil, ev)
			}
		case func(*discordgo.Session, *discordgo.MessageCreate):
			if ev, ok := event.(*discordgo.MessageCreate); ok {
				fn(nil, ev)
			}
		case func(*discordgo.Session, *discordgo.InteractionCreate):
			if ev, ok := event.(*discordgo.InteractionCreate); ok {
				fn(nil, ev)
			}
		}
	}
}

func (m *MockDiscordSession) responseTypes() []discordgo.InteractionResponseType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []discordgo.InteractionResponseType
	for _, r := range m.responses {
		out = append(out, r.Type)
	}
	return out
}

func startMockBot(t *testing.T, opts DiscordOptions) (*DiscordBot, *MockDiscordSession, chan Request) {
	t.Helper()
	mock := &MockDiscordSession{}
	b := NewDiscordBot(opts)
	b.session = mock

	requests := make(chan Request, 4)
	require.NoError(t, b.Start(context.Background(), func(_ context.Context, req Request) {
		requests <- req
	}))
	return b, mock, requests
}

func receive(t *testing.T, ch chan Request) Request {
	t.Helper()
	select {
	case req := <-ch:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
		return Request{}
	}
}

func TestDiscordBot_Start_RegistersHandlersAndOpens(t *testing.T) {
	b, mock, _ := startMockBot(t, DiscordOptions{Token: "test-token", Prefix: "!"})

	assert.True(t, mock.openCalled)
	assert.Len(t, mock.handlers, 3)

	require.NoError(t, b.Stop())
	assert.True(t, mock.closed)
}

func TestDiscordBot_Start_WithSessionOpenError_ReturnsError(t *testing.T) {
	mock := &MockDiscordSession{shouldFailOnOpen: true}
	b := NewDiscordBot(DiscordOptions{Token: "test-token"})
	b.session = mock

	err := b.Start(context.Background(), func(context.Context, Request) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open discord connection")
	assert.True(t, mock.openCalled)
}

func TestDiscordBot_Run_StopsOnCancel(t *testing.T) {
	mock := &MockDiscordSession{}
	b := NewDiscordBot(DiscordOptions{Token: "test-token"})
	b.session = mock

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, func(context.Context, Request) {}) }()

	require.Eventually(t, func() bool {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		return mock.openCalled
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, mock.closed)
}

func TestDiscordBot_OnReady_SetsPresenceAndRegistersCommands(t *testing.T) {
	b, mock, _ := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!", GuildID: "guild-1", Status: "Script Searcher"})
	defer b.Stop()

	mock.Simulate(&discordgo.Ready{User: &discordgo.User{ID: "app-1", Username: "scriptbot"}})

	assert.Equal(t, "Script Searcher", mock.status)
	assert.Equal(t, "app-1", mock.appID)
	assert.Equal(t, "guild-1", mock.guildID)

	var names []string
	for _, c := range mock.registered {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"search", "fetch", "trending", "script", "executors", "rscripts_fetch", "rscripts_by_user", "bothelp",
	}, names)
}

func TestDiscordBot_PrefixCommand_BuildsRequest(t *testing.T) {
	b, mock, requests := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!"})
	defer b.Stop()

	mock.Simulate(&discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "src-1",
		ChannelID: "chan-1",
		Content:   `!search "blox fruits" paid verified=1`,
		Author:    &discordgo.User{ID: "user-1"},
	}})

	req := receive(t, requests)
	assert.Equal(t, "discord", req.Platform)
	assert.Equal(t, "search", req.Command)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, "chan-1", req.ChannelID)
	assert.False(t, req.Slash)
	assert.Equal(t, map[string]string{"query": "blox fruits", "mode": "paid", "verified": "1"}, req.Args)
	assert.IsType(t, &CommandResponder{}, req.Responder)
}

func TestDiscordBot_IgnoresBotsAndOtherMessages(t *testing.T) {
	b, mock, requests := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!"})
	defer b.Stop()

	mock.Simulate(&discordgo.MessageCreate{Message: &discordgo.Message{
		Content: "!search x", Author: &discordgo.User{ID: "bot-1", Bot: true},
	}})
	mock.Simulate(&discordgo.MessageCreate{Message: &discordgo.Message{
		Content: "hello there", Author: &discordgo.User{ID: "user-1"},
	}})
	mock.Simulate(&discordgo.MessageCreate{Message: &discordgo.Message{
		Content: "!unknown", Author: &discordgo.User{ID: "user-1"},
	}})

	select {
	case req := <-requests:
		t.Fatalf("unexpected request %+v", req)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDiscordBot_SlashCommand_BuildsRequest(t *testing.T) {
	b, mock, requests := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!"})
	defer b.Stop()

	mock.Simulate(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "chan-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "search",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "arsenal"},
				{Name: "page", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2)},
				{Name: "verified", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
				{Name: "sort_by", Type: discordgo.ApplicationCommandOptionString, Value: "views"},
			},
		},
	}})

	req := receive(t, requests)
	assert.True(t, req.Slash)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, map[string]string{
		"query":    "arsenal",
		"page":     "2",
		"verified": "true",
		"sortBy":   "views",
	}, req.Args)
	assert.IsType(t, &SlashResponder{}, req.Responder)
}

func componentClick(userID, messageID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		User:    &discordgo.User{ID: userID},
		Message: &discordgo.Message{ID: messageID},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func TestDiscordBot_UndeliveredClickIsAcknowledged(t *testing.T) {
	b, mock, _ := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!"})
	defer b.Stop()

	mock.Simulate(componentClick("user-1", "msg-404", pager.ControlID("gone", pager.ActionNext)))
	mock.Simulate(componentClick("user-1", "msg-404", "someone-elses-button"))

	assert.Equal(t, []discordgo.InteractionResponseType{
		discordgo.InteractionResponseDeferredMessageUpdate,
		discordgo.InteractionResponseDeferredMessageUpdate,
	}, mock.responseTypes())
}

func TestDiscordBot_ClickDeliveredToAnchor(t *testing.T) {
	b, mock, _ := startMockBot(t, DiscordOptions{Token: "t", Prefix: "!"})
	defer b.Stop()

	anchor := newAnchor(b.dispatcher, "msg-7", channelEditor{session: mock, channelID: "chan-1", messageID: "msg-7"})
	defer anchor.Close()

	got := make(chan pager.Event, 1)
	go func() { got <- <-anchor.Events() }()

	id := pager.ControlID("sess", pager.ActionNext)
	// The reader may not be parked yet; retry until the click lands.
	require.Eventually(t, func() bool {
		mock.Simulate(componentClick("user-1", "msg-7", id))
		select {
		case ev := <-got:
			assert.Equal(t, "user-1", ev.UserID)
			assert.Equal(t, id, ev.CustomID)
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestCommandResponder_ReplyEditAnchor(t *testing.T) {
	mock := &MockDiscordSession{}
	r := &CommandResponder{session: mock, dispatcher: newDispatcher(), channelID: "chan-1", sourceID: "src-1"}
	ctx := context.Background()

	_, err := r.Anchor()
	assert.ErrorIs(t, err, errNoReply)
	assert.ErrorIs(t, r.Edit(ctx, render.Document{}), errNoReply)

	require.NoError(t, r.Defer(ctx))
	require.NoError(t, r.Reply(ctx, render.Document{Title: "Searching"}))
	require.Len(t, mock.sent, 1)
	assert.Equal(t, "Searching", mock.sent[0].Embeds[0].Title)
	assert.Equal(t, "src-1", mock.sent[0].Reference.MessageID)

	require.NoError(t, r.Edit(ctx, render.Document{Title: "Done"}))
	require.Len(t, mock.edits, 1)
	assert.Equal(t, "msg-1", mock.edits[0].ID)
	assert.Equal(t, "Done", mock.edits[0].Embeds[0].Title)

	anchor, err := r.Anchor()
	require.NoError(t, err)
	defer anchor.Close()
	assert.Equal(t, "msg-1", anchor.MessageID())
}

func TestCommandResponder_NoticeIsDeletedLater(t *testing.T) {
	mock := &MockDiscordSession{}
	r := &CommandResponder{
		session:     mock,
		channelID:   "chan-1",
		noticeDelay: func() time.Duration { return 10 * time.Millisecond },
	}

	require.NoError(t, r.Notice(context.Background(), "busy"))
	assert.Equal(t, "busy", mock.sent[0].Content)

	require.Eventually(t, func() bool {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		return len(mock.deleted) == 1 && mock.deleted[0] == "msg-1"
	}, time.Second, 5*time.Millisecond)
}

func TestRandomNoticeDelay_InRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := randomNoticeDelay()
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 10*time.Second)
	}
}

func TestSlashResponder_NoticeBeforeAndAfterDefer(t *testing.T) {
	mock := &MockDiscordSession{}
	r := &SlashResponder{session: mock, dispatcher: newDispatcher(), interaction: &discordgo.Interaction{ChannelID: "chan-1"}}
	ctx := context.Background()

	require.NoError(t, r.Notice(ctx, "busy"))
	require.Len(t, mock.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, mock.responses[0].Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, mock.responses[0].Data.Flags)

	r2 := &SlashResponder{session: mock, dispatcher: newDispatcher(), interaction: &discordgo.Interaction{ChannelID: "chan-1"}}
	require.NoError(t, r2.Reply(ctx, render.Document{Title: "Result"}))
	require.NoError(t, r2.Defer(ctx))
	require.NoError(t, r2.Notice(ctx, "later"))

	assert.Equal(t, []discordgo.InteractionResponseType{
		discordgo.InteractionResponseChannelMessageWithSource,
		discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, mock.responseTypes(), "reply defers once")
	require.Len(t, mock.followups, 2)
	assert.Equal(t, "Result", mock.followups[0].Embeds[0].Title)
	assert.Equal(t, "later", mock.followups[1].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, mock.followups[1].Flags)

	anchor, err := r2.Anchor()
	require.NoError(t, err)
	defer anchor.Close()
	assert.Equal(t, "msg-1", anchor.MessageID())
}

func TestAnchor_UpdateExpireFail(t *testing.T) {
	mock := &MockDiscordSession{}
	a := newAnchor(newDispatcher(), "msg-1", channelEditor{session: mock, channelID: "chan-1", messageID: "msg-1"})
	defer a.Close()
	ctx := context.Background()

	controls := []pager.Control{
		{ID: "sp:s:next", Kind: pager.KindNavigate, Action: pager.ActionNext, Label: "▶️"},
		{Kind: pager.KindLink, Label: "View", URL: "https://example.com", Row: pager.RowContent},
	}
	require.NoError(t, a.Update(ctx, render.Document{Title: "Page"}, controls))
	require.NoError(t, a.Expire(ctx))
	require.NoError(t, a.Fail(ctx, "An error occurred: boom"))

	require.Len(t, mock.edits, 3)

	update := mock.edits[0]
	assert.Equal(t, "", *update.Content)
	assert.Len(t, update.Components, 2)

	expire := mock.edits[1]
	assert.Equal(t, TimedOutContent, *expire.Content)
	assert.Empty(t, expire.Components)
	assert.NotNil(t, expire.Components)
	require.Len(t, expire.Embeds, 1)
	assert.Equal(t, "Page", expire.Embeds[0].Title)

	fail := mock.edits[2]
	assert.Empty(t, fail.Components)
	assert.Equal(t, "An error occurred: boom", fail.Embeds[0].Description)
}

func TestSlashResponder_EditsThroughFollowupWebhook(t *testing.T) {
	mock := &MockDiscordSession{}
	r := &SlashResponder{session: mock, dispatcher: newDispatcher(), interaction: &discordgo.Interaction{ChannelID: "chan-1"}}
	ctx := context.Background()

	require.NoError(t, r.Reply(ctx, render.Document{Title: "Searching"}))
	require.NoError(t, r.Edit(ctx, render.Document{Title: "No Scripts Found"}))

	anchor, err := r.Anchor()
	require.NoError(t, err)
	defer anchor.Close()
	require.NoError(t, anchor.Update(ctx, render.Document{Title: "Page"}, []pager.Control{
		{ID: "sp:s:next", Kind: pager.KindNavigate, Action: pager.ActionNext, Label: "▶️"},
	}))
	require.NoError(t, anchor.Expire(ctx))

	assert.Empty(t, mock.edits, "follow-ups are not edited as channel messages")
	require.Len(t, mock.webhookEdits, 3)
	for _, e := range mock.webhookEdits {
		assert.Equal(t, "msg-1", e.messageID)
	}
	assert.Equal(t, "No Scripts Found", (*mock.webhookEdits[0].data.Embeds)[0].Title)
	assert.Len(t, *mock.webhookEdits[1].data.Components, 1)
	assert.Equal(t, TimedOutContent, *mock.webhookEdits[2].data.Content)
	assert.Empty(t, *mock.webhookEdits[2].data.Components)
	assert.Equal(t, "Page", (*mock.webhookEdits[2].data.Embeds)[0].Title)
}

func TestFollowupEditor_FallsBackToChannelEdit(t *testing.T) {
	mock := &MockDiscordSession{failWebhookEdits: true}
	editor := followupEditor{session: mock, interaction: &discordgo.Interaction{ChannelID: "chan-1"}, messageID: "msg-3"}

	require.NoError(t, editor.edit(context.Background(), "", []*discordgo.MessageEmbed{{Title: "Page"}}, []discordgo.MessageComponent{}))

	require.Len(t, mock.edits, 1)
	assert.Equal(t, "chan-1", mock.edits[0].Channel)
	assert.Equal(t, "msg-3", mock.edits[0].ID)
	assert.Equal(t, "Page", mock.edits[0].Embeds[0].Title)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", maskSecret("short"))
	assert.Equal(t, "abcd***wxyz", maskSecret("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "abcd***wxyz", maskSecret("Bot abcdefghijklmnopqrstuvwxyz"))
}
