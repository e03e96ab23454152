package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DiscordSessionInterface defines the interface we need from discordgo.Session
// This allows us to mock it in tests without depending on concrete types
type DiscordSessionInterface interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	UpdateGameStatus(idle int, name string) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// DiscordOptions configures a DiscordBot.
type DiscordOptions struct {
	Token   string
	Prefix  string
	GuildID string // empty registers slash commands globally
	Status  string
}

// DiscordBot connects to the Discord gateway and turns messages and
// interactions into Requests.
type DiscordBot struct {
	mu         sync.RWMutex
	opts       DiscordOptions
	session    DiscordSessionInterface
	handler    Handler
	baseCtx    context.Context
	dispatcher *dispatcher
	wired      bool
	inflight   sync.WaitGroup

	// noticeDelay overrides the random notice lifetime in tests.
	noticeDelay func() time.Duration
}

// NewDiscordBot creates a new Discord bot instance
func NewDiscordBot(opts DiscordOptions) *DiscordBot {
	return &DiscordBot{
		opts:       opts,
		dispatcher: newDispatcher(),
	}
}

// Start establishes the gateway connection. Invocations are handed to
// handler, each on its own goroutine, with a context derived from ctx.
func (d *DiscordBot) Start(ctx context.Context, handler Handler) error {
	d.mu.Lock()
	d.handler = handler
	d.baseCtx = ctx

	logger.WithFields(logrus.Fields{
		"token":    maskSecret(d.opts.Token),
		"prefix":   d.opts.Prefix,
		"guild_id": d.opts.GuildID,
	}).Info("starting-discord-bot")

	if d.session == nil {
		session, err := discordgo.New("Bot " + d.opts.Token)
		if err != nil {
			d.mu.Unlock()
			return fmt.Errorf("failed to create discord session: %w", err)
		}
		session.Identify.Intents = discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent
		d.session = session
	}
	session := d.session
	if !d.wired {
		session.AddHandler(d.onReady)
		session.AddHandler(d.onMessageCreate)
		session.AddHandler(d.onInteractionCreate)
		d.wired = true
	}
	d.mu.Unlock()

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}
	logger.Info("discord-gateway-connected")
	return nil
}

// Run starts the bot, retrying the gateway connection until it succeeds or
// ctx is cancelled, then serves until ctx is done and stops.
func (d *DiscordBot) Run(ctx context.Context, handler Handler) error {
	for {
		err := d.Start(ctx, handler)
		if err == nil {
			break
		}
		logger.WithFields(logrus.Fields{
			"error": err,
			"retry": constants.ReconnectDelay.String(),
		}).Error("discord-connection-failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(constants.ReconnectDelay):
		}
	}

	<-ctx.Done()
	return d.Stop()
}

// Stop closes the Discord connection and waits for in-flight invocations.
func (d *DiscordBot) Stop() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.wired = false
	d.mu.Unlock()

	if session == nil {
		return nil
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	d.inflight.Wait()
	logger.Info("discord-bot-stopped")
	return nil
}

func (d *DiscordBot) currentSession() DiscordSessionInterface {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.session
}

func (d *DiscordBot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	session := d.currentSession()
	if session == nil {
		return
	}

	if d.opts.Status != "" {
		if err := session.UpdateGameStatus(0, d.opts.Status); err != nil {
			logger.WithField("error", err).Warn("failed-to-update-presence")
		}
	}

	if r.User == nil {
		logger.Warn("ready-event-missing-user")
		return
	}
	registered, err := session.ApplicationCommandBulkOverwrite(r.User.ID, d.opts.GuildID, slashCommands())
	if err != nil {
		logger.WithField("error", err).Error("failed-to-register-slash-commands")
		return
	}
	logger.WithFields(logrus.Fields{
		"user":     r.User.Username,
		"commands": len(registered),
		"guild_id": d.opts.GuildID,
	}).Info("discord-bot-ready")
}

func (d *DiscordBot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from bots
	if m.Author == nil || m.Author.Bot {
		return
	}

	command, args, ok := parsePrefixCommand(d.opts.Prefix, m.Content)
	if !ok {
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": "discord",
		"user":     m.Author.ID,
		"channel":  m.ChannelID,
		"command":  command,
	}).Debug("prefix-command-received")

	d.invoke(Request{
		Platform:  "discord",
		Command:   command,
		Args:      args,
		UserID:    m.Author.ID,
		ChannelID: m.ChannelID,
		Responder: &CommandResponder{
			session:     d.currentSession(),
			dispatcher:  d.dispatcher,
			channelID:   m.ChannelID,
			guildID:     m.GuildID,
			sourceID:    m.ID,
			noticeDelay: d.noticeDelay,
		},
	})
}

func (d *DiscordBot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	session := d.currentSession()
	if session == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		userID := interactionUserID(i.Interaction)

		logger.WithFields(logrus.Fields{
			"platform": "discord",
			"user":     userID,
			"channel":  i.ChannelID,
			"command":  data.Name,
		}).Debug("slash-command-received")

		d.invoke(Request{
			Platform:  "discord",
			Command:   data.Name,
			Args:      slashArgs(data.Options),
			UserID:    userID,
			ChannelID: i.ChannelID,
			Slash:     true,
			Responder: &SlashResponder{
				session:     session,
				dispatcher:  d.dispatcher,
				interaction: i.Interaction,
			},
		})

	case discordgo.InteractionMessageComponent:
		click := &componentInteraction{session: session, interaction: i.Interaction}
		customID := i.MessageComponentData().CustomID

		delivered := false
		if pager.IsControlID(customID) && i.Message != nil {
			delivered = d.dispatcher.dispatch(pager.Event{
				UserID:      interactionUserID(i.Interaction),
				MessageID:   i.Message.ID,
				CustomID:    customID,
				Interaction: click,
			})
		}
		if !delivered {
			// Expired session or a click during a render.
			if err := click.Acknowledge(); err != nil {
				logger.WithField("error", err).Debug("failed-to-acknowledge-undelivered-click")
			}
		}
	}
}

// invoke runs the handler for req on its own goroutine.
func (d *DiscordBot) invoke(req Request) {
	d.mu.RLock()
	handler := d.handler
	ctx := d.baseCtx
	d.mu.RUnlock()

	if handler == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"command": req.Command,
					"user":    req.UserID,
					"panic":   r,
					"stack":   string(debug.Stack()),
				}).Error("handler-panic-recovered")
			}
		}()
		handler(ctx, req)
	}()
}
