package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

var errNoReply = errors.New("no reply has been posted yet")

// randomNoticeDelay picks how long a prefix-command notice stays visible.
func randomNoticeDelay() time.Duration {
	spread := constants.BusyNoticeMaxDelay - constants.BusyNoticeMinDelay
	return constants.BusyNoticeMinDelay + rand.N(spread+1)
}

// CommandResponder answers a prefix command typed into a channel.
type CommandResponder struct {
	session    DiscordSessionInterface
	dispatcher *dispatcher
	channelID  string
	guildID    string
	sourceID   string
	// noticeDelay returns how long a notice stays before it is deleted.
	noticeDelay func() time.Duration

	mu        sync.Mutex
	messageID string
}

var _ Responder = (*CommandResponder)(nil)

// Defer is a no-op: channel messages have no acknowledgement deadline.
func (c *CommandResponder) Defer(context.Context) error { return nil }

func (c *CommandResponder) Reply(ctx context.Context, doc render.Document) error {
	msg, err := c.session.ChannelMessageSendComplex(c.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{toEmbed(doc)},
		Reference: &discordgo.MessageReference{
			MessageID: c.sourceID,
			ChannelID: c.channelID,
			GuildID:   c.guildID,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send reply to channel %s: %w", c.channelID, err)
	}

	c.mu.Lock()
	c.messageID = msg.ID
	c.mu.Unlock()
	return nil
}

func (c *CommandResponder) Edit(ctx context.Context, doc render.Document) error {
	id := c.replyID()
	if id == "" {
		return errNoReply
	}
	return editEmbed(ctx, channelEditor{session: c.session, channelID: c.channelID, messageID: id}, doc)
}

// Notice posts text to the channel and deletes it after a short delay.
func (c *CommandResponder) Notice(ctx context.Context, text string) error {
	msg, err := c.session.ChannelMessageSendComplex(c.channelID, &discordgo.MessageSend{Content: text}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send notice to channel %s: %w", c.channelID, err)
	}

	delay := c.noticeDelay
	if delay == nil {
		delay = randomNoticeDelay
	}
	time.AfterFunc(delay(), func() {
		if err := c.session.ChannelMessageDelete(c.channelID, msg.ID); err != nil {
			logger.WithFields(logrus.Fields{
				"channel": c.channelID,
				"message": msg.ID,
				"error":   err,
			}).Warn("failed-to-delete-notice")
		}
	})
	return nil
}

func (c *CommandResponder) Anchor() (AnchoredDisplay, error) {
	id := c.replyID()
	if id == "" {
		return nil, errNoReply
	}
	return newAnchor(c.dispatcher, id, channelEditor{session: c.session, channelID: c.channelID, messageID: id}), nil
}

func (c *CommandResponder) replyID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messageID
}

// SlashResponder answers a slash command interaction.
type SlashResponder struct {
	session     DiscordSessionInterface
	dispatcher  *dispatcher
	interaction *discordgo.Interaction

	mu        sync.Mutex
	deferred  bool
	messageID string
}

var _ Responder = (*SlashResponder)(nil)

// Defer shows the "thinking" state. Later replies become follow-ups.
func (s *SlashResponder) Defer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deferred {
		return nil
	}
	err := s.session.InteractionRespond(s.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to defer interaction: %w", err)
	}
	s.deferred = true
	return nil
}

func (s *SlashResponder) Reply(ctx context.Context, doc render.Document) error {
	if err := s.Defer(ctx); err != nil {
		return err
	}
	msg, err := s.session.FollowupMessageCreate(s.interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{toEmbed(doc)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send interaction reply: %w", err)
	}

	s.mu.Lock()
	s.messageID = msg.ID
	s.mu.Unlock()
	return nil
}

func (s *SlashResponder) Edit(ctx context.Context, doc render.Document) error {
	id := s.replyID()
	if id == "" {
		return errNoReply
	}
	return editEmbed(ctx, s.followupEditor(id), doc)
}

// Notice replies ephemerally, as a follow-up once the interaction is deferred.
func (s *SlashResponder) Notice(ctx context.Context, text string) error {
	s.mu.Lock()
	deferred := s.deferred
	s.mu.Unlock()

	if deferred {
		_, err := s.session.FollowupMessageCreate(s.interaction, true, &discordgo.WebhookParams{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to send ephemeral follow-up: %w", err)
		}
		return nil
	}
	return respondEphemeral(ctx, s.session, s.interaction, text)
}

func (s *SlashResponder) Anchor() (AnchoredDisplay, error) {
	id := s.replyID()
	if id == "" {
		return nil, errNoReply
	}
	return newAnchor(s.dispatcher, id, s.followupEditor(id)), nil
}

func (s *SlashResponder) followupEditor(messageID string) followupEditor {
	return followupEditor{session: s.session, interaction: s.interaction, messageID: messageID}
}

func (s *SlashResponder) replyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// componentInteraction is one button click. It implements pager.Interaction.
type componentInteraction struct {
	session     DiscordSessionInterface
	interaction *discordgo.Interaction
}

var _ pager.Interaction = (*componentInteraction)(nil)

func (c *componentInteraction) Acknowledge() error {
	err := c.session.InteractionRespond(c.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge component: %w", err)
	}
	return nil
}

func (c *componentInteraction) RespondPrivate(content string) error {
	return respondEphemeral(context.Background(), c.session, c.interaction, content)
}

func respondEphemeral(ctx context.Context, session DiscordSessionInterface, i *discordgo.Interaction, content string) error {
	err := session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: render.Truncate(content, constants.MaxDiscordMessageLength),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send ephemeral response: %w", err)
	}
	return nil
}

func editEmbed(ctx context.Context, editor messageEditor, doc render.Document) error {
	return editor.edit(ctx, "", []*discordgo.MessageEmbed{toEmbed(doc)}, []discordgo.MessageComponent{})
}
