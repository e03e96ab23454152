package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/sirupsen/logrus"
)

// TimedOutContent replaces the message text when a session expires.
const TimedOutContent = "Interaction timed out."

// Anchor is the Discord AnchoredDisplay: edits go to the posted message.
type Anchor struct {
	messageID string
	editor    messageEditor
	events    <-chan pager.Event
	release   func()

	mu   sync.Mutex
	last *discordgo.MessageEmbed
}

var _ AnchoredDisplay = (*Anchor)(nil)

func newAnchor(d *dispatcher, messageID string, editor messageEditor) *Anchor {
	events, release := d.register(messageID)
	return &Anchor{
		messageID: messageID,
		editor:    editor,
		events:    events,
		release:   release,
	}
}

// MessageID returns the anchored message id.
func (a *Anchor) MessageID() string { return a.messageID }

// Events returns the clicks on the anchored message.
func (a *Anchor) Events() <-chan pager.Event { return a.events }

// Close stops routing clicks to this anchor.
func (a *Anchor) Close() { a.release() }

func (a *Anchor) Update(ctx context.Context, doc render.Document, controls []pager.Control) error {
	embed := toEmbed(doc)
	a.mu.Lock()
	a.last = embed
	a.mu.Unlock()

	return a.editor.edit(ctx, "", []*discordgo.MessageEmbed{embed}, toComponents(controls))
}

// Expire keeps the last page visible and removes every control.
func (a *Anchor) Expire(ctx context.Context) error {
	a.mu.Lock()
	embeds := []*discordgo.MessageEmbed{}
	if a.last != nil {
		embeds = append(embeds, a.last)
	}
	a.mu.Unlock()

	return a.editor.edit(ctx, TimedOutContent, embeds, []discordgo.MessageComponent{})
}

func (a *Anchor) Fail(ctx context.Context, message string) error {
	embeds := []*discordgo.MessageEmbed{toEmbed(render.Failure(message))}
	return a.editor.edit(ctx, "", embeds, []discordgo.MessageComponent{})
}

// messageEditor replaces the content, embeds and components of one message.
type messageEditor interface {
	edit(ctx context.Context, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error
}

// channelEditor edits a message the bot posted to a channel.
type channelEditor struct {
	session   DiscordSessionInterface
	channelID string
	messageID string
}

func (c channelEditor) edit(ctx context.Context, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := discordgo.NewMessageEdit(c.channelID, c.messageID)
	edit.Content = &content
	edit.Embeds = embeds
	edit.Components = components

	if _, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message %s: %w", c.messageID, err)
	}
	return nil
}

// followupEditor edits an interaction follow-up through the interaction
// webhook. Once the interaction token has expired it falls back to a
// channel edit.
type followupEditor struct {
	session     DiscordSessionInterface
	interaction *discordgo.Interaction
	messageID   string
}

func (f followupEditor) edit(ctx context.Context, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := f.session.FollowupMessageEdit(f.interaction, f.messageID, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}

	logger.WithFields(logrus.Fields{
		"message": f.messageID,
		"error":   err,
	}).Debug("followup-edit-failed-falling-back-to-channel-edit")

	fallback := channelEditor{session: f.session, channelID: f.interaction.ChannelID, messageID: f.messageID}
	if fbErr := fallback.edit(ctx, content, embeds, components); fbErr != nil {
		return fmt.Errorf("failed to edit follow-up %s: %w", f.messageID, errors.Join(err, fbErr))
	}
	return nil
}
