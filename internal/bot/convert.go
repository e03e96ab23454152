package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/pkg/constants"
)

// toEmbed maps a document onto a Discord embed. Empty parts are omitted.
func toEmbed(doc render.Document) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       doc.Title,
		URL:         doc.URL,
		Description: doc.Description,
		Color:       doc.Color,
	}
	for _, f := range doc.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  render.Truncate(f.Value, constants.MaxEmbedFieldValueLength),
			Inline: f.Inline,
		})
	}
	if doc.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: doc.ImageURL}
	}
	if doc.ThumbnailURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: doc.ThumbnailURL}
	}
	if doc.AuthorName != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: doc.AuthorName, IconURL: doc.AuthorIcon}
	}
	if doc.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: doc.Footer, IconURL: doc.FooterIcon}
	}
	return e
}

// toComponents lays controls out as action rows in row order. It always
// returns a non-nil slice so an edit clears previous components.
func toComponents(controls []pager.Control) []discordgo.MessageComponent {
	rows := []discordgo.MessageComponent{}
	var current []discordgo.MessageComponent
	currentRow := -1

	flush := func() {
		if len(current) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: current})
		}
		current = nil
	}

	for _, c := range controls {
		if c.Row != currentRow || len(current) == constants.MaxButtonsPerRow {
			flush()
			currentRow = c.Row
		}
		current = append(current, toButton(c))
	}
	flush()
	return rows
}

func toButton(c pager.Control) discordgo.Button {
	b := discordgo.Button{
		Label:    render.Truncate(c.Label, constants.MaxButtonLabelLength),
		Disabled: c.Disabled,
	}
	switch c.Kind {
	case pager.KindLink:
		b.Style = discordgo.LinkButton
		b.URL = c.URL
	case pager.KindCopy:
		b.Style = discordgo.SuccessButton
		b.CustomID = c.ID
	case pager.KindLabel:
		b.Style = discordgo.SecondaryButton
		b.CustomID = c.ID
	default:
		b.Style = discordgo.PrimaryButton
		b.CustomID = c.ID
	}
	return b
}
