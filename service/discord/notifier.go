package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain/minting"
)

const embedColor = 0xf8c73e

// sender is the part of *discordgo.Session used to post
type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type Config struct {
	BotKey    string
	ChannelId string
}

type notifier struct {
	channelId string
	discord   sender
}

func New(config Config) (minting.Notifier, error) {
	discord, err := discordgo.New(fmt.Sprintf("Bot %s", config.BotKey))
	if err != nil {
		return nil, err
	}
	return &notifier{channelId: config.ChannelId, discord: discord}, nil
}

func (n *notifier) NotifyRevealed(c ctx.Ctx, record *minting.Record) error {
	embed := toEmbed(record)
	if _, err := n.discord.ChannelMessageSendEmbed(n.channelId, embed); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"mintId": record.ID,
		}).Error("failed to send discord message")
		return err
	}
	return nil
}

func toEmbed(record *minting.Record) *discordgo.MessageEmbed {
	token := (&minting.Minting{EmbedURL: record.EmbedURL}).TokenNumber()
	title := "New mint revealed"
	if token != "" {
		title = fmt.Sprintf("Token #%s revealed", token)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Project", Value: record.ProjectID, Inline: true},
		{Name: "Wallet", Value: record.DestinationWallet, Inline: true},
		{Name: "Confirmations", Value: fmt.Sprintf("%d", record.BlockConfirmations), Inline: true},
	}
	if token != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Token", Value: token, Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		URL:         record.ShareURL,
		Description: record.ShareURL,
		Color:       embedColor,
		Fields:      fields,
	}
}
