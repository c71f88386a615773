package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain/minting"
)

type fakeSender struct {
	channelId string
	embeds    []*discordgo.MessageEmbed
	err       error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	f.channelId = channelID
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, f.err
}

func TestNotifyRevealed(t *testing.T) {
	req := require.New(t)
	s := &fakeSender{}
	n := &notifier{channelId: "chan-1", discord: s}

	err := n.NotifyRevealed(ctx.Background(), &minting.Record{
		ID:                 "m-1",
		ProjectID:          "p-1",
		DestinationWallet:  "0x2AB205962F213DDc525B09B23c4C468B6910DA15",
		BlockConfirmations: 3,
		ShareURL:           "https://artblocks.io/token/16",
		EmbedURL:           "https://generator.artblocks.io/0x0583/16?render=true",
	})
	req.NoError(err)
	req.Equal("chan-1", s.channelId)
	req.Len(s.embeds, 1)
	embed := s.embeds[0]
	req.Equal("Token #16 revealed", embed.Title)
	req.Equal("https://artblocks.io/token/16", embed.URL)
	req.Len(embed.Fields, 4)
	req.Equal("p-1", embed.Fields[0].Value)
	req.Equal("3", embed.Fields[2].Value)
	req.Equal("16", embed.Fields[3].Value)
}

func TestNotifyRevealedError(t *testing.T) {
	s := &fakeSender{err: errors.New("rate limited")}
	n := &notifier{channelId: "chan-1", discord: s}
	err := n.NotifyRevealed(ctx.Background(), &minting.Record{ID: "m-1"})
	require.EqualError(t, err, "rate limited")
	require.Equal(t, "New mint revealed", s.embeds[0].Title)
	require.Len(t, s.embeds[0].Fields, 3)
}
