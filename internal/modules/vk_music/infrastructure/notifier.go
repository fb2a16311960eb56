package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// Embed colors.
const (
	colorVKBlue = 0x4C75A3
	colorGray   = 0x95A5A6
)

// Notifier sends playback notifications to Discord text channels.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
	}
}

// SendNowPlaying announces the track that just started streaming.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, track domain.Track) error {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title: track.Display(),
		Color: colorVKBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  track.FormattedDuration(),
				Inline: true,
			},
		},
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendSessionEnded announces that the queue drained and the bot left.
func (n *Notifier) SendSessionEnded(channelID snowflake.ID) error {
	embed := &discordgo.MessageEmbed{
		Description: "Queue finished, leaving the voice channel.",
		Color:       colorGray,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
