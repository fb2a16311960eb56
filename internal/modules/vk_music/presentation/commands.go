package presentation

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the VK music module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play the first VK match for a query",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Artist, title or both",
					Required:    true,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search VK and pick from the top matches",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Artist, title or both",
					Required:    true,
				},
			},
		},
		{
			Name:        "playlist",
			Description: "Queue every available track from a VK playlist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "vk.com playlist link",
					Required:    true,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the current queue",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "stop",
			Description: "Clear the queue and stop playback",
		},
	}
}
