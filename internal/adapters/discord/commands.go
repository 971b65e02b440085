package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandCreateOrder    = "create-order"
	CommandAddProduct     = "add-product"
	CommandUpdateProgress = "update-progress"
	CommandAdjustQuantity = "adjust-quantity"
	CommandRemoveProduct  = "remove-product"
	CommandShowOrder      = "show-order"
	CommandCloseOrder     = "close-order"
)

// Option names.
const (
	OptionProductName = "product_name"
	OptionQuantity    = "quantity"
	OptionProgress    = "progress"
)

func productOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         OptionProductName,
		Description:  description,
		Required:     true,
		Autocomplete: true,
	}
}

func integerOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

// Commands returns the slash command definitions.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandCreateOrder,
			Description: "Create a new order in the current thread.",
		},
		{
			Name:        CommandAddProduct,
			Description: "Add a product to the order in the current thread.",
			Options: []*discordgo.ApplicationCommandOption{
				productOption("Product name"),
				integerOption(OptionQuantity, "Requested quantity"),
			},
		},
		{
			Name:        CommandUpdateProgress,
			Description: "Record progress on a product.",
			Options: []*discordgo.ApplicationCommandOption{
				productOption("Product name"),
				integerOption(OptionProgress, "Amount to add to the progress"),
			},
		},
		{
			Name:        CommandAdjustQuantity,
			Description: "Increase the requested quantity of a product.",
			Options: []*discordgo.ApplicationCommandOption{
				productOption("Product name"),
				integerOption(OptionQuantity, "Amount to add to the requested quantity"),
			},
		},
		{
			Name:        CommandRemoveProduct,
			Description: "Remove a product from the order.",
			Options: []*discordgo.ApplicationCommandOption{
				productOption("Product name"),
			},
		},
		{
			Name:        CommandShowOrder,
			Description: "Show the order in the current thread.",
		},
		{
			Name:        CommandCloseOrder,
			Description: "Mark the order as completed (creator only).",
		},
	}
}

// RegisterCommands replaces the application's commands. An empty guildID
// registers them globally.
func RegisterCommands(api sessionAPI, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	registered, err := api.ApplicationCommandBulkOverwrite(appID, guildID, Commands())
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	return registered, nil
}
