package models

import "strings"

// CommandType enumerates the text commands farmers can send over WhatsApp.
type CommandType string

const (
	CommandPrices  CommandType = "prices"
	CommandBest    CommandType = "best"
	CommandMarkets CommandType = "markets"
	CommandAdvice  CommandType = "advice"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	cmd := Command{Raw: message, Type: CommandUnknown}

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return cmd
	}

	switch head := strings.TrimPrefix(tokens[0], "/"); head {
	case string(CommandPrices), "price":
		cmd.Type = CommandPrices
	case string(CommandBest):
		cmd.Type = CommandBest
	case string(CommandMarkets), "market":
		cmd.Type = CommandMarkets
	case string(CommandAdvice):
		cmd.Type = CommandAdvice
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
