package commands

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// HelpText lists the supported commands.
const HelpText = "Mandi price bot. Commands:\n" +
	"/prices <crop> - today's prices for a crop\n" +
	"/best - best wheat price today\n" +
	"/markets [location] - nearby markets compared\n" +
	"/advice - your active recommendations\n" +
	"/help - this message"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	CropPricesText(cropName string) (string, error)
	BestPriceText() (string, error)
	MarketsText(location string) (string, error)
	AdviceText(userID string) string
}

// UserLookup resolves a WhatsApp sender to a registered user.
type UserLookup interface {
	GetUserByPhone(phone string) (models.User, bool)
}

// Dispatcher answers parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	users     UserLookup
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(reporting ReportingAdapter, users UserLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reporting,
		users:     users,
		logger:    logger,
	}
}

// HandleCommand builds the text reply for a command sent by sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandPrices:
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		return s.reporting.CropPricesText(strings.Join(cmd.Args, " "))
	case models.CommandBest:
		return s.reporting.BestPriceText()
	case models.CommandMarkets:
		return s.reporting.MarketsText(strings.Join(cmd.Args, " "))
	case models.CommandAdvice:
		user, ok := s.lookup(sender)
		if !ok {
			return "Your number is not registered yet. Ask your extension officer to add you.", nil
		}
		return s.reporting.AdviceText(user.ID), nil
	default:
		return HelpText, nil
	}
}

// lookup tries the sender as given and with a leading '+', since WhatsApp
// delivers wa_id without it.
func (s *Service) lookup(sender string) (models.User, bool) {
	if s.users == nil || sender == "" {
		return models.User{}, false
	}
	if user, ok := s.users.GetUserByPhone(sender); ok {
		return user, true
	}
	if !strings.HasPrefix(sender, "+") {
		return s.users.GetUserByPhone("+" + sender)
	}
	return models.User{}, false
}
