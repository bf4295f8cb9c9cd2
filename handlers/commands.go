// handlers/commands.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"coin-wager-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const helpText = "Commands: .roulette <amount> <red|black> · .guess <1-10> · .balance · .claim <code> · .history"

// CommandHandler is the boundary between the messaging transport and the
// economy engine: the gateway POSTs each inbound chat message here, we parse
// the leading command token and dispatch, and the gateway delivers whatever
// reply we return.
type CommandHandler struct {
	Filter   *services.ThreatFilter
	Balances *services.BalanceService
	Games    *services.GameService
	Codes    *services.RedemptionService
	validate *validator.Validate
}

func NewCommandHandler(filter *services.ThreatFilter, balances *services.BalanceService, games *services.GameService, codes *services.RedemptionService) *CommandHandler {
	return &CommandHandler{
		Filter:   filter,
		Balances: balances,
		Games:    games,
		Codes:    codes,
		validate: validator.New(),
	}
}

type inboundMessage struct {
	UserID string `json:"user_id" validate:"required,min=3,max=64"`
	Text   string `json:"text" validate:"required"`
}

// HandleMessage processes one inbound chat message and returns the reply
// text for the gateway to deliver.
func (h *CommandHandler) HandleMessage(c *fiber.Ctx) error {
	var req inboundMessage
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message fields"})
	}

	// Everything the transport hands us is hostile until inspected.
	if err := h.Filter.Inspect(req.Text); err != nil {
		return c.JSON(fiber.Map{"reply": replyFor(err)})
	}

	return c.JSON(fiber.Map{"reply": h.dispatch(req.UserID, req.Text)})
}

// dispatch parses the case-insensitive leading token and runs the matching
// operation. Unknown commands get the help text.
func (h *CommandHandler) dispatch(userID, text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return helpText
	}

	switch strings.ToLower(fields[0]) {
	case ".roulette":
		return h.roulette(userID, fields[1:])
	case ".guess":
		return h.guess(userID, fields[1:])
	case ".balance":
		return h.balance(userID)
	case ".claim":
		return h.claim(userID, fields[1:])
	case ".createcode":
		return h.createCode(userID, fields[1:])
	case ".history":
		return h.history(userID)
	default:
		return helpText
	}
}

func (h *CommandHandler) roulette(userID string, args []string) string {
	if len(args) != 2 {
		return "Usage: .roulette <amount> <red|black>"
	}
	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "Usage: .roulette <amount> <red|black>"
	}

	res, err := h.Games.Roulette(userID, bet, args[1])
	if err != nil {
		return replyFor(err)
	}
	if res.Won {
		return fmt.Sprintf("🎰 The ball landed on %s — you won %d coins! Balance: %d", res.Result, res.Payout, res.NewBalance)
	}
	return fmt.Sprintf("🎰 The ball landed on %s — you lost %d coins. Balance: %d", res.Result, res.Bet, res.NewBalance)
}

func (h *CommandHandler) guess(userID string, args []string) string {
	if len(args) != 1 {
		return "Usage: .guess <1-10>"
	}
	guess, err := strconv.Atoi(args[0])
	if err != nil {
		return "Usage: .guess <1-10>"
	}

	res, err := h.Games.Guess(userID, guess)
	if err != nil {
		return replyFor(err)
	}
	if res.Won {
		return fmt.Sprintf("🎯 It was %d — you guessed it! +%d coins. Balance: %d", res.Secret, res.WinAmount, res.NewBalance)
	}
	return fmt.Sprintf("🎯 It was %d, not %d. Balance: %d", res.Secret, res.Guess, res.NewBalance)
}

func (h *CommandHandler) balance(userID string) string {
	balance, err := h.Balances.GetBalance(userID)
	if err != nil {
		return replyFor(err)
	}
	return fmt.Sprintf("💰 Your balance: %d coins", balance)
}

func (h *CommandHandler) claim(userID string, args []string) string {
	if len(args) != 1 {
		return "Usage: .claim <code>"
	}

	res, err := h.Codes.Redeem(userID, args[0])
	if err != nil {
		return replyFor(err)
	}
	return fmt.Sprintf("🎁 Code %s redeemed for %d coins. Balance: %d", res.Code, res.Coins, res.NewBalance)
}

func (h *CommandHandler) createCode(userID string, args []string) string {
	if len(args) < 3 {
		return "Usage: .createcode <code> <coins> <hours> [label]"
	}
	coins, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "Usage: .createcode <code> <coins> <hours> [label]"
	}
	hours, err := strconv.Atoi(args[2])
	if err != nil {
		return "Usage: .createcode <code> <coins> <hours> [label]"
	}
	label := strings.Join(args[3:], " ")

	rc, err := h.Codes.Issue(userID, args[0], label, coins, hours)
	if err != nil {
		return replyFor(err)
	}
	return fmt.Sprintf("✅ Code %s created: %d coins, expires in %dh", rc.Code, rc.CoinValue, hours)
}

func (h *CommandHandler) history(userID string) string {
	events, err := h.Games.History(userID, 5)
	if err != nil {
		return replyFor(err)
	}
	if len(events) == 0 {
		return "📜 No games played yet."
	}

	var b strings.Builder
	b.WriteString("📜 Recent games:\n")
	for _, e := range events {
		outcome := "lost"
		if e.WinAmount > 0 {
			outcome = fmt.Sprintf("won %d", e.WinAmount)
		}
		fmt.Fprintf(&b, "• %s — bet %d, %s\n", e.Game, e.BetAmount, outcome)
	}
	return strings.TrimRight(b.String(), "\n")
}

// replyFor maps a typed service error onto its short user-facing message.
// Internals stay in the logs.
func replyFor(err error) string {
	switch {
	case errors.Is(err, services.ErrThreatDetected):
		return "🚫 Message rejected."
	case errors.Is(err, services.ErrRateLimited):
		return "⏳ Too many attempts — try again in a few minutes."
	case errors.Is(err, services.ErrInsufficientBalance):
		return "💸 Not enough coins for that."
	case errors.Is(err, services.ErrCodeNotFound):
		return "❌ Unknown or inactive code."
	case errors.Is(err, services.ErrCodeExpired):
		return "⌛ That code has expired."
	case errors.Is(err, services.ErrDuplicateCode):
		return "❌ A code with that name already exists."
	case errors.Is(err, services.ErrDuplicateRedemption):
		return "❌ You already claimed that code."
	case errors.Is(err, services.ErrValidation):
		return "❌ " + strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	default:
		log.Printf("Unexpected error handling command: %v", err)
		return "⚠️ Something went wrong — please try again later."
	}
}
