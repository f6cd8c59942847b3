package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobharvest/internal/models"
)

// TelegramNotifier pushes newly stored listings and the run summary to an
// operator chat. Everything here is best-effort: a failed send only logs.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyRun sends one message per newly stored listing, then the run summary.
// Failed runs get the summary only.
func (t *TelegramNotifier) NotifyRun(result models.RunResult) {
	if !result.Success {
		t.send(fmt.Sprintf("⚠️ <b>Ingestion run failed</b>:\n%s", result.Error))
		return
	}

	for _, l := range result.NewListings {
		t.send(listingMessage(l))
		//1 second delay to avoid 429
		time.Sleep(1 * time.Second)
	}

	t.send(runSummary(result))
}

func (t *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[notify] telegram send failed: %v", err)
	}
}

// listingMessage formats one listing; optional fields are skipped when empty.
func listingMessage(l models.JobListing) string {
	lines := []string{fmt.Sprintf("🔥 <b>%s</b>", l.Title)}
	if l.Company != "" {
		lines = append(lines, fmt.Sprintf("🏢 %s", l.Company))
	}
	if l.Location != "" {
		lines = append(lines, fmt.Sprintf("📍 %s", l.Location))
	}
	lines = append(lines, fmt.Sprintf("🔗 <a href=\"%s\">Apply Now</a>", l.Link))
	return strings.Join(lines, "\n")
}

func runSummary(result models.RunResult) string {
	target := ""
	if result.Target != nil {
		target = result.Target.URL
	}
	return fmt.Sprintf(
		"✅ <b>Ingestion run finished</b>\n"+
			"🔗 %s\n"+
			"📦 %d found, %d new",
		target, result.JobsFound, result.JobsSaved,
	)
}
