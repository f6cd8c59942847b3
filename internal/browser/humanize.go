package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses execution for a random time between min and max (milliseconds)
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(rand.Intn(max-min)+min) * time.Millisecond)
}

// NudgeScroll scrolls the way a person skimming results would, which also
// triggers lazy-loaded result cards.
func NudgeScroll(page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	RandomDelay(300, 700)
	page.Mouse().Wheel(0, -150)
	RandomDelay(200, 500)
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
