package browser

import (
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

// consentSelectors are the accept controls of the consent-management overlays
// the target site has been seen serving.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	`button[data-testid="uc-accept-all-button"]`,
	`button[id*="accept"]`,
	`button:has-text("Accept all")`,
	`button:has-text("Alle akzeptieren")`,
}

// DismissConsent tries to click a cookie/consent accept control. Advisory
// only: no dialog within the timeout is the normal case on repeat visits, and
// any locate/click failure is swallowed and logged.
func (s *Session) DismissConsent(timeout time.Duration) {
	perSelector := timeout / time.Duration(len(consentSelectors))
	for _, selector := range consentSelectors {
		loc := s.page.Locator(selector).First()
		err := loc.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(perSelector.Milliseconds())),
		})
		if err != nil {
			continue
		}
		if err := loc.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(float64(s.opts.ElementTimeout.Milliseconds())),
		}); err != nil {
			log.Printf("[browser] consent click failed (%s): %v", selector, err)
			return
		}
		log.Printf("[browser] consent dismissed via %s", selector)
		return
	}
	log.Println("[browser] no consent dialog found, continuing")
}
