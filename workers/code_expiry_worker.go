// workers/code_expiry_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"coin-wager-system/services"
)

// PollExpiredCodes periodically deactivates redeem codes past their
// expiration so the catalog stays tidy. Redeem rejects expired codes at
// claim time regardless, so a missed sweep costs nothing.
func PollExpiredCodes(ctx context.Context, codes *services.RedemptionService, pollInterval time.Duration) {
	log.Println("Starting expired-code sweeper...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expired-code sweeper stopped.")
			return
		case <-ticker.C:
			n, err := codes.DeactivateExpired(time.Now())
			if err != nil {
				log.Printf("[Sweeper] Failed to deactivate expired codes: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[Sweeper] Deactivated %d expired code(s)", n)
			}
		}
	}
}
