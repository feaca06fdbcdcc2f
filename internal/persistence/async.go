// internal/persistence/async.go
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

const roundWriteTimeout = 10 * time.Second

// SaveRoundAsync persists a finished round in the background: the game
// row, win/loss stats for every seat with a linked account, and an
// achievement check for a human winner. Failures are logged and
// swallowed; gameplay never waits on this.
func SaveRoundAsync(gw Gateway, logger *logrus.Logger, res room.RoundResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), roundWriteTimeout)
		defer cancel()

		if _, err := gw.SaveRoundResult(ctx, res); err != nil {
			logger.Warnf("failed to save round result for room %s: %v", res.RoomID, err)
		}

		for _, seat := range res.Players {
			if seat.IsAI || seat.AccountID == uuid.Nil {
				continue
			}
			m := Metrics{CardsPlayed: seat.CardsPlayed, DurationSec: res.DurationSec}
			if seat.Won {
				m.Hero = string(res.Winner.Hero)
			}
			if err := gw.RecordWinLoss(ctx, seat.AccountID, seat.Won, m); err != nil {
				logger.Warnf("failed to record result for account %s: %v", seat.AccountID, err)
			}
		}

		if !res.Winner.IsAI && res.Winner.AccountID != uuid.Nil {
			unlocked, err := gw.CheckAchievements(ctx, res.Winner.AccountID)
			if err != nil {
				logger.Warnf("achievement check failed for account %s: %v", res.Winner.AccountID, err)
				return
			}
			for _, a := range unlocked {
				logger.WithFields(logrus.Fields{
					"account":     res.Winner.AccountID,
					"achievement": a.Code,
				}).Info("achievement unlocked")
			}
		}
	}()
}
