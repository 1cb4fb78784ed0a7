package hud

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/session"
)

// CommandSender issues commands over the active session.
type CommandSender interface {
	SendCommand(text string, opts session.SendOptions) error
	Status() session.Status
}

// Poller periodically re-issues each visible card's refresh command while the
// session is connected. Polls are silent and echo-suppressed so they never
// show up in the transcript or broadcast to other occupants.
type Poller struct {
	sender   CommandSender
	model    *Model
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	enabled map[Card]bool
}

// NewPoller creates a Poller. Auto-refresh starts in the given state for all
// cards.
func NewPoller(sender CommandSender, model *Model, interval time.Duration, autoRefresh bool, logger *zap.Logger) *Poller {
	enabled := make(map[Card]bool)
	for _, card := range []Card{CardVitals, CardDescription, CardInventory, CardSpellbook, CardEffects} {
		enabled[card] = autoRefresh
	}
	return &Poller{
		sender:   sender,
		model:    model,
		interval: interval,
		logger:   logger,
		enabled:  enabled,
	}
}

// SetAutoRefresh toggles polling for one card.
func (p *Poller) SetAutoRefresh(card Card, on bool) {
	p.mu.Lock()
	p.enabled[card] = on
	p.mu.Unlock()
}

// AutoRefresh reports whether polling is enabled for the card.
func (p *Poller) AutoRefresh(card Card) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled[card]
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce refreshes every visible, auto-refresh-enabled card. Skipped
// entirely unless the session is connected.
func (p *Poller) pollOnce() {
	if p.sender.Status() != session.StatusConnected {
		return
	}

	for _, card := range []Card{CardVitals, CardDescription, CardInventory, CardSpellbook, CardEffects} {
		if !p.AutoRefresh(card) || !p.model.Visible(card) {
			continue
		}
		cmd := card.RefreshCommand()
		if cmd == "" {
			continue
		}
		if err := p.sender.SendCommand(cmd, session.SendOptions{SuppressEcho: true, Silent: true}); err != nil {
			p.logger.Warn("status poll failed",
				zap.String("card", string(card)),
				zap.Error(err),
			)
		}
	}
}
