package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/mistvale/navigator/internal/admin"
	"github.com/mistvale/navigator/internal/events"
	"github.com/mistvale/navigator/internal/hud"
	"github.com/mistvale/navigator/internal/session"
	"github.com/mistvale/navigator/internal/world"
)

// App is the full-screen terminal interface: a scrolling console, a room
// panel, the status sidebar, and a command input line.
type App struct {
	tui     *tview.Application
	console *tview.TextView
	room    *tview.TextView
	sidebar *tview.TextView
	input   *tview.InputField

	log     *events.Log
	store   *world.Store
	manager *session.Manager
	model   *hud.Model
	aliases aliasExpander
	admin   *admin.Client
	logger  *zap.Logger

	stop chan struct{}
}

// NewApp assembles the terminal interface.
//
// Precondition: log, store, manager, model, and logger must be non-nil;
// aliases may be nil for no alias expansion; adminClient may be nil when no
// admin token is configured.
func NewApp(log *events.Log, store *world.Store, manager *session.Manager, model *hud.Model, aliases aliasExpander, adminClient *admin.Client, logger *zap.Logger) *App {
	a := &App{
		tui:     tview.NewApplication(),
		log:     log,
		store:   store,
		manager: manager,
		model:   model,
		aliases: aliases,
		admin:   adminClient,
		logger:  logger,
		stop:    make(chan struct{}),
	}

	a.console = tview.NewTextView().
		SetScrollable(true).
		SetWordWrap(true)
	a.console.SetBorder(true).SetTitle(" Navigator ")

	a.room = tview.NewTextView().SetWordWrap(true)
	a.room.SetBorder(true).SetTitle(" Room ")

	a.sidebar = tview.NewTextView().SetWordWrap(true)
	a.sidebar.SetBorder(true).SetTitle(" Status ")

	a.input = tview.NewInputField().SetLabel("> ")
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := a.input.GetText()
		a.input.SetText("")
		a.dispatch(line)
	})

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.console, 0, 1, false).
		AddItem(a.input, 1, 0, true)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.room, 0, 1, false).
		AddItem(a.sidebar, 0, 2, false)
	layout := tview.NewFlex().
		AddItem(left, 0, 3, true).
		AddItem(right, 34, 0, false)

	a.tui.SetRoot(layout, true)
	return a
}

// Start runs the interface until Stop is called or the user quits.
// Implements lifecycle.Service.
func (a *App) Start() error {
	go a.watch()
	return a.tui.Run()
}

// Stop shuts the interface down.
func (a *App) Stop() {
	close(a.stop)
	a.tui.Stop()
}

// watch re-renders on any state change.
func (a *App) watch() {
	logCh := a.log.Subscribe()
	storeCh := a.store.Subscribe()
	hudCh := a.model.Subscribe()
	statusCh := a.manager.Subscribe()

	a.tui.QueueUpdateDraw(a.render)
	for {
		select {
		case <-a.stop:
			return
		case <-logCh:
		case <-storeCh:
		case <-hudCh:
		case <-statusCh:
		}
		a.tui.QueueUpdateDraw(a.render)
	}
}

// dispatch handles one submitted input line.
func (a *App) dispatch(line string) {
	action := ParseInput(a.aliases, line)
	switch {
	case action.Quit:
		a.tui.Stop()
	case action.Move != "":
		if err := a.manager.SendMove(action.Move); err != nil {
			a.logger.Warn("move failed", zap.Error(err))
		}
	case action.Admin != nil:
		go a.runAdmin(*action.Admin)
	case action.Command != "":
		if err := a.manager.SendCommand(action.Command, session.SendOptions{}); err != nil {
			a.logger.Warn("command failed", zap.Error(err))
		}
	}
}

// runAdmin serves one /admin line: a fetch, or a single-field edit. Results
// and failures both land in the transcript.
func (a *App) runAdmin(req AdminRequest) {
	if a.admin == nil {
		a.log.Append(events.Entry{
			Kind:    events.KindLocalError,
			Summary: "No admin token configured.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		record admin.PlayerRecord
		err    error
	)
	if req.Field == "" {
		record, err = a.admin.GetPlayer(ctx, req.PlayerID)
	} else {
		var patch admin.PlayerPatch
		patch, err = adminPatch(req.Field, req.Value)
		if err == nil {
			record, err = a.admin.UpdatePlayer(ctx, req.PlayerID, patch)
		}
	}
	if err != nil {
		a.log.Append(events.Entry{
			Kind:    events.KindLocalError,
			Summary: fmt.Sprintf("Admin request for %s failed: %v", req.PlayerID, err),
		})
		return
	}

	a.log.Append(events.Entry{
		Kind:    "admin",
		Summary: fmt.Sprintf("%s (%s) — HP %d/%d, SP %d/%d, level %d, at %s",
			record.Name, record.ID,
			record.Stats.Hitpoints, record.Stats.MaxHitpoints,
			record.Stats.SpellPoints, record.Stats.MaxSpellPoints,
			record.Stats.Level, record.Location,
		),
	})
}

// adminPatch builds a single-field sparse patch from a /admin edit.
func adminPatch(field, value string) (admin.PlayerPatch, error) {
	switch field {
	case "name":
		return admin.PlayerPatch{Name: &value}, nil
	case "role":
		return admin.PlayerPatch{Role: &value}, nil
	case "location":
		return admin.PlayerPatch{Location: &value}, nil
	default:
		return admin.PlayerPatch{}, fmt.Errorf("unknown admin field %q", field)
	}
}

func (a *App) render() {
	a.console.SetText(renderConsole(a.log.Visible()))
	a.console.ScrollToEnd()
	a.room.SetText(renderRoom(a.store.Snapshot(), a.manager.Room(), a.manager.OccupantNames(), a.manager.Status()))
	a.sidebar.SetText(renderSidebar(a.model))
}

// renderConsole flattens the visible transcript into console text.
func renderConsole(entries []events.Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Summary)
		b.WriteByte('\n')
		for _, line := range entry.ExtraLines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderRoom builds the room panel: connection status, brief, exits, and
// other occupants.
func renderRoom(data *world.Data, roomID string, occupants []string, status session.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", status)

	if roomID == "" {
		b.WriteString("Nowhere yet.\n")
		return b.String()
	}

	if data != nil {
		if loc, ok := data.Location(roomID); ok {
			b.WriteString(Capitalize(loc.Brief))
			b.WriteByte('\n')
			if len(loc.Exits) > 0 {
				dirs := make([]string, 0, len(loc.Exits))
				for dir := range loc.Exits {
					dirs = append(dirs, dir)
				}
				sort.Strings(dirs)
				fmt.Fprintf(&b, "Exits: %s\n", strings.Join(dirs, ", "))
			}
			if ground := events.GroundObjectNames(data, loc.Objects); len(ground) > 0 {
				fmt.Fprintf(&b, "On the ground: %s\n", events.JoinAnd(ground))
			}
		} else {
			fmt.Fprintf(&b, "Room %s\n", roomID)
		}
	}

	if sentence := events.OccupantSentence(occupants); sentence != "" {
		b.WriteString(sentence)
		b.WriteByte('\n')
	}
	return b.String()
}

// renderSidebar builds the status sidebar from the visible cards.
func renderSidebar(model *hud.Model) string {
	status := model.Snapshot()
	var b strings.Builder

	if model.Visible(hud.CardVitals) {
		if status.Hitpoints != nil {
			fmt.Fprintf(&b, "HP  %d/%d\n", status.Hitpoints.Current, status.Hitpoints.Max)
		}
		if status.SpellPoints != nil {
			fmt.Fprintf(&b, "SP  %d/%d\n", status.SpellPoints.Current, status.SpellPoints.Max)
		}
		b.WriteByte('\n')
	}
	if model.Visible(hud.CardDescription) && status.Description != "" {
		b.WriteString(status.Description)
		b.WriteString("\n\n")
	}
	if model.Visible(hud.CardInventory) {
		b.WriteString("Carrying:\n")
		if len(status.Inventory) == 0 {
			b.WriteString("  nothing\n")
		}
		for _, item := range status.Inventory {
			fmt.Fprintf(&b, "  %s\n", item)
		}
		b.WriteByte('\n')
	}
	if model.Visible(hud.CardSpellbook) && len(status.Spellbook) > 0 {
		b.WriteString("Spellbook:\n")
		for _, spell := range status.Spellbook {
			fmt.Fprintf(&b, "  %s\n", spell)
		}
		b.WriteByte('\n')
	}
	if model.Visible(hud.CardEffects) && len(status.Effects) > 0 {
		b.WriteString("Effects:\n")
		for _, effect := range status.Effects {
			fmt.Fprintf(&b, "  %s\n", effect)
		}
	}
	return b.String()
}
