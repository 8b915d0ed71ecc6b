package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	zlog "github.com/rs/zerolog/log"

	djv1 "github.com/osa030/djeve/internal/api/djv1"
	"github.com/osa030/djeve/internal/api/djv1/djv1connect"
	"github.com/osa030/djeve/internal/domain/request"
	"github.com/osa030/djeve/internal/domain/requestlist"
	"github.com/osa030/djeve/internal/domain/track"
	"github.com/osa030/djeve/internal/infra/prefs"
)

const boardHelp = "d: remove  c: clear  y: print list on exit  l: lookup  t: theme  q: quit"

// catalog looks up tracks for a song request.
type catalog interface {
	SearchRequest(ctx context.Context, req request.SongRequest) ([]track.Track, error)
}

// rpcCatalog searches tracks through the server.
type rpcCatalog struct {
	client djv1connect.DJServiceClient
}

func (c rpcCatalog) SearchRequest(ctx context.Context, req request.SongRequest) ([]track.Track, error) {
	resp, err := c.client.SearchTracks(ctx, connect.NewRequest(&djv1.SearchTracksRequest{
		RequestText: req.RequestText,
		Artist:      req.Artist,
		SongTitle:   req.SongTitle,
	}))
	if err != nil {
		if connect.CodeOf(err) == connect.CodeUnimplemented {
			return nil, errors.New("track lookup is not configured on the server")
		}
		return nil, err
	}
	tracks := make([]track.Track, 0, len(resp.Msg.Tracks))
	for _, t := range resp.Msg.Tracks {
		tracks = append(tracks, track.Track{
			ID:          t.ID,
			Name:        t.Name,
			Artists:     t.Artists,
			Album:       t.Album,
			AlbumArtURL: t.AlbumArtURL,
			Duration:    time.Duration(t.DurationMs) * time.Millisecond,
			URL:         t.URL,
			Explicit:    t.Explicit,
		})
	}
	return tracks, nil
}

// board is the interactive request list. All fields except app are
// touched only from the tview event loop.
type board struct {
	ctx     context.Context
	app     *tview.Application
	client  djv1connect.DJServiceClient
	store   *prefs.Store
	catalog catalog

	list  *requestlist.List
	theme prefs.Theme
	yank  bool

	root   *tview.Flex
	header *tview.TextView
	table  *tview.Table
	detail *tview.TextView
	footer *tview.TextView
}

func runBoard(ctx context.Context, client djv1connect.DJServiceClient, store *prefs.Store) error {
	theme, err := store.Theme(ctx)
	if err != nil {
		zlog.Warn().Msgf("failed to read theme: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := newBoard(ctx, client, store, rpcCatalog{client: client}, theme)
	go b.subscribe()

	if err := b.app.Run(); err != nil {
		return err
	}
	cancel()

	if b.yank && b.list.Len() > 0 {
		fmt.Println(b.list.ToDisplayText())
	}
	return nil
}

func newBoard(ctx context.Context, client djv1connect.DJServiceClient, store *prefs.Store, cat catalog, theme prefs.Theme) *board {
	b := &board{
		ctx:     ctx,
		app:     tview.NewApplication(),
		client:  client,
		store:   store,
		catalog: cat,
		list:    requestlist.New(),
		theme:   theme,
	}

	b.header = tview.NewTextView().SetDynamicColors(true)
	b.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	b.table.SetBorder(true).SetTitle(" Song Requests ")
	b.table.SetSelectionChangedFunc(func(row, column int) {
		b.showSelected()
	})
	b.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	b.detail.SetBorder(true).SetTitle(" Detail ")
	b.footer = tview.NewTextView().SetText(boardHelp)

	b.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(b.table, 0, 3, true).
		AddItem(b.detail, 0, 1, false).
		AddItem(b.footer, 1, 0, false)

	b.app.SetRoot(b.root, true).SetFocus(b.table)
	b.app.SetInputCapture(b.handleKey)

	b.setStatus("connecting to server...")
	b.applyTheme()
	b.refreshTable()
	return b
}

// subscribe feeds notifications into the event loop until the stream ends.
func (b *board) subscribe() {
	stream, err := b.client.Subscribe(b.ctx, connect.NewRequest(&djv1.SubscribeRequest{}))
	if err != nil {
		b.app.QueueUpdateDraw(func() {
			b.setStatus(fmt.Sprintf("subscribe failed: %v", err))
		})
		return
	}
	defer stream.Close()

	for stream.Receive() {
		n := stream.Msg()
		b.app.QueueUpdateDraw(func() {
			b.handleNotification(n)
		})
	}
	if err := stream.Err(); err != nil && b.ctx.Err() == nil {
		b.app.QueueUpdateDraw(func() {
			b.setStatus(fmt.Sprintf("stream closed: %v", err))
		})
	}
}

func (b *board) handleNotification(n *djv1.Notification) {
	switch n.Type {
	case djv1.NotificationTypeInitialState:
		if n.InitialState != nil {
			b.setStatus(formatInitialState(n.InitialState))
		}
	case djv1.NotificationTypeConnectionStatus:
		if n.Status != nil {
			b.setStatus(formatStatus(n.Status))
		}
	case djv1.NotificationTypeSongRequest:
		if n.Request != nil {
			b.list.Append(toRequest(n.Request))
			b.refreshTable()
		}
	}
}

func (b *board) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	switch ev.Rune() {
	case 'd':
		b.removeSelected()
	case 'c':
		b.list.Clear()
		b.refreshTable()
	case 'y':
		b.yank = !b.yank
		b.updateFooter()
	case 'l':
		b.lookupSelected()
	case 't':
		b.cycleTheme()
	case 'q':
		b.app.Stop()
	default:
		return ev
	}
	return nil
}

// selectedIndex returns the list index of the selected row, or -1.
func (b *board) selectedIndex() int {
	row, _ := b.table.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= b.list.Len() {
		return -1
	}
	return idx
}

func (b *board) removeSelected() {
	idx := b.selectedIndex()
	if idx < 0 {
		return
	}
	if err := b.list.RemoveAt(idx); err != nil {
		b.detail.SetText(err.Error())
		return
	}
	b.refreshTable()
}

func (b *board) lookupSelected() {
	idx := b.selectedIndex()
	if idx < 0 {
		return
	}
	if b.catalog == nil {
		b.detail.SetText("catalog lookup is not configured")
		return
	}
	req, err := b.list.At(idx)
	if err != nil {
		return
	}

	b.detail.SetText(fmt.Sprintf("searching %q...", req.RequestText))
	go func() {
		tracks, err := b.catalog.SearchRequest(b.ctx, req)
		b.app.QueueUpdateDraw(func() {
			b.detail.SetText(formatTracks(req, tracks, err))
		})
	}()
}

func (b *board) cycleTheme() {
	b.theme = b.theme.Next()
	if err := b.store.SetTheme(b.ctx, b.theme); err != nil {
		zlog.Warn().Msgf("failed to save theme: %v", err)
	}
	b.applyTheme()
	b.refreshTable()
}

func (b *board) setStatus(text string) {
	b.header.SetText(tview.Escape(text))
}

func (b *board) updateFooter() {
	text := boardHelp
	if b.yank {
		text += "  [list will be printed on exit]"
	}
	b.footer.SetText(text)
}

func (b *board) applyTheme() {
	p := paletteFor(b.theme)

	for _, tv := range []*tview.TextView{b.header, b.detail, b.footer} {
		tv.SetBackgroundColor(p.Background)
		tv.SetTextColor(p.Text)
	}
	b.footer.SetTextColor(p.Muted)
	b.header.SetTextColor(p.Accent)

	b.table.SetBackgroundColor(p.Background)
	b.table.SetBorderColor(p.Accent).SetTitleColor(p.Accent)
	b.table.SetSelectedStyle(tcell.StyleDefault.Background(p.Accent).Foreground(p.Background))
	b.detail.SetBorderColor(p.Muted).SetTitleColor(p.Muted)
	b.root.SetBackgroundColor(p.Background)
}

// refreshTable redraws the table from the list and keeps the selection in range.
func (b *board) refreshTable() {
	p := paletteFor(b.theme)
	row, _ := b.table.GetSelection()

	b.table.Clear()
	for col, title := range []string{"#", "Time", "User", "Request"} {
		b.table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(p.Accent).
			SetSelectable(false))
	}
	for i, req := range b.list.Items() {
		r := i + 1
		b.table.SetCell(r, 0, tview.NewTableCell(fmt.Sprintf("%d", r)).SetTextColor(p.Muted))
		b.table.SetCell(r, 1, tview.NewTableCell(req.Timestamp.Local().Format("15:04:05")).SetTextColor(p.Muted))
		b.table.SetCell(r, 2, tview.NewTableCell(tview.Escape(req.Username)).SetTextColor(p.Text))
		b.table.SetCell(r, 3, tview.NewTableCell(tview.Escape(req.RequestText)).SetTextColor(p.Text).SetExpansion(1))
	}

	n := b.list.Len()
	b.table.SetTitle(fmt.Sprintf(" Song Requests (%d) ", n))
	switch {
	case n == 0:
		b.table.Select(0, 0)
	case row < 1:
		b.table.Select(1, 0)
	case row > n:
		b.table.Select(n, 0)
	}
	b.showSelected()
}

func (b *board) showSelected() {
	idx := b.selectedIndex()
	if idx < 0 {
		b.detail.SetText("")
		return
	}
	req, err := b.list.At(idx)
	if err != nil {
		return
	}
	b.detail.SetText(tview.Escape(formatRequestDetail(req)))
}

func formatRequestDetail(req request.SongRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", req.Username, req.UserID)
	if req.HasArtist() {
		fmt.Fprintf(&sb, "Artist: %s\nTitle:  %s\n", req.Artist, req.SongTitle)
	} else {
		fmt.Fprintf(&sb, "Title:  %s\n", req.SongTitle)
	}
	fmt.Fprintf(&sb, "Raw:    %s", req.RawComment)
	return sb.String()
}

func formatTracks(req request.SongRequest, tracks []track.Track, err error) string {
	if err != nil {
		return tview.Escape(fmt.Sprintf("lookup failed: %v", err))
	}
	if len(tracks) == 0 {
		return tview.Escape(fmt.Sprintf("no catalog match for %q", req.RequestText))
	}
	var sb strings.Builder
	for i, t := range tracks {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, t.Label(), t.URL)
	}
	return tview.Escape(strings.TrimRight(sb.String(), "\n"))
}
