package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"

	djv1 "github.com/osa030/djeve/internal/api/djv1"
	"github.com/osa030/djeve/internal/api/djv1/djv1connect"
	"github.com/osa030/djeve/internal/domain/request"
	"github.com/osa030/djeve/internal/domain/requestlist"
)

// watch prints notifications until interrupted, then the collected requests.
func watch(ctx context.Context, client djv1connect.DJServiceClient, out io.Writer, dump bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := client.Subscribe(ctx, connect.NewRequest(&djv1.SubscribeRequest{}))
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Fprintln(out, "Subscribed to notifications. Press Ctrl+C to exit.")

	w := newWatcher(out, dump)
	for stream.Receive() {
		w.handle(stream.Msg())
	}
	w.finish()

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// watcher renders notifications as text and keeps the request list.
type watcher struct {
	out  io.Writer
	dump bool
	list *requestlist.List
}

func newWatcher(out io.Writer, dump bool) *watcher {
	return &watcher{
		out:  out,
		dump: dump,
		list: requestlist.New(),
	}
}

func (w *watcher) handle(n *djv1.Notification) {
	switch n.Type {
	case djv1.NotificationTypeInitialState:
		if n.InitialState != nil {
			fmt.Fprintln(w.out, formatInitialState(n.InitialState))
		}
	case djv1.NotificationTypeConnectionStatus:
		if n.Status != nil {
			fmt.Fprintln(w.out, formatStatus(n.Status))
		}
	case djv1.NotificationTypeSongRequest:
		if n.Request == nil {
			return
		}
		req := toRequest(n.Request)
		w.list.Append(req)
		fmt.Fprintln(w.out, requestlist.FormatLine(w.list.Len(), req))
		if w.dump {
			fmt.Fprintf(w.out, "--- %d request(s) ---\n%s\n", w.list.Len(), w.list.ToDisplayText())
		}
	default:
		fmt.Fprintf(w.out, "unknown notification: type=%s\n", n.Type)
	}
}

func (w *watcher) finish() {
	if w.list.Len() == 0 {
		return
	}
	fmt.Fprintln(w.out, "\n=== SONG REQUESTS ===")
	fmt.Fprintln(w.out, w.list.ToDisplayText())
}

func formatInitialState(s *djv1.GetStatusResponse) string {
	if s.StreamerID == "" {
		return fmt.Sprintf("state: %s", s.State)
	}
	return fmt.Sprintf("state: %s (streamer %s, prefix %q)", s.State, s.StreamerID, s.Prefix)
}

func formatStatus(s *djv1.ConnectionStatus) string {
	return fmt.Sprintf("[%s] %s: %s", s.Timestamp.Local().Format("15:04:05"), s.Kind, s.Message)
}

// toRequest converts a wire song request to the domain entity.
func toRequest(r *djv1.SongRequest) request.SongRequest {
	return request.SongRequest{
		Timestamp:   r.Timestamp,
		Username:    r.Username,
		UserID:      r.UserID,
		RawComment:  r.RawComment,
		RequestText: r.RequestText,
		Artist:      r.Artist,
		SongTitle:   r.SongTitle,
	}
}
