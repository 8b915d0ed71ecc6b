package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	djv1 "github.com/osa030/djeve/internal/api/djv1"
	"github.com/osa030/djeve/internal/api/djv1/djv1connect"
	"github.com/osa030/djeve/internal/app/notification"
	"github.com/osa030/djeve/internal/app/session"
	"github.com/osa030/djeve/internal/domain/request"
	"github.com/osa030/djeve/internal/domain/track"
)

// SessionController is the part of the session manager exposed over RPC.
type SessionController interface {
	Connect(streamerID, prefix string) error
	Disconnect()
	GetStatus() session.Status
}

// Catalog looks up tracks for a song request.
type Catalog interface {
	SearchRequest(ctx context.Context, req request.SongRequest) ([]track.Track, error)
}

// DJService implements the DJService RPC.
type DJService struct {
	session  SessionController
	notifier *notification.Manager
	catalog  Catalog
}

// NewDJService creates a new DJService. catalog may be nil, in which case
// SearchTracks fails with CodeUnimplemented.
func NewDJService(s SessionController, notifier *notification.Manager, catalog Catalog) *DJService {
	return &DJService{
		session:  s,
		notifier: notifier,
		catalog:  catalog,
	}
}

// Ensure DJService implements the interface.
var _ djv1connect.DJServiceHandler = (*DJService)(nil)

// Connect starts a chat session.
func (s *DJService) Connect(
	ctx context.Context,
	req *connect.Request[djv1.ConnectRequest],
) (*connect.Response[djv1.ConnectResponse], error) {
	if err := s.session.Connect(req.Msg.StreamerID, req.Msg.Prefix); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&djv1.ConnectResponse{Success: true}), nil
}

// Disconnect ends the chat session.
func (s *DJService) Disconnect(
	ctx context.Context,
	req *connect.Request[djv1.DisconnectRequest],
) (*connect.Response[djv1.DisconnectResponse], error) {
	s.session.Disconnect()
	return connect.NewResponse(&djv1.DisconnectResponse{Success: true}), nil
}

// GetStatus returns the current session status.
func (s *DJService) GetStatus(
	ctx context.Context,
	req *connect.Request[djv1.GetStatusRequest],
) (*connect.Response[djv1.GetStatusResponse], error) {
	return connect.NewResponse(toStatusResponse(s.session.GetStatus())), nil
}

// Subscribe streams the current status followed by every notification.
func (s *DJService) Subscribe(
	ctx context.Context,
	req *connect.Request[djv1.SubscribeRequest],
	stream *connect.ServerStream[djv1.Notification],
) error {
	// Subscribe first so nothing emitted after the snapshot is missed
	sub := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(sub.ID)

	initial := &djv1.Notification{
		Type:         djv1.NotificationTypeInitialState,
		SequenceNo:   s.notifier.CurrentSequenceNo(),
		InitialState: toStatusResponse(s.session.GetStatus()),
	}
	if err := stream.Send(initial); err != nil {
		return err
	}
	zlog.Debug().Msgf("subscriber attached: subscription_id=%s", sub.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := stream.Send(toNotification(ev)); err != nil {
				zlog.Debug().Msgf("subscriber detached: subscription_id=%s error=%v", sub.ID, err)
				return err
			}
		}
	}
}

// SearchTracks looks up catalog candidates for a song request.
func (s *DJService) SearchTracks(
	ctx context.Context,
	req *connect.Request[djv1.SearchTracksRequest],
) (*connect.Response[djv1.SearchTracksResponse], error) {
	if s.catalog == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("catalog lookup is not configured"))
	}

	sr := request.SongRequest{
		RequestText: strings.TrimSpace(req.Msg.RequestText),
		Artist:      strings.TrimSpace(req.Msg.Artist),
		SongTitle:   strings.TrimSpace(req.Msg.SongTitle),
	}
	if sr.SongTitle == "" {
		sr.SongTitle = sr.RequestText
	}
	if sr.SongTitle == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("song_title or request_text is required"))
	}

	tracks, err := s.catalog.SearchRequest(ctx, sr)
	if err != nil {
		zlog.Warn().Msgf("catalog lookup failed: query=%q error=%v", sr.RequestText, err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	resp := &djv1.SearchTracksResponse{Tracks: make([]*djv1.Track, 0, len(tracks))}
	for _, t := range tracks {
		resp.Tracks = append(resp.Tracks, &djv1.Track{
			ID:          t.ID,
			Name:        t.Name,
			Artists:     t.Artists,
			Album:       t.Album,
			AlbumArtURL: t.AlbumArtURL,
			DurationMs:  t.Duration.Milliseconds(),
			URL:         t.URL,
			Explicit:    t.Explicit,
		})
	}
	return connect.NewResponse(resp), nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidConfig):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toStatusResponse(st session.Status) *djv1.GetStatusResponse {
	return &djv1.GetStatusResponse{
		IsConnected: st.Connected,
		State:       st.State.String(),
		StreamerID:  st.StreamerID,
		Prefix:      st.Prefix,
	}
}

func toNotification(ev notification.Event) *djv1.Notification {
	if ev.Kind == notification.KindSongRequest && ev.Request != nil {
		r := ev.Request
		return &djv1.Notification{
			Type:       djv1.NotificationTypeSongRequest,
			SequenceNo: ev.SequenceNo,
			Request: &djv1.SongRequest{
				Timestamp:   r.Timestamp,
				Username:    r.Username,
				UserID:      r.UserID,
				RawComment:  r.RawComment,
				RequestText: r.RequestText,
				Artist:      r.Artist,
				SongTitle:   r.SongTitle,
			},
		}
	}
	return &djv1.Notification{
		Type:       djv1.NotificationTypeConnectionStatus,
		SequenceNo: ev.SequenceNo,
		Status: &djv1.ConnectionStatus{
			Kind:      string(ev.Kind),
			Message:   ev.Message,
			Timestamp: ev.Timestamp,
		},
	}
}
