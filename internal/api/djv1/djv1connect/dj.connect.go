// Package djv1connect provides the Connect handler and client of djeve.v1.DJService.
package djv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	djv1 "github.com/osa030/djeve/internal/api/djv1"
)

// DJServiceName is the fully-qualified name of the DJService service.
const DJServiceName = "djeve.v1.DJService"

// Procedure paths of DJService.
const (
	DJServiceConnectProcedure    = "/djeve.v1.DJService/Connect"
	DJServiceDisconnectProcedure = "/djeve.v1.DJService/Disconnect"
	DJServiceGetStatusProcedure  = "/djeve.v1.DJService/GetStatus"
	DJServiceSubscribeProcedure  = "/djeve.v1.DJService/Subscribe"

	DJServiceSearchTracksProcedure = "/djeve.v1.DJService/SearchTracks"
)

// DJServiceHandler is implemented by the server side of DJService.
type DJServiceHandler interface {
	Connect(context.Context, *connect.Request[djv1.ConnectRequest]) (*connect.Response[djv1.ConnectResponse], error)
	Disconnect(context.Context, *connect.Request[djv1.DisconnectRequest]) (*connect.Response[djv1.DisconnectResponse], error)
	GetStatus(context.Context, *connect.Request[djv1.GetStatusRequest]) (*connect.Response[djv1.GetStatusResponse], error)
	Subscribe(context.Context, *connect.Request[djv1.SubscribeRequest], *connect.ServerStream[djv1.Notification]) error
	SearchTracks(context.Context, *connect.Request[djv1.SearchTracksRequest]) (*connect.Response[djv1.SearchTracksResponse], error)
}

// NewDJServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDJServiceHandler(svc DJServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	connectHandler := connect.NewUnaryHandler(DJServiceConnectProcedure, svc.Connect, opts...)
	disconnectHandler := connect.NewUnaryHandler(DJServiceDisconnectProcedure, svc.Disconnect, opts...)
	getStatusHandler := connect.NewUnaryHandler(DJServiceGetStatusProcedure, svc.GetStatus, opts...)
	subscribeHandler := connect.NewServerStreamHandler(DJServiceSubscribeProcedure, svc.Subscribe, opts...)
	searchTracksHandler := connect.NewUnaryHandler(DJServiceSearchTracksProcedure, svc.SearchTracks, opts...)

	return "/" + DJServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DJServiceConnectProcedure:
			connectHandler.ServeHTTP(w, r)
		case DJServiceDisconnectProcedure:
			disconnectHandler.ServeHTTP(w, r)
		case DJServiceGetStatusProcedure:
			getStatusHandler.ServeHTTP(w, r)
		case DJServiceSubscribeProcedure:
			subscribeHandler.ServeHTTP(w, r)
		case DJServiceSearchTracksProcedure:
			searchTracksHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// DJServiceClient is a client for DJService.
type DJServiceClient interface {
	Connect(context.Context, *connect.Request[djv1.ConnectRequest]) (*connect.Response[djv1.ConnectResponse], error)
	Disconnect(context.Context, *connect.Request[djv1.DisconnectRequest]) (*connect.Response[djv1.DisconnectResponse], error)
	GetStatus(context.Context, *connect.Request[djv1.GetStatusRequest]) (*connect.Response[djv1.GetStatusResponse], error)
	Subscribe(context.Context, *connect.Request[djv1.SubscribeRequest]) (*connect.ServerStreamForClient[djv1.Notification], error)
	SearchTracks(context.Context, *connect.Request[djv1.SearchTracksRequest]) (*connect.Response[djv1.SearchTracksResponse], error)
}

// NewDJServiceClient constructs a client for the server at baseURL.
func NewDJServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DJServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &djServiceClient{
		connect:    connect.NewClient[djv1.ConnectRequest, djv1.ConnectResponse](httpClient, baseURL+DJServiceConnectProcedure, opts...),
		disconnect: connect.NewClient[djv1.DisconnectRequest, djv1.DisconnectResponse](httpClient, baseURL+DJServiceDisconnectProcedure, opts...),
		getStatus:  connect.NewClient[djv1.GetStatusRequest, djv1.GetStatusResponse](httpClient, baseURL+DJServiceGetStatusProcedure, opts...),
		subscribe:  connect.NewClient[djv1.SubscribeRequest, djv1.Notification](httpClient, baseURL+DJServiceSubscribeProcedure, opts...),

		searchTracks: connect.NewClient[djv1.SearchTracksRequest, djv1.SearchTracksResponse](
			httpClient, baseURL+DJServiceSearchTracksProcedure, opts...),
	}
}

type djServiceClient struct {
	connect    *connect.Client[djv1.ConnectRequest, djv1.ConnectResponse]
	disconnect *connect.Client[djv1.DisconnectRequest, djv1.DisconnectResponse]
	getStatus  *connect.Client[djv1.GetStatusRequest, djv1.GetStatusResponse]
	subscribe  *connect.Client[djv1.SubscribeRequest, djv1.Notification]

	searchTracks *connect.Client[djv1.SearchTracksRequest, djv1.SearchTracksResponse]
}

func (c *djServiceClient) Connect(ctx context.Context, req *connect.Request[djv1.ConnectRequest]) (*connect.Response[djv1.ConnectResponse], error) {
	return c.connect.CallUnary(ctx, req)
}

func (c *djServiceClient) Disconnect(ctx context.Context, req *connect.Request[djv1.DisconnectRequest]) (*connect.Response[djv1.DisconnectResponse], error) {
	return c.disconnect.CallUnary(ctx, req)
}

func (c *djServiceClient) GetStatus(ctx context.Context, req *connect.Request[djv1.GetStatusRequest]) (*connect.Response[djv1.GetStatusResponse], error) {
	return c.getStatus.CallUnary(ctx, req)
}

func (c *djServiceClient) Subscribe(ctx context.Context, req *connect.Request[djv1.SubscribeRequest]) (*connect.ServerStreamForClient[djv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

func (c *djServiceClient) SearchTracks(ctx context.Context, req *connect.Request[djv1.SearchTracksRequest]) (*connect.Response[djv1.SearchTracksResponse], error) {
	return c.searchTracks.CallUnary(ctx, req)
}
