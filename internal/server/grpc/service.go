package internalgrpc

import (
	"context"

	"github.com/lomoval/weekcal/api"
	"google.golang.org/grpc"
)

const serviceName = "calendar.Events"

type EventsServer interface {
	ListEvents(context.Context, *api.RangeRequest) (*api.EventsResponse, error)
	CreateEvent(context.Context, *api.EventCreate) (*api.CreateResponse, error)
	UpdateEvent(context.Context, *api.UpdateRequest) (*api.Event, error)
	RemoveEvent(context.Context, *api.RemoveRequest) (*api.MessageResponse, error)
}

var eventsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EventsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListEvents", Handler: unaryHandler("ListEvents", EventsServer.ListEvents)},
		{MethodName: "CreateEvent", Handler: unaryHandler("CreateEvent", EventsServer.CreateEvent)},
		{MethodName: "UpdateEvent", Handler: unaryHandler("UpdateEvent", EventsServer.UpdateEvent)},
		{MethodName: "RemoveEvent", Handler: unaryHandler("RemoveEvent", EventsServer.RemoveEvent)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calendar/events.json",
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// unaryHandler adapts a typed method to the generic shape grpc dispatches to.
func unaryHandler[Req, Resp any](
	method string,
	call func(EventsServer, context.Context, *Req) (*Resp, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(
		srv interface{},
		ctx context.Context,
		dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EventsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EventsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterEventsServer(s grpc.ServiceRegistrar, srv EventsServer) {
	s.RegisterService(&eventsServiceDesc, srv)
}

// Client calls the events service over any grpc connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) ListEvents(ctx context.Context, in *api.RangeRequest) (*api.EventsResponse, error) {
	out := new(api.EventsResponse)
	if err := c.invoke(ctx, "ListEvents", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, in *api.EventCreate) (*api.CreateResponse, error) {
	out := new(api.CreateResponse)
	if err := c.invoke(ctx, "CreateEvent", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, in *api.UpdateRequest) (*api.Event, error) {
	out := new(api.Event)
	if err := c.invoke(ctx, "UpdateEvent", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveEvent(ctx context.Context, in *api.RemoveRequest) (*api.MessageResponse, error) {
	out := new(api.MessageResponse)
	if err := c.invoke(ctx, "RemoveEvent", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.conn.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}
