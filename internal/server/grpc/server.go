package internalgrpc

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/lomoval/weekcal/api"
	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/identity"
	"github.com/lomoval/weekcal/internal/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	errInternalServerError = "internal server error"
	errEventNotFound       = "event not found"
	errIDNotProvided       = "id is not provided"
)

type Config struct {
	Host  string
	Port  int
	Owner string
}

type Server struct {
	grpcServer *grpc.Server
	app        *app.App
	addr       string
	owner      string
}

func NewServer(config Config, calendar *app.App) *Server {
	s := &Server{
		app:   calendar,
		addr:  net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		owner: config.Owner,
	}
	if s.owner == "" {
		s.owner = identity.DefaultOwner
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(loggingHandler, ownerHandler(s.owner)))
	RegisterEventsServer(s.grpcServer, s)
	return s
}

func (s *Server) Start(_ context.Context) error {
	lsn, err := net.Listen("tcp", s.addr)
	if err != nil {
		log.Errorf("failed to listen grpc endpoint: %v", err)
		return err
	}
	return s.Serve(lsn)
}

func (s *Server) Serve(lsn net.Listener) error {
	log.Printf("starting grpc server on %s", lsn.Addr())
	return s.grpcServer.Serve(lsn)
}

func (s *Server) Stop(_ context.Context) error {
	s.grpcServer.GracefulStop()
	return nil
}

func (s *Server) ListEvents(ctx context.Context, r *api.RangeRequest) (*api.EventsResponse, error) {
	events, err := s.app.ListInRange(ctx, owner(ctx), r.Start, r.End)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.EventsResponse{Events: api.FromStorageList(events)}, nil
}

func (s *Server) CreateEvent(ctx context.Context, r *api.EventCreate) (*api.CreateResponse, error) {
	e, err := s.app.CreateEvent(ctx, owner(ctx), app.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		Color:       r.Color,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.CreateResponse{Success: true, Message: "Event created successfully", Data: api.FromStorage(e)}, nil
}

func (s *Server) UpdateEvent(ctx context.Context, r *api.UpdateRequest) (*api.Event, error) {
	if r.ID == "" {
		return nil, status.Error(codes.InvalidArgument, errIDNotProvided)
	}
	e, err := s.app.UpdateEvent(ctx, r.ID, owner(ctx), app.UpdateInput{
		Title:       r.Patch.Title,
		Description: r.Patch.Description,
		Start:       r.Patch.Start,
		End:         r.Patch.End,
		Color:       r.Patch.Color,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	ev := api.FromStorage(e)
	return &ev, nil
}

func (s *Server) RemoveEvent(ctx context.Context, r *api.RemoveRequest) (*api.MessageResponse, error) {
	if r.ID == "" {
		return nil, status.Error(codes.InvalidArgument, errIDNotProvided)
	}
	if _, err := s.app.RemoveEvent(ctx, r.ID, owner(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &api.MessageResponse{Message: "Deleted"}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFoundEvent):
		return status.Error(codes.NotFound, errEventNotFound)
	case errors.Is(err, app.ErrMissingField), errors.Is(err, app.ErrInvalidRange), errors.Is(err, app.ErrInvalidField):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		log.Errorf("grpc request failed: %v", err)
		return status.Error(codes.Internal, errInternalServerError)
	}
}

func owner(ctx context.Context) string {
	id, ok := identity.Owner(ctx)
	if !ok {
		return identity.DefaultOwner
	}
	return id
}

func loggingHandler(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.WithField("method", info.FullMethod).WithField("code", status.Code(err).String()).
		WithField("latency", time.Since(start)).
		Info("grpc request processed")
	return resp, err
}

func ownerHandler(ownerID string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		return handler(identity.WithOwner(ctx, ownerID), req)
	}
}
