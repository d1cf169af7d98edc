// Package grpc implements the gRPC transport for storevoice.
//
// The Voice service is described by a hand-written ServiceDesc and carries
// the message package's JSON types through a registered "json" codec, so
// clients in any language can call it without generated stubs. The standard
// gRPC health service is registered alongside it.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/storevoice/internal/engine"
	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/service"
	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "storevoice.v1.Voice"

// SessionCommand runs a text command in a session.
type SessionCommand struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// SessionContext updates a session's view state.
type SessionContext struct {
	SessionID string                `json:"sessionId"`
	Update    message.ContextUpdate `json:"context"`
}

// SessionRef names a session.
type SessionRef struct {
	SessionID string `json:"sessionId"`
}

// HistoryRequest asks for a session's most recent commands.
type HistoryRequest struct {
	SessionID string `json:"sessionId"`
	Limit     int    `json:"limit,omitempty"`
}

// HistoryResponse lists commands, most recent first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// Empty is returned by calls without a result.
type Empty struct{}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, svc)
}

// Serve serves svc on an existing listener until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.server = grpc.NewServer()
	t.server.RegisterService(&serviceDesc, &server{svc: svc})

	t.health = health.NewServer()
	t.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(t.server, t.health)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

// voiceServer is the handler type checked by RegisterService.
type voiceServer interface {
	classify(context.Context, *message.ClassifyRequest) (*message.ClassifyResponse, error)
	command(context.Context, *SessionCommand) (*message.CommandResult, error)
	updateContext(context.Context, *SessionContext) (*Empty, error)
	history(context.Context, *HistoryRequest) (*HistoryResponse, error)
	endSession(context.Context, *SessionRef) (*Empty, error)
}

type server struct {
	svc transport.Service
}

func (s *server) classify(ctx context.Context, req *message.ClassifyRequest) (*message.ClassifyResponse, error) {
	resp := s.svc.Classify(ctx, *req)
	return &resp, nil
}

func (s *server) command(ctx context.Context, req *SessionCommand) (*message.CommandResult, error) {
	res, err := s.svc.Command(ctx, req.SessionID, message.CommandRequest{Text: req.Text})
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func (s *server) updateContext(ctx context.Context, req *SessionContext) (*Empty, error) {
	if err := s.svc.UpdateContext(ctx, req.SessionID, req.Update); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *server) history(ctx context.Context, req *HistoryRequest) (*HistoryResponse, error) {
	entries, err := s.svc.History(ctx, req.SessionID, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return &HistoryResponse{Entries: entries}, nil
}

func (s *server) endSession(ctx context.Context, req *SessionRef) (*Empty, error) {
	if err := s.svc.EndSession(ctx, req.SessionID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		code = codes.NotFound
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, engine.ErrEmptyUtterance):
		code = codes.InvalidArgument
	case errors.Is(err, speech.ErrAlreadyListening):
		code = codes.FailedPrecondition
	case errors.Is(err, service.ErrRecognitionUnavailable):
		code = codes.Unimplemented
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](name string, call func(voiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(voiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(voiceServer), ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*voiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Classify", voiceServer.classify),
		unary("Command", voiceServer.command),
		unary("UpdateContext", voiceServer.updateContext),
		unary("History", voiceServer.history),
		unary("EndSession", voiceServer.endSession),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storevoice/v1/voice.proto",
}
