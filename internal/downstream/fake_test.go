package downstream

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/resilience"
)

type handlerFunc func(req *dynamicpb.Message) (*dynamicpb.Message, error)

type fakeServer struct {
	conn   *grpc.ClientConn
	health *health.Server
	opts   []grpc.DialOption
}

// startFake serves the given methods over an in-memory listener.
func startFake(t *testing.T, handlers map[string]handlerFunc) *fakeServer {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	healthSrv := health.NewServer()
	srv := grpc.NewServer(grpc.UnknownServiceHandler(func(_ any, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		types, known := MethodTypes[method]
		h, served := handlers[method]
		if !known || !served {
			return status.Errorf(codes.Unimplemented, "method %s not served", method)
		}
		req := dynamicpb.NewMessage(types[0])
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		resp, err := h(req)
		if err != nil {
			return err
		}
		return stream.SendMsg(resp)
	}))
	grpc_health_v1.RegisterHealthServer(srv, healthSrv)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	opts := []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &fakeServer{conn: conn, health: healthSrv, opts: opts}
}

func testBreaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  100,
		ResetAfter: 0,
		IsFailure:  IsTransportFailure,
	})
}
