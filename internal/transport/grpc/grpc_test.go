package grpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/service"
	"github.com/nadzzz/storevoice/internal/session"
	transportgrpc "github.com/nadzzz/storevoice/internal/transport/grpc"
)

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	m := service.New(service.Options{})
	tr := transportgrpc.New(0)
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, m) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		assert.NoError(t, <-done)
		_ = m.Close()
	})
	return conn
}

func TestClassify(t *testing.T) {
	c := transportgrpc.NewClient(dial(t))
	req := message.NewClassifyRequest("add the best rated item", session.Snapshot{
		Products: []session.Product{
			{ID: "p1", Name: "Trail Runner", Rating: 4.2},
			{ID: "p2", Name: "Studio Headphones", Rating: 4.8},
		},
		UserID: "u1",
	}, 0)

	resp, err := c.Classify(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, intent.AddToCartRating, resp.Intent)
	assert.Equal(t, "p2", resp.Data.ProductID)
}

func TestSessionCalls(t *testing.T) {
	c := transportgrpc.NewClient(dial(t))
	ctx := context.Background()

	page := session.PageCart
	require.NoError(t, c.UpdateContext(ctx, "kiosk-1", message.ContextUpdate{Page: &page}))

	res, err := c.Command(ctx, "kiosk-1", "what can I say")
	require.NoError(t, err)
	assert.Equal(t, intent.Help, res.Intent)
	assert.Contains(t, res.Response, "checkout")

	hist, err := c.History(ctx, "kiosk-1", 0)
	require.NoError(t, err)
	require.Len(t, hist.Entries, 1)
	assert.Equal(t, res.EntryID, hist.Entries[0].ID)

	require.NoError(t, c.EndSession(ctx, "kiosk-1"))
	err = c.EndSession(ctx, "kiosk-1")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestCommand_EmptyUtterance(t *testing.T) {
	c := transportgrpc.NewClient(dial(t))
	_, err := c.Command(context.Background(), "s1", "...")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	conn := dial(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: transportgrpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
