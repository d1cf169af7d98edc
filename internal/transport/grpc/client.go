package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nadzzz/storevoice/internal/message"
)

// Client calls the Voice service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(codecName))
}

// Classify classifies a stateless request.
func (c *Client) Classify(ctx context.Context, req message.ClassifyRequest) (*message.ClassifyResponse, error) {
	out := new(message.ClassifyResponse)
	if err := c.invoke(ctx, "Classify", &req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Command runs a text command in a session.
func (c *Client) Command(ctx context.Context, sessionID, text string) (*message.CommandResult, error) {
	out := new(message.CommandResult)
	if err := c.invoke(ctx, "Command", &SessionCommand{SessionID: sessionID, Text: text}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContext applies a view update to a session.
func (c *Client) UpdateContext(ctx context.Context, sessionID string, update message.ContextUpdate) error {
	return c.invoke(ctx, "UpdateContext", &SessionContext{SessionID: sessionID, Update: update}, new(Empty))
}

// History returns up to limit entries, most recent first.
func (c *Client) History(ctx context.Context, sessionID string, limit int) (*HistoryResponse, error) {
	out := new(HistoryResponse)
	if err := c.invoke(ctx, "History", &HistoryRequest{SessionID: sessionID, Limit: limit}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EndSession closes a session.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.invoke(ctx, "EndSession", &SessionRef{SessionID: sessionID}, new(Empty))
}
