package gateway

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtestcore/internal/model"
)

type fakeEngine struct {
	nextId    model.OrderId
	cancelled []model.OrderId
}

func (f *fakeEngine) SubmitBuy(model.AssetId, model.Price, model.Quantity, model.TimeInForce, model.OrderType) (model.OrderId, error) {
	f.nextId++
	return f.nextId, nil
}

func (f *fakeEngine) SubmitSell(model.AssetId, model.Price, model.Quantity, model.TimeInForce, model.OrderType) (model.OrderId, error) {
	f.nextId++
	return f.nextId, nil
}

func (f *fakeEngine) Cancel(_ model.AssetId, orderId model.OrderId) {
	f.cancelled = append(f.cancelled, orderId)
}

func startTestServer(t *testing.T, engine Engine) (addr string, stop func()) {
	t.Helper()
	srv := New("127.0.0.1", 0, engine, zerolog.Nop())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	srv.port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond) // let the listener bind

	return fmt.Sprintf("127.0.0.1:%d", port), func() {
		cancel()
		<-done
	}
}

func TestSubmitOrderRoundTrip(t *testing.T) {
	engine := &fakeEngine{}
	addr, stop := startTestServer(t, engine)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, writeFrame(conn, MsgSubmitOrder, SubmitOrderRequest{
		AssetId: 1, Side: model.Bid, Price: 100, Quantity: 1, TIF: model.GTC, Type: model.Limit,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, body, err := readFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, MsgOrderAck, msgType)
	assert.Contains(t, string(body), "OrderId")
}

func TestCancelOrderDispatchesToEngine(t *testing.T) {
	engine := &fakeEngine{}
	addr, stop := startTestServer(t, engine)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, writeFrame(conn, MsgCancelOrder, CancelOrderRequest{AssetId: 1, OrderId: 7}))
	time.Sleep(100 * time.Millisecond)

	assert.Contains(t, engine.cancelled, model.OrderId(7))
}
