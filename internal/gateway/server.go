package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"backtestcore/internal/model"
)

const defaultNWorkers = 10

// Engine is the subset of BacktestEngine's public API the gateway
// drives on behalf of a remote strategy.
type Engine interface {
	SubmitBuy(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error)
	SubmitSell(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error)
	Cancel(assetId model.AssetId, orderId model.OrderId)
}

// session is one connected TCP client, identified by a uuid correlation
// id rather than its network address (the core's own OrderId stays a
// monotonic uint64; this id never touches the matching path).
type session struct {
	id   string
	conn net.Conn
}

// Server is the TCP control-plane adapter: it accepts connections, reads
// framed submit/cancel requests off them via a worker pool, and can
// broadcast OrderUpdate/Fill reports back to every connected session.
type Server struct {
	address string
	port    int
	engine  Engine
	pool    *workerPool
	logger  zerolog.Logger

	cancel context.CancelFunc

	sessionsLock sync.Mutex
	sessions     map[string]*session
}

func New(address string, port int, engine Engine, logger zerolog.Logger) *Server {
	return &Server{
		address:  address,
		port:     port,
		engine:   engine,
		pool:     newWorkerPool(defaultNWorkers, logger),
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Shutdown stops the accept loop and every worker.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Run blocks, accepting connections until ctx is cancelled or Shutdown
// is called.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}
	defer listener.Close()

	// Accept does not observe ctx itself once blocked, so closing the
	// listener is what actually unblocks the loop below on shutdown.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.setup(t, s.handleTask)
		return nil
	})

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("gateway listening")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return t.Wait()
				default:
				}
				s.logger.Error().Err(err).Msg("gateway accept failed")
				continue
			}
			sess := s.addSession(conn)
			s.logger.Info().Str("session", sess.id).Str("remote", conn.RemoteAddr().String()).Msg("strategy connected")
			s.pool.addTask(sess)
		}
	}
}

func (s *Server) addSession(conn net.Conn) *session {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	sess := &session{id: uuid.New().String(), conn: conn}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) removeSession(id string) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, id)
}

// handleTask reads exactly one framed request off a session's
// connection, dispatches it, and re-queues the session so the next
// request (from this or another session) gets a worker.
func (s *Server) handleTask(t *tomb.Tomb, task any) error {
	sess, ok := task.(*session)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		return nil
	default:
	}

	_ = sess.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	msgType, body, err := readFrame(sess.conn)
	if err != nil {
		s.logger.Info().Str("session", sess.id).Err(err).Msg("session closed")
		s.removeSession(sess.id)
		sess.conn.Close()
		return nil
	}

	if err := s.dispatch(sess, msgType, body); err != nil {
		s.logger.Warn().Str("session", sess.id).Err(err).Msg("gateway request failed")
		_ = writeFrame(sess.conn, MsgError, ErrorReport{Message: err.Error()})
	}

	s.pool.addTask(sess)
	return nil
}

func (s *Server) dispatch(sess *session, msgType MessageType, body []byte) error {
	switch msgType {
	case MsgSubmitOrder:
		var req SubmitOrderRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return err
		}
		var orderId model.OrderId
		var err error
		if req.Side == model.Bid {
			orderId, err = s.engine.SubmitBuy(req.AssetId, req.Price, req.Quantity, req.TIF, req.Type)
		} else {
			orderId, err = s.engine.SubmitSell(req.AssetId, req.Price, req.Quantity, req.TIF, req.Type)
		}
		if err != nil {
			return err
		}
		return writeFrame(sess.conn, MsgOrderAck, OrderAck{OrderId: orderId})
	case MsgCancelOrder:
		var req CancelOrderRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return err
		}
		s.engine.Cancel(req.AssetId, req.OrderId)
		return nil
	default:
		return ErrInvalidMessageType
	}
}

// BroadcastOrderUpdate streams an OrderUpdate to every connected
// session. A write failure is logged and the session is left in place;
// it is removed the next time its read times out or errors.
func (s *Server) BroadcastOrderUpdate(update model.OrderUpdate) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	for _, sess := range s.sessions {
		if err := writeFrame(sess.conn, MsgOrderUpdate, update); err != nil {
			s.logger.Warn().Str("session", sess.id).Err(err).Msg("failed to stream order update")
		}
	}
}

// BroadcastFill streams a Fill to every connected session.
func (s *Server) BroadcastFill(fill model.Fill) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	for _, sess := range s.sessions {
		if err := writeFrame(sess.conn, MsgFill, fill); err != nil {
			s.logger.Warn().Str("session", sess.id).Err(err).Msg("failed to stream fill")
		}
	}
}
