package chatws

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Message 一条入站消息
type Message struct {
	Binary bool
	Data   []byte
}

// ============================================================================
//                              ChatSession
// ============================================================================

// ChatSession 一个 WebSocket 聊天会话
//
// 读写截止时间使用墙上时间，注入的时钟只驱动保活定时。
type ChatSession struct {
	id    uuid.UUID
	conn  *websocket.Conn
	info  types.ConnectionInfo
	cfg   Config
	clock clock.Clock

	incoming chan Message
	done     chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

var _ pkgif.Session = (*ChatSession)(nil)

func newSession(conn *websocket.Conn, info types.ConnectionInfo, cfg Config, clk clock.Clock) *ChatSession {
	s := &ChatSession{
		id:       uuid.New(),
		conn:     conn,
		info:     info,
		cfg:      cfg,
		clock:    clk,
		incoming: make(chan Message, cfg.IncomingBuffer),
		done:     make(chan struct{}),
	}

	conn.SetPongHandler(func(string) error {
		return s.touch()
	})
	conn.SetPingHandler(func(data string) error {
		if err := s.touch(); err != nil {
			return err
		}
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(cfg.WriteTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})
	_ = s.touch()

	go s.readLoop()
	go s.keepAlive()

	logger.Info("聊天会话已建立", "session", s.id, "info", info.Description())
	return s
}

// ID 返回会话 ID
func (s *ChatSession) ID() uuid.UUID {
	return s.id
}

// Info 实现 Session
func (s *ChatSession) Info() types.ConnectionInfo {
	return s.info
}

// Done 实现 Session
func (s *ChatSession) Done() <-chan struct{} {
	return s.done
}

// Incoming 入站消息，会话结束后关闭
func (s *ChatSession) Incoming() <-chan Message {
	return s.incoming
}

// Err 返回会话结束的原因，主动关闭或对端正常关闭时为 nil
func (s *ChatSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send 发送二进制消息
func (s *ChatSession) Send(ctx context.Context, data []byte) error {
	return s.write(ctx, websocket.BinaryMessage, data)
}

// SendText 发送文本消息
func (s *ChatSession) SendText(ctx context.Context, text string) error {
	return s.write(ctx, websocket.TextMessage, []byte(text))
}

// Close 实现 Session，可重复调用
func (s *ChatSession) Close() error {
	s.finish(nil)
	return nil
}

func (s *ChatSession) write(ctx context.Context, messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	deadline := time.Now().Add(s.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.finish(err)
		return err
	}
	return nil
}

// touch 收到任何入站数据后延长读截止时间
func (s *ChatSession) touch() error {
	return s.conn.SetReadDeadline(time.Now().Add(s.cfg.MaxIdleTime))
}

func (s *ChatSession) readLoop() {
	defer close(s.incoming)
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			s.finish(readError(err))
			return
		}
		_ = s.touch()

		msg := Message{Binary: mt == websocket.BinaryMessage, Data: data}
		select {
		case s.incoming <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *ChatSession) keepAlive() {
	ticker := s.clock.Ticker(s.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
			if err != nil {
				s.finish(err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// finish 结束会话，只有第一次调用生效
func (s *ChatSession) finish(cause error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.done)

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = s.conn.Close()

		if cause != nil {
			logger.Info("聊天会话结束", "session", s.id, "err", cause)
		} else {
			logger.Debug("聊天会话关闭", "session", s.id)
		}
	})
}

// readError 归类读循环的错误
func readError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrIdleTimeout
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}
