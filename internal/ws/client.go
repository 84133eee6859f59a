package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/googollee/go-socket.io/parser"
	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/rs/zerolog/log"
)

// every inbound event is decoded as at most one raw JSON argument
var rawArgs = []reflect.Type{reflect.TypeOf(json.RawMessage(nil))}

// ClientChannel is a socket.io connection to the lobby server, spoken over
// the engine.io dialer and packet parser of go-socket.io. A dropped
// connection is redialed every ReconnectDelay until Close.
type ClientChannel struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         *engineio.Dialer

	mu       sync.Mutex
	conn     engineio.Conn
	enc      *parser.Encoder
	up       bool
	closed   bool
	handlers map[string]func(json.RawMessage)
	status   func(bool, string)

	wmu sync.Mutex // serializes packet writes
}

func NewClientChannel(url string) *ClientChannel {
	return &ClientChannel{
		URL:            url,
		ReconnectDelay: 2 * time.Second,
		Dialer:         &engineio.Dialer{Transports: []transport.Transport{websocket.Default}},
		handlers:       make(map[string]func(json.RawMessage)),
	}
}

func (c *ClientChannel) On(event string, fn func(raw json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = fn
}

func (c *ClientChannel) OnStatus(fn func(connected bool, reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = fn
}

// Connect dials the server and returns once the root namespace is open.
func (c *ClientChannel) Connect(ctx context.Context) error {
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- c.dial(ready) }()
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ClientChannel) dial(ready chan struct{}) error {
	endpoint, err := socketURL(c.URL)
	if err != nil {
		return err
	}
	conn, err := c.Dialer.Dial(endpoint, nil)
	if err != nil {
		return fmt.Errorf("socket.io connect %s: %w", c.URL, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return conn.Close()
	}
	c.conn = conn
	c.enc = parser.NewEncoder(conn)
	c.mu.Unlock()

	go c.read(conn, parser.NewDecoder(conn), ready)
	return nil
}

// socketURL points a bare server address at the default /socket.io/ path.
func socketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("server url %q: %w", raw, err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

func (c *ClientChannel) read(conn engineio.Conn, dec *parser.Decoder, ready chan struct{}) {
	defer dec.Close()
	var once sync.Once
	for {
		var (
			header parser.Header
			event  string
		)
		if err := dec.DecodeHeader(&header, &event); err != nil {
			c.lost(conn, err.Error())
			return
		}
		switch header.Type {
		case parser.Connect:
			_ = dec.DiscardLast()
			log.Info().Str("sid", conn.ID()).Str("url", c.URL).Msg("socket connected")
			c.setUp(true, "")
			if ready != nil {
				once.Do(func() { close(ready) })
			}
		case parser.Disconnect:
			_ = dec.DiscardLast()
			_ = conn.Close()
		case parser.Event:
			args, err := dec.DecodeArgs(rawArgs)
			if err != nil {
				log.Error().Err(err).Str("event", event).Msg("socket decode")
				_ = conn.Close()
				c.lost(conn, err.Error())
				return
			}
			var raw json.RawMessage
			if len(args) > 0 {
				raw, _ = args[0].Interface().(json.RawMessage)
			}
			c.dispatch(event, raw)
		default:
			_ = dec.DiscardLast()
		}
	}
}

func (c *ClientChannel) dispatch(event string, raw json.RawMessage) {
	c.mu.Lock()
	fn := c.handlers[event]
	c.mu.Unlock()
	if fn != nil {
		fn(raw)
	}
}

func (c *ClientChannel) lost(conn engineio.Conn, reason string) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn, c.enc = nil, nil
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	log.Info().Str("reason", reason).Msg("socket disconnected")
	c.setUp(false, reason)
	go c.redial()
}

func (c *ClientChannel) redial() {
	for {
		time.Sleep(c.ReconnectDelay)
		c.mu.Lock()
		closed, conn := c.closed, c.conn
		c.mu.Unlock()
		if closed || conn != nil {
			return
		}
		if err := c.dial(nil); err != nil {
			log.Warn().Err(err).Msg("reconnect failed")
			continue
		}
		return
	}
}

func (c *ClientChannel) setUp(up bool, reason string) {
	c.mu.Lock()
	changed := c.up != up
	c.up = up
	fn := c.status
	c.mu.Unlock()
	if changed && fn != nil {
		fn(up, reason)
	}
}

func (c *ClientChannel) Emit(event string, args ...any) error {
	c.mu.Lock()
	enc, up := c.enc, c.up
	c.mu.Unlock()
	if enc == nil || !up {
		return game.ErrNotConnected
	}
	data := append([]interface{}{event}, args...)
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := enc.Encode(parser.Header{Type: parser.Event}, data); err != nil {
		return fmt.Errorf("socket.io emit %s: %w", event, err)
	}
	return nil
}

func (c *ClientChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.up = false
	conn := c.conn
	c.conn, c.enc = nil, nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
