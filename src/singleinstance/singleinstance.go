// Package singleinstance keeps one resident auto-copy per user session and
// lets later invocations control it over a loopback TCP line protocol.
package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	residentHost = "127.0.0.1"
	DefaultPort  = 49560

	CmdPing   = "PING"
	CmdPause  = "PAUSE"
	CmdResume = "RESUME"
	CmdStatus = "STATUS"

	RespPong   = "PONG"
	RespOK     = "OK"
	RespPaused = "PAUSED"
	RespActive = "ACTIVE"
	respError  = "ERR"
)

var (
	ErrAlreadyRunning = errors.New("auto-copy is already running")
	ErrNoResident     = errors.New("no running auto-copy found")
)

// Controller is the resident state the server exposes.
type Controller interface {
	SetPaused(bool)
	Paused() bool
}

// Server owns the loopback port for as long as the resident lives.
type Server struct {
	port int
	ctl  Controller

	mu  sync.Mutex
	lis net.Listener
	wg  sync.WaitGroup
}

func NewServer(port int, ctl Controller) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	return &Server{port: port, ctl: ctl}
}

// Start binds the port. If something answers PING there, ErrAlreadyRunning is returned.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}

	addr := net.JoinHostPort(residentHost, strconv.Itoa(s.port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		if NewClient(s.port).Ping(ctx) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("singleinstance: bind %s: %w", addr, err)
	}
	s.lis = lis
	log.Debug().Str("addr", addr).Msg("singleinstance: listening")

	s.wg.Add(1)
	go s.acceptLoop(lis)
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return nil
}

// Port returns the configured port.
func (s *Server) Port() int { return s.port }

// Close releases the port. Safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	lis := s.lis
	s.lis = nil
	s.mu.Unlock()
	if lis == nil {
		return nil
	}
	err := lis.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(lis net.Listener) {
	defer s.wg.Done()
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		s.serve(c)
	}
}

// serve answers exactly one command per connection.
func (s *Server) serve(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return
	}
	resp := s.handle(strings.TrimSpace(line))
	_, _ = c.Write([]byte(resp + "\n"))
}

func (s *Server) handle(cmd string) string {
	switch strings.ToUpper(cmd) {
	case CmdPing:
		return RespPong
	case CmdPause:
		s.ctl.SetPaused(true)
		return RespOK
	case CmdResume:
		s.ctl.SetPaused(false)
		return RespOK
	case CmdStatus:
		if s.ctl.Paused() {
			return RespPaused
		}
		return RespActive
	default:
		return respError + " unknown command"
	}
}

// Client talks to a resident on the loopback port.
type Client struct {
	port    int
	timeout time.Duration
}

func NewClient(port int) *Client {
	if port <= 0 {
		port = DefaultPort
	}
	return &Client{port: port, timeout: 300 * time.Millisecond}
}

// Ping reports whether a resident answers on the port.
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.Send(ctx, CmdPing)
	return err == nil && resp == RespPong
}

// Send delivers one command and returns the single-line reply.
func (c *Client) Send(ctx context.Context, cmd string) (string, error) {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	addr := net.JoinHostPort(residentHost, strconv.Itoa(c.port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoResident, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, respError) {
		return "", errors.New(strings.TrimSpace(strings.TrimPrefix(resp, respError)))
	}
	return resp, nil
}
