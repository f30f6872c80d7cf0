// Package broadcast implements a line-oriented fan-out chat transport:
// the first line a client sends is its username, every following
// newline-delimited line is rebroadcast to all connected sockets as
// "username: text". It carries no membership semantics and is fully
// independent of the conversation registry.
package broadcast

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
)

type Server struct {
	log  *log.Logger
	addr string

	ln net.Listener

	mu      sync.Mutex
	clients map[net.Conn]struct{}

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewServer(logger *log.Logger, addr string) *Server {
	return &Server{
		log:     logger,
		addr:    addr,
		clients: make(map[net.Conn]struct{}),
		stop:    make(chan struct{}),
	}
}

// Start binds the listener and begins accepting connections. It
// returns once the listener is bound; connection handling continues in
// the background until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.log.Printf("broadcast server listening on %s", ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listener address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
				s.log.Printf("accept: %v", err)
				return
			}
		}

		s.log.Printf("accepted connection from %s", conn.RemoteAddr())
		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)

	// The first line identifies the client.
	if !scanner.Scan() {
		return
	}
	username := strings.TrimSpace(scanner.Text())

	s.addClient(conn)
	s.Broadcast(fmt.Sprintf("%s has joined the chat", username))

	for scanner.Scan() {
		s.Broadcast(fmt.Sprintf("%s: %s", username, scanner.Text()))
	}

	s.removeClient(conn)
	s.Broadcast(fmt.Sprintf("%s has left the chat", username))
}

func (s *Server) addClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *Server) removeClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
}

// Broadcast writes one line to every connected client. A failing
// client is skipped; its own read loop will clean it up.
func (s *Server) Broadcast(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if _, err := fmt.Fprintln(conn, message); err != nil {
			s.log.Printf("write to %s: %v", conn.RemoteAddr(), err)
		}
	}
}

// Shutdown closes the listener and all client connections and waits
// for the handlers to drain.
func (s *Server) Shutdown() {
	close(s.stop)
	if s.ln != nil {
		s.ln.Close()
	}

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
