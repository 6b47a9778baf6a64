package net

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the hub needs. Tests swap in
// an in-memory fake.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one connected client. Writes are serialized through its
// mutex because the game loop broadcasts while the read loop answers
// acks and heartbeats.
type Session struct {
	id   string
	conn Conn

	writeMu sync.Mutex

	mu             sync.Mutex
	lastCommandSeq uint64
	lastAck        uint64
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Write sends one text frame to the client.
func (s *Session) Write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// LastCommandSeq returns the newest acknowledged command sequence.
func (s *Session) LastCommandSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommandSeq
}

// StoreLastCommandSeq records the newest acknowledged command sequence.
func (s *Session) StoreLastCommandSeq(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.lastCommandSeq {
		s.lastCommandSeq = seq
	}
}

// RecordAck stores the newest patch acknowledgement and reports the
// previous value plus whether the ack advanced.
func (s *Session) RecordAck(ack uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.lastAck
	if ack <= previous {
		return previous, false
	}
	s.lastAck = ack
	return previous, true
}
