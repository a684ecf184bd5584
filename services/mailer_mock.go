package services

import (
	"context"
	"errors"
	"sync"
)

// SentEmail is a message captured by MockMailer
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records messages instead of sending them
type MockMailer struct {
	mu   sync.Mutex
	sent []SentEmail

	// FailTimes makes the next n Send calls fail with Err
	FailTimes int
	Err       error
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTimes > 0 {
		m.FailTimes--
		if m.Err == nil {
			return errors.New("mock mailer: send failed")
		}
		return m.Err
	}
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of the captured messages
func (m *MockMailer) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.sent...)
}
