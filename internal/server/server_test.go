package server

import (
	"context"
	"testing"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	"github.com/rs/zerolog"
)

func TestStartRequiresSetup(t *testing.T) {
	logger := zerolog.Nop()
	s := NewWithDatabase(config.DefaultConfig(), &logger, nil, nil)

	if err := s.Start(); err == nil {
		t.Fatal("expected an error before SetupHTTPServer")
	}
}

func TestShutdownWithoutResources(t *testing.T) {
	logger := zerolog.Nop()
	s := NewWithDatabase(config.DefaultConfig(), &logger, nil, nil)

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
