package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartPinger_ReportsUp(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing()

	results := make(chan bool, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPinger(ctx, dbMock, 10*time.Millisecond, zap.NewNop(), func(up bool) {
		select {
		case results <- up:
		default:
		}
	})

	select {
	case up := <-results:
		if !up {
			t.Error("expected first ping to report up")
		}
	case <-time.After(time.Second):
		t.Fatal("pinger never reported")
	}
	cancel()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStartPinger_ErrorLogged(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))

	var buf syncBuffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.ErrorLevel,
	)
	logger := zap.New(core)

	results := make(chan bool, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPinger(ctx, dbMock, 10*time.Millisecond, logger, func(up bool) {
		select {
		case results <- up:
		default:
		}
	})

	select {
	case up := <-results:
		if up {
			t.Error("expected failed ping to report down")
		}
	case <-time.After(time.Second):
		t.Fatal("pinger never reported")
	}
	cancel()

	if out := buf.String(); !strings.Contains(out, "database ping failed") {
		t.Errorf("expected error log, got:\n%s", out)
	}
}

func TestStartPinger_CancelBeforeTicker(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	StartPinger(ctx, dbMock, 100*time.Millisecond, zap.NewNop(), nil)
	cancel()

	time.Sleep(50 * time.Millisecond)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}
