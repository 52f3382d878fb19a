package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"
)

// DefaultMaxAge bounds how long reports are retained.
const DefaultMaxAge = 7 * 24 * time.Hour

// StreamManager is the part of nats.JetStreamContext stream setup needs.
type StreamManager interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

// EnsureStream creates the report stream and one DLQ stream per report subject.
func EnsureStream(ctx context.Context, js StreamManager) error {
	if err := ensure(ctx, js, StreamName, ReportSubjects); err != nil {
		return err
	}
	for _, subject := range ReportSubjects {
		if err := ensure(ctx, js, dlqStreamName(subject), []string{DLQSubject(subject)}); err != nil {
			return fmt.Errorf("dlq stream for %s: %w", subject, err)
		}
	}
	return nil
}

func ensure(ctx context.Context, js StreamManager, name string, subjects []string) error {
	info, err := js.StreamInfo(name, nats.Context(ctx))
	if err == nil && info != nil {
		return nil
	}
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("lookup stream %s: %w", name, err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxMsgs:   -1,
		MaxBytes:  -1,
		MaxAge:    DefaultMaxAge,
	}, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("add stream %s: %w", name, err)
	}
	return nil
}

func dlqStreamName(subject string) string {
	// Stream names cannot contain '.', '*' or '>'.
	n := strings.NewReplacer(".", "_", "*", "STAR", ">", "GT").Replace(subject)
	return fmt.Sprintf("%s_%s_DLQ", StreamName, strings.ToUpper(n))
}
