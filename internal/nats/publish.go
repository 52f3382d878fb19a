package nats

import (
	"context"
	"fmt"

	nats "github.com/nats-io/nats.go"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/report"
)

type Publisher interface {
	Publish(subject string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

func Publish(ctx context.Context, js Publisher, subject string, payload []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject required")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload required")
	}
	if ctx != nil {
		opts = append(opts, nats.Context(ctx))
	}

	ack, err := js.Publish(subject, payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", subject, err)
	}
	return ack, nil
}

func PublishDLQ(ctx context.Context, js Publisher, subject string, payload []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	return Publish(ctx, js, DLQSubject(subject), payload, opts...)
}

// ReportSink publishes validation reports as protobuf Structs. Clean reports go to
// SubjectReport, reports with mismatches to its DLQ. The report ID is the message ID, so
// JetStream drops redelivered duplicates.
type ReportSink struct {
	JS Publisher
}

func (s ReportSink) PublishReport(ctx context.Context, r report.Report) error {
	payload, err := codec.MarshalFields(r.Fields())
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if r.Valid() {
		_, err = Publish(ctx, s.JS, SubjectReport, payload, nats.MsgId(r.ID))
	} else {
		_, err = PublishDLQ(ctx, s.JS, SubjectReport, payload, nats.MsgId(r.ID))
	}
	return err
}
