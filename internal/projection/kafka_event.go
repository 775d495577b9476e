package projection

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
)

// HandleKafkaEvent processes a batch delivered by an MSK event source
// mapping. Records that fail are logged and skipped, matching the
// long-running consumer; the returned count is the number applied.
func (p *Projector) HandleKafkaEvent(ctx context.Context, event events.KafkaEvent) (int, error) {
	var total, applied int
	for partition, records := range event.Records {
		for _, record := range records {
			total++
			if err := p.handleKafkaRecord(ctx, record); err != nil {
				log.Printf("[Lambda Projector] Skipping %s offset %d: %v", partition, record.Offset, err)
				continue
			}
			applied++
		}
	}

	log.Printf("[Lambda Projector] Processed %d/%d records successfully", applied, total)
	return applied, nil
}

func (p *Projector) handleKafkaRecord(ctx context.Context, record events.KafkaRecord) error {
	key, err := base64.StdEncoding.DecodeString(record.Key)
	if err != nil {
		return fmt.Errorf("failed to decode key: %w", err)
	}
	value, err := base64.StdEncoding.DecodeString(record.Value)
	if err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return p.HandleEvent(ctx, key, value)
}
