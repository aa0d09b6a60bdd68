package ledger

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"scripture/internal/logger"
)

// FirestoreLedger stores one document per label in a collection.
type FirestoreLedger struct {
	client     *firestore.Client
	collection string
	log        zerolog.Logger
}

// NewFirestore creates a Firestore client for projectID.
func NewFirestore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*FirestoreLedger, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &FirestoreLedger{
		client:     client,
		collection: collection,
		log:        logger.WithComponent("ledger"),
	}, nil
}

// Done implements Ledger.
func (l *FirestoreLedger) Done(ctx context.Context, label string) (bool, error) {
	docs, err := l.client.Collection(l.collection).Where("label", "==", label).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query ledger for %s: %w", label, err)
	}
	return len(docs) > 0, nil
}

// MarkDone implements Ledger. The document id is the label.
func (l *FirestoreLedger) MarkDone(ctx context.Context, e Entry) error {
	if _, err := l.client.Collection(l.collection).Doc(e.Label).Set(ctx, e); err != nil {
		return fmt.Errorf("failed to record %s in ledger: %w", e.Label, err)
	}
	l.log.Debug().Str("label", e.Label).Str("collection", l.collection).Msg("Recorded completed unit")
	return nil
}

// Close closes the Firestore client.
func (l *FirestoreLedger) Close() error {
	return l.client.Close()
}
