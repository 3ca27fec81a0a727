package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const pelotonConnectionsCollection = "peloton_connections"

type pelotonRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PelotonConnectionRepository = &pelotonRepository{}

func newPelotonRepository(client *firestore.Client) *pelotonRepository {
	return &pelotonRepository{
		client: client,
	}
}

// pelotonConnectionDoc is the Firestore persistence model
type pelotonConnectionDoc struct {
	PelotonUserID string    `firestore:"peloton_user_id"`
	SlackUserID   string    `firestore:"slack_user_id"`
	SessionID     string    `firestore:"session_id"`
	Username      string    `firestore:"username"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

func (r *pelotonRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + pelotonConnectionsCollection)
	}
	return r.client.Collection(pelotonConnectionsCollection)
}

func (r *pelotonRepository) toDoc(conn *model.PelotonConnection) *pelotonConnectionDoc {
	return &pelotonConnectionDoc{
		PelotonUserID: string(conn.PelotonUserID),
		SlackUserID:   string(conn.SlackUserID),
		SessionID:     conn.SessionID,
		Username:      conn.Username,
		UpdatedAt:     conn.UpdatedAt,
	}
}

func (r *pelotonRepository) fromDoc(doc *pelotonConnectionDoc) *model.PelotonConnection {
	return &model.PelotonConnection{
		PelotonUserID: types.PelotonUserID(doc.PelotonUserID),
		SlackUserID:   types.SlackUserID(doc.SlackUserID),
		SessionID:     doc.SessionID,
		Username:      doc.Username,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func (r *pelotonRepository) Upsert(ctx context.Context, conn *model.PelotonConnection) error {
	doc := r.toDoc(conn)
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.collection().Doc(string(conn.PelotonUserID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert peloton connection", goerr.V("peloton_user_id", conn.PelotonUserID))
	}

	return nil
}

func (r *pelotonRepository) Get(ctx context.Context, id types.PelotonUserID) (*model.PelotonConnection, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get peloton connection", goerr.V("peloton_user_id", id))
	}

	var doc pelotonConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal peloton connection", goerr.V("peloton_user_id", id))
	}

	return r.fromDoc(&doc), nil
}

func (r *pelotonRepository) GetBySlackID(ctx context.Context, id types.SlackUserID) (*model.PelotonConnection, error) {
	iter := r.collection().Where("slack_user_id", "==", string(id)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("slack_user_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query peloton connection by slack user")
	}

	var doc pelotonConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal peloton connection", goerr.V("docID", snap.Ref.ID))
	}

	return r.fromDoc(&doc), nil
}

func (r *pelotonRepository) List(ctx context.Context) ([]*model.PelotonConnectionSummary, error) {
	iter := r.collection().OrderBy("updated_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var result []*model.PelotonConnectionSummary
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate peloton connections")
		}

		var doc pelotonConnectionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal peloton connection", goerr.V("docID", snap.Ref.ID))
		}

		result = append(result, r.fromDoc(&doc).Summary())
	}

	return result, nil
}

func (r *pelotonRepository) Delete(ctx context.Context, id types.PelotonUserID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
		}
		return goerr.Wrap(err, "failed to get peloton connection", goerr.V("peloton_user_id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete peloton connection", goerr.V("peloton_user_id", id))
	}

	return nil
}
