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

const stravaConnectionsCollection = "strava_connections"

type stravaRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.StravaConnectionRepository = &stravaRepository{}

func newStravaRepository(client *firestore.Client) *stravaRepository {
	return &stravaRepository{
		client: client,
	}
}

// stravaConnectionDoc is the Firestore persistence model
type stravaConnectionDoc struct {
	AthleteID         int64     `firestore:"athlete_id"`
	RefreshToken      string    `firestore:"refresh_token"`
	AccessToken       string    `firestore:"access_token"`
	ExpiresAt         int64     `firestore:"expires_at"`
	FirstName         string    `firestore:"firstname"`
	LastName          string    `firestore:"lastname"`
	SlackUserID       string    `firestore:"slack_user_id"`
	Verified          bool      `firestore:"verified"`
	VerificationToken string    `firestore:"verification_token"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

func (r *stravaRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + stravaConnectionsCollection)
	}
	return r.client.Collection(stravaConnectionsCollection)
}

func (r *stravaRepository) toDoc(conn *model.StravaConnection) *stravaConnectionDoc {
	return &stravaConnectionDoc{
		AthleteID:         conn.AthleteID.Int64(),
		RefreshToken:      conn.RefreshToken,
		AccessToken:       conn.AccessToken,
		ExpiresAt:         conn.ExpiresAt,
		FirstName:         conn.FirstName,
		LastName:          conn.LastName,
		SlackUserID:       string(conn.SlackUserID),
		Verified:          conn.Verified,
		VerificationToken: string(conn.VerificationToken),
		UpdatedAt:         conn.UpdatedAt,
	}
}

func (r *stravaRepository) fromDoc(doc *stravaConnectionDoc) *model.StravaConnection {
	return &model.StravaConnection{
		AthleteID:         types.AthleteID(doc.AthleteID),
		RefreshToken:      doc.RefreshToken,
		AccessToken:       doc.AccessToken,
		ExpiresAt:         doc.ExpiresAt,
		FirstName:         doc.FirstName,
		LastName:          doc.LastName,
		SlackUserID:       types.SlackUserID(doc.SlackUserID),
		Verified:          doc.Verified,
		VerificationToken: types.VerificationToken(doc.VerificationToken),
		UpdatedAt:         doc.UpdatedAt,
	}
}

// Upsert writes the connection inside a transaction so the coalescing of
// slack_user_id and verification_token reads and writes atomically.
func (r *stravaRepository) Upsert(ctx context.Context, conn *model.StravaConnection) error {
	docRef := r.collection().Doc(conn.AthleteID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		incoming := r.toDoc(conn)
		incoming.UpdatedAt = time.Now().UTC()

		snap, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get strava connection")
		}

		if err == nil && snap.Exists() {
			var existing stravaConnectionDoc
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal strava connection")
			}
			if incoming.SlackUserID == "" {
				incoming.SlackUserID = existing.SlackUserID
			}
			if incoming.VerificationToken == "" {
				incoming.VerificationToken = existing.VerificationToken
			}
			incoming.Verified = existing.Verified
		}

		return tx.Set(docRef, incoming)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upsert strava connection", goerr.V("athlete_id", conn.AthleteID))
	}

	return nil
}

func (r *stravaRepository) Get(ctx context.Context, id types.AthleteID) (*model.StravaConnection, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "strava connection not found", goerr.V("athlete_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get strava connection", goerr.V("athlete_id", id))
	}

	var doc stravaConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal strava connection", goerr.V("athlete_id", id))
	}

	return r.fromDoc(&doc), nil
}

func (r *stravaRepository) List(ctx context.Context) ([]*model.StravaConnectionSummary, error) {
	iter := r.collection().OrderBy("updated_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var result []*model.StravaConnectionSummary
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate strava connections")
		}

		var doc stravaConnectionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal strava connection", goerr.V("docID", snap.Ref.ID))
		}

		result = append(result, r.fromDoc(&doc).Summary())
	}

	return result, nil
}

func (r *stravaRepository) GetByVerificationToken(ctx context.Context, token types.VerificationToken) (*model.StravaConnection, error) {
	if token == "" {
		return nil, goerr.Wrap(model.ErrNotFound, "no connection for verification token")
	}

	iter := r.collection().Where("verification_token", "==", string(token)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrNotFound, "no connection for verification token")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query by verification token")
	}

	var doc stravaConnectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal strava connection", goerr.V("docID", snap.Ref.ID))
	}

	return r.fromDoc(&doc), nil
}

func (r *stravaRepository) MarkVerified(ctx context.Context, token types.VerificationToken) (bool, error) {
	if token == "" {
		return false, nil
	}

	matched := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		matched = false

		iter := tx.Documents(r.collection().Where("verification_token", "==", string(token)).Limit(1))
		defer iter.Stop()

		snap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to query by verification token")
		}

		matched = true
		return tx.Update(snap.Ref, []firestore.Update{
			{Path: "verified", Value: true},
			{Path: "verification_token", Value: ""},
			{Path: "updated_at", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to mark strava connection verified")
	}

	return matched, nil
}
