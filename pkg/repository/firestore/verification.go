package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const verifiedSlackUsersCollection = "verified_slack_users"

type verificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.SlackVerificationRepository = &verificationRepository{}

func newVerificationRepository(client *firestore.Client) *verificationRepository {
	return &verificationRepository{
		client: client,
	}
}

// verifiedSlackUserDoc is the Firestore persistence model
type verifiedSlackUserDoc struct {
	SlackUserID       string `firestore:"slack_user_id"`
	VerificationToken string `firestore:"verification_token"`
	Verified          bool   `firestore:"verified"`
}

func (r *verificationRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + verifiedSlackUsersCollection)
	}
	return r.client.Collection(verifiedSlackUsersCollection)
}

func (r *verificationRepository) toDoc(user *model.VerifiedSlackUser) *verifiedSlackUserDoc {
	return &verifiedSlackUserDoc{
		SlackUserID:       string(user.SlackUserID),
		VerificationToken: string(user.VerificationToken),
		Verified:          user.Verified,
	}
}

func (r *verificationRepository) fromDoc(doc *verifiedSlackUserDoc) *model.VerifiedSlackUser {
	return &model.VerifiedSlackUser{
		SlackUserID:       types.SlackUserID(doc.SlackUserID),
		VerificationToken: types.VerificationToken(doc.VerificationToken),
		Verified:          doc.Verified,
	}
}

// Upsert writes inside a transaction so an empty incoming token keeps the
// stored one, matching the connection store's coalesce discipline.
func (r *verificationRepository) Upsert(ctx context.Context, user *model.VerifiedSlackUser) error {
	docRef := r.collection().Doc(string(user.SlackUserID))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		incoming := r.toDoc(user)

		snap, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get verified slack user")
		}

		if err == nil && snap.Exists() {
			var existing verifiedSlackUserDoc
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal verified slack user")
			}
			if incoming.VerificationToken == "" {
				incoming.VerificationToken = existing.VerificationToken
			}
		}

		return tx.Set(docRef, incoming)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upsert verified slack user", goerr.V("slack_user_id", user.SlackUserID))
	}

	return nil
}

func (r *verificationRepository) GetByToken(ctx context.Context, token types.VerificationToken) (*model.VerifiedSlackUser, error) {
	if token == "" {
		return nil, goerr.Wrap(model.ErrNotFound, "no slack user for verification token")
	}

	iter := r.collection().Where("verification_token", "==", string(token)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrNotFound, "no slack user for verification token")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query by verification token")
	}

	var doc verifiedSlackUserDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal verified slack user", goerr.V("docID", snap.Ref.ID))
	}

	return r.fromDoc(&doc), nil
}

func (r *verificationRepository) Consume(ctx context.Context, token types.VerificationToken) (bool, error) {
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
		})
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to consume verification token")
	}

	return matched, nil
}

func (r *verificationRepository) IsVerified(ctx context.Context, id types.SlackUserID) (bool, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get verified slack user", goerr.V("slack_user_id", id))
	}

	var doc verifiedSlackUserDoc
	if err := snap.DataTo(&doc); err != nil {
		return false, goerr.Wrap(err, "failed to unmarshal verified slack user", goerr.V("slack_user_id", id))
	}

	return doc.Verified, nil
}

func (r *verificationRepository) Get(ctx context.Context, id types.SlackUserID) (*model.VerifiedSlackUser, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "slack user not found", goerr.V("slack_user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get verified slack user", goerr.V("slack_user_id", id))
	}

	var doc verifiedSlackUserDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal verified slack user", goerr.V("slack_user_id", id))
	}

	return r.fromDoc(&doc), nil
}
