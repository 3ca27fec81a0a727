package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
)

type Firestore struct {
	client       *firestore.Client
	strava       *stravaRepository
	peloton      *pelotonRepository
	verification *verificationRepository
	postedAct    *postedActivityRepository
	postedWkt    *postedWorkoutRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for shared test
// projects.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.strava.collectionPrefix = prefix
		f.peloton.collectionPrefix = prefix
		f.verification.collectionPrefix = prefix
		f.postedAct.collectionPrefix = prefix
		f.postedWkt.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		strava:       newStravaRepository(client),
		peloton:      newPelotonRepository(client),
		verification: newVerificationRepository(client),
		postedAct:    newPostedActivityRepository(client),
		postedWkt:    newPostedWorkoutRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Strava() interfaces.StravaConnectionRepository {
	return f.strava
}

func (f *Firestore) Peloton() interfaces.PelotonConnectionRepository {
	return f.peloton
}

func (f *Firestore) SlackVerification() interfaces.SlackVerificationRepository {
	return f.verification
}

func (f *Firestore) PostedActivity() interfaces.PostedActivityRepository {
	return f.postedAct
}

func (f *Firestore) PostedWorkout() interfaces.PostedWorkoutRepository {
	return f.postedWkt
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
