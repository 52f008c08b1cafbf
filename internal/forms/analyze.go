package forms

import (
	"context"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/store/predictions"
	"github.com/accunode/accunode-go/pkg/constants"
)

// PredictionCreator is the slice of the predictions API the analyzer needs.
type PredictionCreator interface {
	Create(ctx context.Context, typ constants.PredictionType, req api.CreatePredictionRequest) (*models.Prediction, error)
	Update(ctx context.Context, typ constants.PredictionType, id string, req api.CreatePredictionRequest) (*models.Prediction, error)
}

// Analyzer submits validated analysis forms and keeps the predictions cache
// in step with the server's responses.
type Analyzer struct {
	creator PredictionCreator
	store   *predictions.Store
}

// NewAnalyzer wires the analyzer to the predictions API and cache.
func NewAnalyzer(creator PredictionCreator, store *predictions.Store) *Analyzer {
	return &Analyzer{creator: creator, store: store}
}

// Analyze validates the form and, only if validation passes, scores the
// company and inserts the result into the cache. A validation failure means
// no network call was made.
func (a *Analyzer) Analyze(ctx context.Context, typ constants.PredictionType, form *PredictionForm) (*models.Prediction, error) {
	req, verr := form.Validate(typ)
	if verr != nil {
		return nil, verr
	}
	pred, err := a.creator.Create(ctx, typ, *req)
	if err != nil {
		return nil, err
	}
	if a.store != nil {
		a.store.Add(*pred)
	}
	return pred, nil
}

// Reanalyze validates the form and replaces an existing prediction wholesale.
func (a *Analyzer) Reanalyze(ctx context.Context, typ constants.PredictionType, id string, form *PredictionForm) (*models.Prediction, error) {
	req, verr := form.Validate(typ)
	if verr != nil {
		return nil, verr
	}
	pred, err := a.creator.Update(ctx, typ, id, *req)
	if err != nil {
		return nil, err
	}
	if a.store != nil {
		a.store.Replace(*pred)
	}
	return pred, nil
}
