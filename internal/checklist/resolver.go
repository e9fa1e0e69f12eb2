package checklist

import (
	"bytes"
	"context"
	"fmt"

	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/parser"
)

// UnknownChecklistError reports a checklist accession the archive does
// not serve a usable definition for.
type UnknownChecklistError struct {
	Accession string
	Reason    string
}

func (e *UnknownChecklistError) Error() string {
	return fmt.Sprintf("unknown checklist %s: %s", e.Accession, e.Reason)
}

// Fetcher retrieves raw archive records by accession.
type Fetcher interface {
	Fetch(ctx context.Context, accession string) ([]byte, error)
}

// Resolver turns checklist accessions into parsed definitions. Results
// are memoized for the lifetime of the resolver, so a run touching the
// same checklist repeatedly fetches it once. Not safe for concurrent
// use; the composition pipeline is sequential.
type Resolver struct {
	fetcher Fetcher
	cache   map[string]*models.ChecklistSpec
}

// NewResolver creates a resolver backed by the given fetcher.
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		cache:   make(map[string]*models.ChecklistSpec),
	}
}

// Resolve fetches and parses the checklist definition for an accession.
// A missing record or a definition without a descriptor name resolves
// to UnknownChecklistError; transport failures pass through unchanged.
func (r *Resolver) Resolve(ctx context.Context, accession string) (*models.ChecklistSpec, error) {
	const op errors.Op = "checklist.Resolve"

	if spec, ok := r.cache[accession]; ok {
		return spec, nil
	}

	body, err := r.fetcher.Fetch(ctx, accession)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			return nil, errors.E(op, errors.KindChecklist, &UnknownChecklistError{
				Accession: accession,
				Reason:    "no such record in the archive",
			})
		}
		return nil, errors.E(op, err)
	}

	spec, err := parser.NewXMLParser(bytes.NewReader(body)).ParseChecklist()
	if err != nil {
		return nil, errors.E(op, errors.KindChecklist, &UnknownChecklistError{
			Accession: accession,
			Reason:    err.Error(),
		})
	}

	if spec.Accession == "" {
		spec.Accession = accession
	}

	r.cache[accession] = spec
	return spec, nil
}
