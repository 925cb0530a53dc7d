package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// CertificateRepository stores issued tourism certificates.
type CertificateRepository interface {
	Create(ctx context.Context, cert domain.Certificate) error
	Get(ctx context.Context, id string) (*domain.Certificate, bool, error)
}

type certificateRepository struct {
	certs collection[domain.Certificate]
}

// NewCertificateRepository instantiates repository.
func NewCertificateRepository(store DocumentStore) CertificateRepository {
	return &certificateRepository{certs: collection[domain.Certificate]{store: store, name: CollectionCertificates}}
}

func (r *certificateRepository) Create(ctx context.Context, cert domain.Certificate) error {
	return r.certs.set(ctx, cert.TourismCertID, cert)
}

func (r *certificateRepository) Get(ctx context.Context, id string) (*domain.Certificate, bool, error) {
	return r.certs.get(ctx, id)
}

// CounterRepository allocates yearly certificate sequence numbers.
type CounterRepository interface {
	// Next increments the counter for year and returns the new value.
	Next(ctx context.Context, year int) (int, error)
}

type counterRepository struct {
	store DocumentStore
}

// NewCounterRepository instantiates repository.
func NewCounterRepository(store DocumentStore) CounterRepository {
	return &counterRepository{store: store}
}

func (r *counterRepository) Next(ctx context.Context, year int) (int, error) {
	id := strconv.Itoa(year)
	var next int
	err := r.store.RunTransaction(ctx, func(tx Tx) error {
		doc, ok, err := tx.Get(ctx, CollectionCounters, id)
		if err != nil {
			return err
		}
		var counter domain.Counter
		if ok {
			if err := Decode(doc, &counter); err != nil {
				return err
			}
		}
		next = counter.LastNumber + 1

		updated, err := Encode(domain.Counter{Year: year, LastNumber: next})
		if err != nil {
			return err
		}
		return tx.Set(ctx, CollectionCounters, id, updated)
	})
	if err != nil {
		return 0, fmt.Errorf("allocate certificate number for %d: %w", year, err)
	}
	return next, nil
}
