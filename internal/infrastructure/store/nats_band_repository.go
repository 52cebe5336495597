// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// NatsBandRepository reads band rosters from the shared bands bucket. The
// bands service owns the bucket and writes the records; this service only
// reads them.
type NatsBandRepository struct {
	*NatsBaseRepository[models.Band]
	keyBuilder *KeyBuilder
}

// NewNatsBandRepository creates a new NATS KV reader for bands.
func NewNatsBandRepository(kvStore INatsKeyValue) *NatsBandRepository {
	return &NatsBandRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Band](kvStore, "band"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsBandRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

func (r *NatsBandRepository) entityKey(bandUID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixBand, bandUID)
}

// Get retrieves a band by UID
func (r *NatsBandRepository) Get(ctx context.Context, bandUID string) (*models.Band, error) {
	return r.NatsBaseRepository.Get(ctx, r.entityKey(bandUID))
}

// Exists checks if a band exists
func (r *NatsBandRepository) Exists(ctx context.Context, bandUID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, r.entityKey(bandUID))
}

// Compile-time interface check
var _ domain.BandReader = (*NatsBandRepository)(nil)
