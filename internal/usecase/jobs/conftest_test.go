package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/juristech/acervo/internal/domain"
)

type mockQueue struct {
	enqueueFn func(ctx context.Context, documentID, bundleID *uuid.UUID, priority int) (*domain.IngestionJob, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error)
	listFn    func(ctx context.Context, status domain.JobStatus) ([]*domain.IngestionJob, error)
	cancelFn  func(ctx context.Context, id uuid.UUID) error
	resetFn   func(ctx context.Context, id uuid.UUID) error

	resetCalls int
}

func (m *mockQueue) Enqueue(
	ctx context.Context, documentID, bundleID *uuid.UUID, priority int,
) (*domain.IngestionJob, error) {
	return m.enqueueFn(ctx, documentID, bundleID, priority)
}

func (m *mockQueue) Get(ctx context.Context, id uuid.UUID) (*domain.IngestionJob, error) {
	return m.getFn(ctx, id)
}

func (m *mockQueue) List(
	ctx context.Context, status domain.JobStatus,
) ([]*domain.IngestionJob, error) {
	return m.listFn(ctx, status)
}

func (m *mockQueue) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.cancelFn(ctx, id)
}

func (m *mockQueue) Reset(ctx context.Context, id uuid.UUID) error {
	m.resetCalls++
	if m.resetFn == nil {
		return nil
	}
	return m.resetFn(ctx, id)
}

type mockDocs struct {
	getFn       func(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	byBundleFn  func(ctx context.Context, bundleID uuid.UUID) ([]*domain.Document, error)
	setStatusFn func(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string) error

	statusWrites map[uuid.UUID]domain.DocumentStatus
}

func (m *mockDocs) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if m.getFn == nil {
		return &domain.Document{ID: id}, nil
	}
	return m.getFn(ctx, id)
}

func (m *mockDocs) ListByBundle(
	ctx context.Context, bundleID uuid.UUID,
) ([]*domain.Document, error) {
	if m.byBundleFn == nil {
		return nil, nil
	}
	return m.byBundleFn(ctx, bundleID)
}

func (m *mockDocs) SetStatus(
	ctx context.Context, id uuid.UUID, status domain.DocumentStatus, errMsg string,
) error {
	if m.statusWrites == nil {
		m.statusWrites = make(map[uuid.UUID]domain.DocumentStatus)
	}
	m.statusWrites[id] = status
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, id, status, errMsg)
}

type mockChunks struct {
	deleteFn func(ctx context.Context, documentID uuid.UUID) error
	deleted  []uuid.UUID
}

func (m *mockChunks) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	m.deleted = append(m.deleted, documentID)
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, documentID)
}
