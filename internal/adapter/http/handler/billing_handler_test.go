package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

type billingServiceStub struct {
	readinessFn func(ctx context.Context, matterID string) (*usecase.ReadinessReport, error)
	completeFn  func(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error)
	markReadyFn func(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error)
	submitFn    func(ctx context.Context, matterID, actorID, requestID, notes string) (*domain.Matter, error)
	approveFn   func(ctx context.Context, matterID, approverID, requestID, notes string) (*domain.Matter, error)
	rejectFn    func(ctx context.Context, matterID, approverID, requestID, reason string) (*domain.Matter, error)
	pipelineFn  func(ctx context.Context, advocateID string) (*usecase.PipelineSummary, error)
	getFn       func(ctx context.Context, id string) (*domain.Matter, error)
}

func (s *billingServiceStub) CheckReadiness(ctx context.Context, matterID string) (*usecase.ReadinessReport, error) {
	return s.readinessFn(ctx, matterID)
}

func (s *billingServiceStub) CompleteMatter(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error) {
	return s.completeFn(ctx, matterID, actorID, requestID)
}

func (s *billingServiceStub) MarkReadyToBill(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error) {
	return s.markReadyFn(ctx, matterID, actorID, requestID)
}

func (s *billingServiceStub) SubmitForApproval(ctx context.Context, matterID, actorID, requestID, notes string) (*domain.Matter, error) {
	return s.submitFn(ctx, matterID, actorID, requestID, notes)
}

func (s *billingServiceStub) ApproveBilling(ctx context.Context, matterID, approverID, requestID, notes string) (*domain.Matter, error) {
	return s.approveFn(ctx, matterID, approverID, requestID, notes)
}

func (s *billingServiceStub) RejectBilling(ctx context.Context, matterID, approverID, requestID, reason string) (*domain.Matter, error) {
	return s.rejectFn(ctx, matterID, approverID, requestID, reason)
}

func (s *billingServiceStub) Pipeline(ctx context.Context, advocateID string) (*usecase.PipelineSummary, error) {
	return s.pipelineFn(ctx, advocateID)
}

func (s *billingServiceStub) GetMatter(ctx context.Context, id string) (*domain.Matter, error) {
	return s.getFn(ctx, id)
}

func TestBillingHandler_Approve_Success(t *testing.T) {
	matter := &domain.Matter{
		ID:               "mat-1",
		AdvocateID:       "adv-1",
		CompletionStatus: domain.CompletionStatusReadyToBill,
	}

	var gotApprover, gotNotes string
	handler := NewBillingHandler(&billingServiceStub{
		approveFn: func(ctx context.Context, matterID, approverID, requestID, notes string) (*domain.Matter, error) {
			gotApprover = approverID
			gotNotes = notes
			return matter, nil
		},
	})

	body, _ := json.Marshal(dto.NotesRequest{Notes: "all entries verified"})
	req := httptest.NewRequest(http.MethodPost, "/matters/mat-1/billing/approve", bytes.NewReader(body))
	req.Header.Set(ActorIDHeader, "partner-1")
	req = withURLParam(req, "id", "mat-1")
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotApprover != "partner-1" || gotNotes != "all entries verified" {
		t.Fatalf("expected approver and notes to pass through, got %s / %s", gotApprover, gotNotes)
	}

	var resp dto.MatterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "mat-1" {
		t.Fatalf("expected matter mat-1, got %s", resp.ID)
	}
}

func TestBillingHandler_Reject_InvalidTransition(t *testing.T) {
	handler := NewBillingHandler(&billingServiceStub{
		rejectFn: func(ctx context.Context, matterID, approverID, requestID, reason string) (*domain.Matter, error) {
			return nil, domain.ErrInvalidStateTransition
		},
	})

	body, _ := json.Marshal(dto.ReasonRequest{Reason: "time entries missing"})
	req := httptest.NewRequest(http.MethodPost, "/matters/mat-1/billing/reject", bytes.NewReader(body))
	req = withURLParam(req, "id", "mat-1")
	rec := httptest.NewRecorder()

	handler.Reject(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestBillingHandler_Readiness_NotFound(t *testing.T) {
	handler := NewBillingHandler(&billingServiceStub{
		readinessFn: func(ctx context.Context, matterID string) (*usecase.ReadinessReport, error) {
			return nil, domain.ErrMatterNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/matters/missing/billing/readiness", nil)
	req = withURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Readiness(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBillingHandler_Pipeline(t *testing.T) {
	handler := NewBillingHandler(&billingServiceStub{
		pipelineFn: func(ctx context.Context, advocateID string) (*usecase.PipelineSummary, error) {
			if advocateID != "adv-1" {
				t.Fatalf("expected adv-1, got %s", advocateID)
			}
			return &usecase.PipelineSummary{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/advocates/adv-1/billing/pipeline", nil)
	req = withURLParam(req, "advocateID", "adv-1")
	rec := httptest.NewRecorder()

	handler.Pipeline(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
