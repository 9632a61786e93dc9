// Package fulfillment applies a caller-chosen set of donations to a blood
// request. The engine never picks donations itself.
package fulfillment

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
	"bloodbank/internal/events"
)

// Engine creates and fulfills blood requests.
type Engine struct {
	repo      domain.Repository
	publisher events.Publisher
	clock     domain.Clock
	logger    zerolog.Logger
}

// New wires an Engine. A nil publisher drops events and a nil clock reads
// the wall clock.
func New(repo domain.Repository, publisher events.Publisher, clock domain.Clock, logger zerolog.Logger) *Engine {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Engine{repo: repo, publisher: publisher, clock: clock, logger: logger}
}

// Result reports what a fulfillment consumed. AllocatedQuantity and Shortfall
// are informational; a short allocation still succeeds.
type Result struct {
	Request             *domain.BloodRequest `json:"request"`
	ConsumedDonationIDs []int64              `json:"consumedDonationIds"`
	AllocatedQuantity   decimal.Decimal      `json:"allocatedQuantity"`
	Shortfall           decimal.Decimal      `json:"shortfall"`
}

// Fulfill binds every donation to the request and marks it delivered in one
// unit of work. Duplicate ids are collapsed. On any error nothing changes.
func (e *Engine) Fulfill(ctx context.Context, requestID int64, donationIDs []int64) (*Result, error) {
	ids := slices.Clone(donationIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, domain.Invalid("donationIds", "at least one donation is required")
	}

	result := &Result{ConsumedDonationIDs: ids, AllocatedQuantity: decimal.Zero}
	err := e.repo.Do(ctx, func(tx domain.Repository) error {
		req, err := tx.FulfillRequest(ctx, requestID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			d, err := tx.GetDonationByID(ctx, id)
			if err != nil {
				return err
			}
			result.AllocatedQuantity = result.AllocatedQuantity.Add(d.Quantity)
		}
		result.Request = req
		return nil
	})
	if err != nil {
		e.logger.Warn().Err(err).Int64("request_id", requestID).Ints64("donation_ids", ids).Msg("fulfillment rejected")
		return nil, err
	}

	result.Shortfall = decimal.Max(decimal.Zero, result.Request.Quantity.Sub(result.AllocatedQuantity))
	e.logger.Info().
		Int64("request_id", requestID).
		Ints64("donation_ids", ids).
		Str("allocated", result.AllocatedQuantity.String()).
		Str("shortfall", result.Shortfall.String()).
		Msg("request fulfilled")

	event := events.RequestFulfilled{
		RequestID:         requestID,
		BloodType:         result.Request.BloodType,
		RequestedQuantity: result.Request.Quantity,
		DonationIDs:       ids,
		AllocatedQuantity: result.AllocatedQuantity,
		Shortfall:         result.Shortfall,
		FulfilledAt:       e.clock.Now(),
	}
	if err := e.publisher.PublishRequestFulfilled(ctx, event); err != nil {
		e.logger.Error().Err(err).Int64("request_id", requestID).Msg("publish fulfillment event failed")
	}
	return result, nil
}

// NewRequest is the input for CreateRequest.
type NewRequest struct {
	RequesterID int64           `json:"requesterId"`
	BloodType   string          `json:"bloodType"`
	Quantity    decimal.Decimal `json:"quantity"`
	Address     string          `json:"address"`
}

// CreateRequest stores a pending request stamped with the engine clock.
func (e *Engine) CreateRequest(ctx context.Context, in NewRequest) (*domain.BloodRequest, error) {
	bt, err := domain.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, domain.Invalid("address", "is required")
	}
	if in.RequesterID <= 0 {
		return nil, domain.Invalid("requesterId", "is required")
	}

	var out *domain.BloodRequest
	err = e.repo.Do(ctx, func(tx domain.Repository) error {
		if _, err := tx.GetStaffByID(ctx, in.RequesterID); err != nil {
			return err
		}
		req := &domain.BloodRequest{
			RequesterID: in.RequesterID,
			BloodType:   bt,
			Quantity:    in.Quantity,
			RequestedAt: e.clock.Now(),
			Address:     address,
		}
		if err := tx.InsertRequest(ctx, req); err != nil {
			return err
		}
		out, err = tx.GetRequestByID(ctx, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info().Int64("request_id", out.ID).Str("blood_type", string(bt)).Msg("request created")
	return out, nil
}

// Requests lists every request, newest first.
func (e *Engine) Requests(ctx context.Context) ([]domain.BloodRequest, error) {
	return e.repo.GetAllRequests(ctx)
}

// Request fetches one request.
func (e *Engine) Request(ctx context.Context, id int64) (*domain.BloodRequest, error) {
	return e.repo.GetRequestByID(ctx, id)
}
