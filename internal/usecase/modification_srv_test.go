package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/dto/request"
	"vessel-booking/pkg/apperror"
	"vessel-booking/pkg/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func modify(t *testing.T, f *fixture, actor Actor, bookingID, kind, value string) error {
	t.Helper()
	_, err := f.svc.Modification.ModifyBooking(context.Background(), actor, bookingID, &request.ModifyBookingRequest{
		Kind:  kind,
		Value: json.RawMessage(value),
	})
	return err
}

func TestModifyDatesMovesClaimsAndAudits(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	resp, err := f.svc.Modification.ModifyBooking(context.Background(), f.customer, id, &request.ModifyBookingRequest{
		Kind:  "dates",
		Value: json.RawMessage(`{"start_date":"2025-06-03","end_date":"2025-06-08"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", resp.Booking.StartDate)
	assert.EqualValues(t, 50000*5, resp.Booking.TotalPriceCents)
	assert.Equal(t, []string{"2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06", "2025-06-07"}, f.claimedBy(t, id))

	var old, updated map[string]any
	require.NoError(t, json.Unmarshal(resp.Modification.OldValue, &old))
	require.NoError(t, json.Unmarshal(resp.Modification.NewValue, &updated))
	assert.Equal(t, "2025-06-01", old["start_date"])
	assert.EqualValues(t, 150000, old["total_price_cents"])
	assert.Equal(t, "2025-06-08", updated["end_date"])

	assert.Len(t, f.notified(notify.TypeBookingModified), 1)
}

func TestModifyDatesConflictLeavesLedger(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)
	f.book(t, Actor{ID: uuid.New()}, v, "2025-06-06", "2025-06-09", 2)

	err := modify(t, f, f.customer, id, "dates", `{"start_date":"2025-06-02","end_date":"2025-06-07"}`)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))
	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03"}, f.claimedBy(t, id))

	mods, err := f.svc.Modification.ListModifications(context.Background(), f.customer, id)
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestModifyGuestsRechecksCapacity(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 6)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	err := modify(t, f, f.customer, id, "guests", `{"guest_count":7}`)
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))

	err = modify(t, f, f.customer, id, "guests", `{"guest_count":0}`)
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))

	require.NoError(t, modify(t, f, f.customer, id, "guests", `{"guest_count":6}`))
	got, err := f.svc.Booking.GetBooking(context.Background(), f.customer, id)
	require.NoError(t, err)
	assert.Equal(t, 6, got.GuestCount)
	assert.EqualValues(t, 150000, got.TotalPriceCents, "vessel price does not depend on guests")
}

func TestModifyGuestsRepricesPackage(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	p := f.pkg(t, 2000, v)

	created, err := f.svc.Booking.CreateBooking(context.Background(), f.customer, &request.CreateBookingRequest{
		PackageID: p.ID.String(), StartDate: "2025-06-01", EndDate: "2025-06-03", GuestCount: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 50000*2+2000*2, created.TotalPriceCents)

	resp, err := f.svc.Modification.ModifyBooking(context.Background(), f.customer, created.ID, &request.ModifyBookingRequest{
		Kind: "guests", Value: json.RawMessage(`{"guest_count":5}`),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 50000*2+2000*5, resp.Booking.TotalPriceCents)
}

func TestModifyRequestsText(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	require.NoError(t, modify(t, f, f.admin, id, "requests", `{"special_requests":"gluten free"}`))

	mods, err := f.svc.Modification.ListModifications(context.Background(), f.customer, id)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, entity.ModificationRequests, mods[0].Kind)
	assert.Equal(t, f.admin.ID.String(), mods[0].ActorID)
	assert.JSONEq(t, `{"special_requests":""}`, string(mods[0].OldValue))
	assert.JSONEq(t, `{"special_requests":"gluten free"}`, string(mods[0].NewValue))
}

func TestModifyTerminalBookingIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)

	completed := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)
	require.NoError(t, f.setStatus(f.admin, completed, entity.BookingStatusConfirmed))
	require.NoError(t, f.setStatus(f.admin, completed, entity.BookingStatusCompleted))

	cancelled := f.book(t, f.customer, v, "2025-07-01", "2025-07-04", 2)
	require.NoError(t, f.setStatus(f.customer, cancelled, entity.BookingStatusCancelled))

	for _, id := range []string{completed, cancelled} {
		err := modify(t, f, f.customer, id, "requests", `{"special_requests":"x"}`)
		assert.Equal(t, apperror.InvalidTransition, apperror.KindOf(err))
	}
}

func TestModifyRejectsMalformedPayloads(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	cases := map[string][2]string{
		"unknown kind":      {"status", `{"status":"CANCELLED"}`},
		"unknown field":     {"guests", `{"guest_count":3,"cabin":"A1"}`},
		"reversed range":    {"dates", `{"start_date":"2025-06-05","end_date":"2025-06-02"}`},
		"bad date":          {"dates", `{"start_date":"June 5","end_date":"2025-06-08"}`},
		"wrong value shape": {"guests", `"three"`},
	}
	for name, c := range cases {
		err := modify(t, f, f.customer, id, c[0], c[1])
		assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err), name)
	}
}

func TestModifyRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	err := modify(t, f, Actor{ID: uuid.New()}, id, "requests", `{"special_requests":"x"}`)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	_, err = f.svc.Modification.ListModifications(context.Background(), Actor{ID: uuid.New()}, id)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))
}

func TestModifyRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	broken := *f.repo
	broken.Modification = failingModifications{}
	svc := NewModificationService(&broken, NewAvailabilityService(&broken, zap.NewNop()), nil, zap.NewNop())

	_, _, err := svc.Apply(context.Background(), f.customer, uuid.MustParse(id), entity.DateChange{
		StartDate: day(t, "2025-06-10"),
		EndDate:   day(t, "2025-06-12"),
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))

	got, err := f.svc.Booking.GetBooking(context.Background(), f.customer, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.StartDate)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03"}, f.claimedBy(t, id))
}

func TestModifyDatesRejectsOverlongStay(t *testing.T) {
	f := newFixture(t)
	v := f.vessel(t, "Amelia", 50000, 10)
	id := f.book(t, f.customer, v, "2025-06-01", "2025-06-04", 2)

	err := modify(t, f, f.customer, id, "dates", `{"start_date":"2025-06-01","end_date":"2030-06-01"}`)
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))
	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03"}, f.claimedBy(t, id))
}
