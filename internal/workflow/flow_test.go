package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/railbook/internal/api/rail"
)

type creatorFunc func(ctx context.Context, req rail.CreateBookingRequest) (*rail.Booking, error)

func (f creatorFunc) CreateBooking(ctx context.Context, req rail.CreateBookingRequest) (*rail.Booking, error) {
	return f(ctx, req)
}

func sampleTrain() *rail.Train {
	return &rail.Train{
		ID:          "t1",
		TrainNumber: "12951",
		TrainName:   "Rajdhani Express",
		Source:      "Delhi",
		Destination: "Mumbai",
		Duration:    "16h",
		Classes: map[string]rail.ClassInfo{
			"SL": {Fare: 500, AvailableSeats: 10},
			"3A": {Fare: 1200, AvailableSeats: 0},
		},
	}
}

func authedFlow(t *testing.T, class string) *Flow {
	t.Helper()
	flow := New()
	require.NoError(t, flow.StartSearch(Criteria{Source: "Delhi", Destination: "Mumbai", Date: "2025-01-01"}))
	require.NoError(t, flow.SelectTrain(sampleTrain(), class, true))
	return flow
}

func TestCriteriaValidation(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantErr  error
	}{
		{"complete", Criteria{"Delhi", "Mumbai", "2025-01-01"}, nil},
		{"missing source", Criteria{"", "Mumbai", "2025-01-01"}, ErrIncompleteCriteria},
		{"missing destination", Criteria{"Delhi", "", "2025-01-01"}, ErrIncompleteCriteria},
		{"missing date", Criteria{"Delhi", "Mumbai", ""}, ErrIncompleteCriteria},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStartSearchRejectsIncompleteCriteria(t *testing.T) {
	flow := New()
	err := flow.StartSearch(Criteria{Source: "Delhi"})
	assert.ErrorIs(t, err, ErrIncompleteCriteria)
	assert.Equal(t, StageSearch, flow.Stage())
}

func TestSelectTrainRequiresLogin(t *testing.T) {
	flow := New()
	require.NoError(t, flow.StartSearch(Criteria{"Delhi", "Mumbai", "2025-01-01"}))

	err := flow.SelectTrain(sampleTrain(), "SL", false)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, StageSearch, flow.Stage())
}

func TestSelectTrainRejectsWaitingList(t *testing.T) {
	flow := New()
	require.NoError(t, flow.StartSearch(Criteria{"Delhi", "Mumbai", "2025-01-01"}))

	assert.ErrorIs(t, flow.SelectTrain(sampleTrain(), "3A", true), ErrClassUnavailable)
	assert.ErrorIs(t, flow.SelectTrain(sampleTrain(), "1A", true), ErrClassUnavailable)
}

func TestSelectTrainSeedsDraft(t *testing.T) {
	flow := authedFlow(t, "SL")

	assert.Equal(t, StagePassengers, flow.Stage())
	require.NotNil(t, flow.Draft)
	assert.Equal(t, "SL", flow.Draft.Class)
	assert.Len(t, flow.Draft.Passengers, 1)
}

func TestFareForTwoPassengers(t *testing.T) {
	// Delhi -> Mumbai, SL at 500, two passengers: 1000, exactly.
	flow := authedFlow(t, "SL")
	flow.Draft.AddPassenger()

	assert.Equal(t, 1000, flow.Fare())
}

func TestFareDefaultsToZeroForUnknownClass(t *testing.T) {
	flow := authedFlow(t, "SL")
	flow.Draft.SetClass("2A")

	assert.Equal(t, 0, flow.Fare())
}

func TestRemoveLastPassengerRefused(t *testing.T) {
	draft := NewDraft()
	assert.ErrorIs(t, draft.RemovePassenger(0), ErrLastPassenger)
	assert.Len(t, draft.Passengers, 1)

	draft.AddPassenger()
	require.NoError(t, draft.RemovePassenger(1))
	assert.Len(t, draft.Passengers, 1)
	assert.ErrorIs(t, draft.RemovePassenger(0), ErrLastPassenger)
}

func TestRemovePassengerBounds(t *testing.T) {
	draft := NewDraft()
	draft.AddPassenger()
	assert.ErrorIs(t, draft.RemovePassenger(-1), ErrNoSuchPassenger)
	assert.ErrorIs(t, draft.RemovePassenger(2), ErrNoSuchPassenger)
}

func TestUpdatePassengerTouchesExactlyOneField(t *testing.T) {
	draft := NewDraft()
	draft.AddPassenger()
	require.NoError(t, draft.UpdatePassenger(0, "name", "Asha"))
	require.NoError(t, draft.UpdatePassenger(0, "age", "34"))
	require.NoError(t, draft.UpdatePassenger(1, "name", "Ravi"))

	other := draft.Passengers[1]
	require.NoError(t, draft.UpdatePassenger(0, "age", "35"))

	assert.Equal(t, rail.Passenger{Name: "Asha", Age: "35", Gender: GenderMale}, draft.Passengers[0])
	assert.Equal(t, other, draft.Passengers[1])
}

func TestUpdatePassengerUnknownField(t *testing.T) {
	draft := NewDraft()
	assert.Error(t, draft.UpdatePassenger(0, "seat", "12A"))
}

func TestDraftValidationIsAggregate(t *testing.T) {
	draft := NewDraft()
	require.NoError(t, draft.UpdatePassenger(0, "name", "Asha"))
	// Age still empty.
	assert.ErrorIs(t, draft.Validate(), ErrIncompleteDraft)

	require.NoError(t, draft.UpdatePassenger(0, "age", "34"))
	assert.NoError(t, draft.Validate())
}

func TestCardValidation(t *testing.T) {
	assert.ErrorIs(t, Card{}.Validate(), ErrIncompleteCard)
	assert.ErrorIs(t, Card{CardNumber: "4111", CardHolder: "A", ExpiryDate: "12/26"}.Validate(), ErrIncompleteCard)

	ok := Card{CardNumber: "4111 1111 1111 1111", CardHolder: "Asha", ExpiryDate: "12/26", CVV: "123"}
	assert.NoError(t, ok.Validate())

	long := ok
	long.CardNumber = "11111111111111111111"
	assert.Error(t, long.Validate())
	long = ok
	long.CVV = "1234"
	assert.Error(t, long.Validate())
}

func TestSubmitPaymentWithoutStateMakesNoCall(t *testing.T) {
	flow := New()
	creator := creatorFunc(func(context.Context, rail.CreateBookingRequest) (*rail.Booking, error) {
		t.Fatal("booking request issued without payment state")
		return nil, nil
	})

	_, err := flow.SubmitPayment(context.Background(), creator, 0)
	assert.ErrorIs(t, err, ErrNoBookingData)
}

func TestSubmitPaymentValidatesCardBeforeCall(t *testing.T) {
	flow := authedFlow(t, "SL")
	require.NoError(t, flow.Draft.UpdatePassenger(0, "name", "Asha"))
	require.NoError(t, flow.Draft.UpdatePassenger(0, "age", "34"))
	require.NoError(t, flow.ProceedToPayment())

	creator := creatorFunc(func(context.Context, rail.CreateBookingRequest) (*rail.Booking, error) {
		t.Fatal("booking request issued with incomplete card")
		return nil, nil
	})
	_, err := flow.SubmitPayment(context.Background(), creator, 0)
	assert.ErrorIs(t, err, ErrIncompleteCard)
}

func TestPaymentFlowReachesConfirmation(t *testing.T) {
	flow := authedFlow(t, "SL")
	require.NoError(t, flow.Draft.UpdatePassenger(0, "name", "Asha"))
	require.NoError(t, flow.Draft.UpdatePassenger(0, "age", "34"))
	flow.Draft.AddPassenger()
	require.NoError(t, flow.Draft.UpdatePassenger(1, "name", "Ravi"))
	require.NoError(t, flow.Draft.UpdatePassenger(1, "age", "36"))
	require.NoError(t, flow.ProceedToPayment())

	flow.Card = Card{CardNumber: "4111", CardHolder: "Asha", ExpiryDate: "12/26", CVV: "123"}

	var got rail.CreateBookingRequest
	creator := creatorFunc(func(_ context.Context, req rail.CreateBookingRequest) (*rail.Booking, error) {
		got = req
		return &rail.Booking{PNR: "PNR1234", Status: rail.StatusConfirmed, TotalFare: 1000}, nil
	})

	booking, err := flow.SubmitPayment(context.Background(), creator, 0)
	require.NoError(t, err)
	assert.Equal(t, "PNR1234", booking.PNR)
	assert.Equal(t, StageConfirmed, flow.Stage())

	assert.Equal(t, "t1", got.TrainID)
	assert.Equal(t, "2025-01-01", got.TravelDate)
	assert.Equal(t, "SL", got.Class)
	assert.Len(t, got.Passengers, 2)

	confirmed, err := flow.Confirmation()
	require.NoError(t, err)
	assert.Equal(t, "PNR1234", confirmed.PNR)
}

func TestPaymentFailureRetainsStateForRetry(t *testing.T) {
	flow := authedFlow(t, "SL")
	require.NoError(t, flow.Draft.UpdatePassenger(0, "name", "Asha"))
	require.NoError(t, flow.Draft.UpdatePassenger(0, "age", "34"))
	require.NoError(t, flow.ProceedToPayment())
	flow.Card = Card{CardNumber: "4111", CardHolder: "Asha", ExpiryDate: "12/26", CVV: "123"}

	boom := errors.New("seats gone")
	failing := creatorFunc(func(context.Context, rail.CreateBookingRequest) (*rail.Booking, error) {
		return nil, boom
	})
	_, err := flow.SubmitPayment(context.Background(), failing, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StagePayment, flow.Stage())
	assert.Len(t, flow.Draft.Passengers, 1)

	retry := creatorFunc(func(context.Context, rail.CreateBookingRequest) (*rail.Booking, error) {
		return &rail.Booking{PNR: "PNR9", Status: rail.StatusConfirmed}, nil
	})
	booking, err := flow.SubmitPayment(context.Background(), retry, 0)
	require.NoError(t, err)
	assert.Equal(t, "PNR9", booking.PNR)
}

func TestSubmitPaymentHonoursContextDuringDelay(t *testing.T) {
	flow := authedFlow(t, "SL")
	require.NoError(t, flow.Draft.UpdatePassenger(0, "name", "Asha"))
	require.NoError(t, flow.Draft.UpdatePassenger(0, "age", "34"))
	require.NoError(t, flow.ProceedToPayment())
	flow.Card = Card{CardNumber: "4111", CardHolder: "Asha", ExpiryDate: "12/26", CVV: "123"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	creator := creatorFunc(func(context.Context, rail.CreateBookingRequest) (*rail.Booking, error) {
		t.Fatal("booking request issued after cancellation")
		return nil, nil
	})
	_, err := flow.SubmitPayment(ctx, creator, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirmationWithoutBooking(t *testing.T) {
	flow := New()
	_, err := flow.Confirmation()
	assert.ErrorIs(t, err, ErrNoBookingData)
}

func TestResetReturnsToSearch(t *testing.T) {
	flow := authedFlow(t, "SL")
	flow.Reset()

	assert.Equal(t, StageSearch, flow.Stage())
	assert.Nil(t, flow.Train)
	assert.Nil(t, flow.Draft)
	assert.Equal(t, Criteria{}, flow.Criteria)
}
