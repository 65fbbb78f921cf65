package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_Validate_ZeroValue(t *testing.T) {
	testCases := []struct {
		name     string
		validate func() error
		want     error
	}{
		{"cancel order", commands.CancelOrderCommand{}.Validate, commands.ErrCancelOrderCommandIsNotConstructed},
		{"confirm batch", commands.ConfirmBatchCommand{}.Validate, commands.ErrConfirmBatchCommandIsNotConstructed},
		{"create courier", commands.CreateCourierCommand{}.Validate, commands.ErrCreateCourierCommandIsNotConstructed},
		{"create order", commands.CreateOrderCommand{}.Validate, commands.ErrCreateOrderCommandIsNotConstructed},
		{"respond to offer", commands.RespondToOfferCommand{}.Validate, commands.ErrRespondToOfferCommandIsNotConstructed},
		{"run dispatch sweep", commands.RunDispatchSweepCommand{}.Validate, commands.ErrRunDispatchSweepCommandIsNotConstructed},
		{"update presence", commands.UpdateCourierPresenceCommand{}.Validate, commands.ErrUpdateCourierPresenceCommandIsNotConstructed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			err := tc.validate()

			// Assert
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewCancelOrderCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		// Arrange
		orderID, requesterID := kernel.NewUUID(), kernel.NewUUID()

		// Act
		cmd, err := commands.NewCancelOrderCommand(orderID, requesterID)

		// Assert
		require.NoError(t, err)
		assert.True(t, orderID.IsEqual(cmd.OrderID()))
		assert.True(t, requesterID.IsEqual(cmd.RequesterID()))
		assert.NoError(t, cmd.Validate())
	})

	t.Run("both ids missing", func(t *testing.T) {
		// Act
		_, err := commands.NewCancelOrderCommand(kernel.UUID{}, kernel.UUID{})

		// Assert
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewUpdateCourierPresenceCommand(t *testing.T) {
	t.Run("without location", func(t *testing.T) {
		// Act
		cmd, err := commands.NewUpdateCourierPresenceCommand(kernel.NewUUID(), false, nil)

		// Assert
		require.NoError(t, err)
		assert.False(t, cmd.Online())
		assert.Nil(t, cmd.Location())
	})

	t.Run("copies the location", func(t *testing.T) {
		// Arrange
		loc := location(t, baseLat, baseLon)

		// Act
		cmd, err := commands.NewUpdateCourierPresenceCommand(kernel.NewUUID(), true, &loc)
		loc = location(t, 0, 0)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cmd.Location())
		assert.InDelta(t, baseLat, cmd.Location().Lat(), 1e-9)
	})

	t.Run("zero value location", func(t *testing.T) {
		// Act
		_, err := commands.NewUpdateCourierPresenceCommand(kernel.NewUUID(), true, &kernel.Location{})

		// Assert
		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})

	t.Run("zero id", func(t *testing.T) {
		// Act
		_, err := commands.NewUpdateCourierPresenceCommand(kernel.UUID{}, true, nil)

		// Assert
		require.Error(t, err)
	})
}

func TestNewRunDispatchSweepCommand(t *testing.T) {
	testCases := []struct {
		name    string
		trigger string
		want    string
	}{
		{name: "cron", trigger: "cron", want: "cron"},
		{name: "http", trigger: "http", want: "http"},
		{name: "empty", trigger: "", want: "unspecified"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			cmd := commands.NewRunDispatchSweepCommand(tc.trigger)

			// Assert
			assert.Equal(t, tc.want, cmd.Trigger())
			assert.NoError(t, cmd.Validate())
		})
	}
}

func TestNewConfirmBatchCommand_KeepsCallerOrder(t *testing.T) {
	// Arrange
	ids := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()}

	// Act
	cmd, err := commands.NewConfirmBatchCommand(kernel.NewUUID(), kernel.NewUUID(), ids)
	ids[0] = kernel.NewUUID()

	// Assert
	require.NoError(t, err)
	got := cmd.OrderIDs()
	require.Len(t, got, 3)
	assert.False(t, got[0].IsEqual(ids[0]), "the command keeps its own copy")
	assert.True(t, got[1].IsEqual(ids[1]))
	assert.True(t, got[2].IsEqual(ids[2]))
}

func TestNewRespondToOfferCommand_Validation(t *testing.T) {
	t.Run("missing ids", func(t *testing.T) {
		// Act
		_, err := commands.NewRespondToOfferCommand(kernel.UUID{}, kernel.NewUUID(), true, nil)

		// Assert
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("reject without location", func(t *testing.T) {
		// Act
		cmd, err := commands.NewRespondToOfferCommand(kernel.NewUUID(), kernel.NewUUID(), false, nil)

		// Assert
		require.NoError(t, err)
		assert.False(t, cmd.Accept())
		assert.Nil(t, cmd.Location())
	})
}
