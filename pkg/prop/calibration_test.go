package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServoCalibration_Pulse(t *testing.T) {
	cal := DefaultCalibration()

	tests := []struct {
		servo    ServoName
		pos      Position
		expected int
	}{
		{RightLid, Open, 200},
		{RightLid, Closed, 500},
		{LeftLid, Open, 500},
		{LeftLid, Closed, 200},
		{Pupil, Open, 300},
		{Pupil, Closed, 550},
	}

	for _, tt := range tests {
		got := cal[tt.servo].Pulse(tt.pos)
		assert.Equal(t, tt.expected, got, "%s %s", tt.servo, tt.pos)
	}
}

func TestCalibration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Calibration)
		wantErr bool
	}{
		{"default", func(Calibration) {}, false},
		{"missing pupil", func(c Calibration) { delete(c, Pupil) }, true},
		{"pulse too high", func(c Calibration) {
			sc := c[LeftLid]
			sc.Open = MaxPulse + 1
			c[LeftLid] = sc
		}, true},
		{"negative pulse", func(c Calibration) {
			sc := c[RightLid]
			sc.Closed = -1
			c[RightLid] = sc
		}, true},
		{"max pulse", func(c Calibration) {
			sc := c[RightLid]
			sc.Closed = MaxPulse
			c[RightLid] = sc
		}, false},
		{"shared channel", func(c Calibration) {
			sc := c[Pupil]
			sc.Channel = 0
			c[Pupil] = sc
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := DefaultCalibration()
			tt.mutate(cal)
			err := cal.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckPulse(t *testing.T) {
	require.NoError(t, CheckPulse(0))
	require.NoError(t, CheckPulse(MaxPulse))
	require.ErrorIs(t, CheckPulse(MaxPulse+1), ErrPulseRange)
	require.ErrorIs(t, CheckPulse(-5), ErrPulseRange)
}
