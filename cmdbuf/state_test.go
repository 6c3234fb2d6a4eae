package cmdbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "RECORDING", StateRecording.String())
	assert.Equal(t, "State(99)", State(99).String())
}

func TestRequireAnyPanicsOutsideAllowedSet(t *testing.T) {
	assert.Panics(t, func() {
		requireAny("op", StateNew, StateRecording, StateReady)
	})
}

func TestRequireAnyPassesWithinAllowedSet(t *testing.T) {
	assert.NotPanics(t, func() {
		requireAny("op", StateRecording, StateRecording, StateReady)
	})
}

func TestErrBadTransitionMessage(t *testing.T) {
	err := ErrBadTransition{Op: "dispatch", From: StateNew}
	assert.Equal(t, "cmdbuf: dispatch invalid from state NEW", err.Error())
}
