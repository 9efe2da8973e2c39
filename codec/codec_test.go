package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type weightCell struct {
	EdgeID string
	Weight float64
}

func TestEnvelopeRoundTrip(t *testing.T) {
	var e Envelope
	e.Version = CurrentVersion
	require.NoError(t, e.Put("weights", []weightCell{{EdgeID: "a", Weight: 1.5}}))
	require.NoError(t, e.Put("unreachable", []string{"target-1"}))

	raw, err := Encode(e)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	var cells []weightCell
	ok, err := decoded.Get("weights", &cells)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []weightCell{{EdgeID: "a", Weight: 1.5}}, cells)

	var proofs []string
	ok, err = decoded.Get("unreachable", &proofs)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"target-1"}, proofs)
}

func TestGetUnknownSectionIsIgnoredNotError(t *testing.T) {
	var e Envelope
	e.Version = CurrentVersion
	var out string
	ok, err := e.Get("nope", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x09})
	require.Error(t, err)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	var e Envelope
	e.Version = CurrentVersion
	require.NoError(t, e.Put("x", 1))
	raw, err := Encode(e)
	require.NoError(t, err)
	_, err = Decode(raw[:len(raw)-1])
	require.Error(t, err)
}
