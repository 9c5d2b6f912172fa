package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(value byte) []byte {
	v := make([]byte, GraySize)
	for i := range v {
		v[i] = value
	}
	return v
}

func TestGrayDistance_Identical(t *testing.T) {
	a := uniformGray(128)
	b := uniformGray(128)
	d, ok := GrayDistance(a, b, false, false)
	require.True(t, ok)
	assert.Equal(t, 0.0, d)
}

func TestGrayDistance_MaxDifference(t *testing.T) {
	d, ok := GrayDistance(uniformGray(0), uniformGray(255), false, false)
	require.True(t, ok)
	assert.Equal(t, 1.0, d)
}

func TestGrayDistance_Symmetric(t *testing.T) {
	a := uniformGray(10)
	b := uniformGray(200)
	for i := 0; i < GraySize; i += 3 {
		a[i] = byte(i % 256)
	}
	dab, okab := GrayDistance(a, b, false, false)
	dba, okba := GrayDistance(b, a, false, false)
	require.True(t, okab)
	require.True(t, okba)
	assert.Equal(t, dab, dba)
}

func TestGrayDistance_WrongLength(t *testing.T) {
	_, ok := GrayDistance(make([]byte, 10), uniformGray(0), false, false)
	assert.False(t, ok)
}

func TestGrayDistance_IgnoreBlackExcludesSharedBand(t *testing.T) {
	// Half the pixels are black in both vectors, the rest differ by 51
	// (0.2 after normalization). Ignoring black must not dilute the mean.
	a := uniformGray(100)
	b := uniformGray(151)
	for i := 0; i < GraySize/2; i++ {
		a[i] = 5
		b[i] = 10
	}

	plain, ok := GrayDistance(a, b, false, false)
	require.True(t, ok)
	assert.InDelta(t, 0.1, plain, 0.01)

	masked, ok := GrayDistance(a, b, true, false)
	require.True(t, ok)
	assert.InDelta(t, 0.2, masked, 0.001)
}

func TestGrayDistance_IgnoreBlackNeedsBothSidesDark(t *testing.T) {
	a := uniformGray(5)
	b := uniformGray(200)
	d, ok := GrayDistance(a, b, true, false)
	require.True(t, ok)
	assert.Greater(t, d, 0.7)
}

func TestGrayDistance_AllPixelsExcluded(t *testing.T) {
	_, ok := GrayDistance(uniformGray(0), uniformGray(5), true, false)
	assert.False(t, ok)

	_, ok = GrayDistance(uniformGray(255), uniformGray(240), false, true)
	assert.False(t, ok)
}

func TestFlipGray_TwiceIsIdentity(t *testing.T) {
	v := make([]byte, GraySize)
	for i := range v {
		v[i] = byte(i * 7 % 256)
	}
	assert.Equal(t, v, FlipGray(FlipGray(v)))
}

func TestFlipGray_MirrorsRows(t *testing.T) {
	v := make([]byte, GraySize)
	for row := 0; row < ThumbSide; row++ {
		for col := 0; col < ThumbSide; col++ {
			v[row*ThumbSide+col] = byte(col)
		}
	}
	flipped := FlipGray(v)
	for row := 0; row < ThumbSide; row++ {
		for col := 0; col < ThumbSide; col++ {
			assert.Equal(t, byte(ThumbSide-1-col), flipped[row*ThumbSide+col])
		}
	}
}

func TestFlipFingerprints_KeepsKeysAndNils(t *testing.T) {
	fps := map[float64][]byte{
		1.5: uniformGray(9),
		3.0: nil,
	}
	flipped := FlipFingerprints(fps)
	require.Len(t, flipped, 2)
	assert.Nil(t, flipped[3.0])
	assert.Equal(t, uniformGray(9), flipped[1.5])
}

func TestIsTooDark(t *testing.T) {
	assert.True(t, IsTooDark(uniformGray(10)))
	assert.False(t, IsTooDark(uniformGray(128)))
	assert.True(t, IsTooDark(nil))
}
