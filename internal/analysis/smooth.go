package analysis

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Window names accepted by Smooth
const (
	WindowFlat     = "flat"
	WindowHanning  = "hanning"
	WindowHamming  = "hamming"
	WindowBartlett = "bartlett"
	WindowBlackman = "blackman"
)

var (
	ErrWindowTooLarge = errors.New("input needs to be at least as long as the window")
	ErrUnknownWindow  = errors.New("unknown smoothing window")
)

// Windows lists the supported window names
func Windows() []string {
	return []string{WindowFlat, WindowHanning, WindowHamming, WindowBartlett, WindowBlackman}
}

// weights returns the normalized window of length n
func weights(name string, n int) ([]float64, error) {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}

	switch strings.ToLower(name) {
	case WindowFlat:
	case WindowHanning:
		window.Hann(w)
	case WindowHamming:
		window.Hamming(w)
	case WindowBartlett:
		window.Triangular(w)
	case WindowBlackman:
		window.Blackman(w)
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownWindow, name, strings.Join(Windows(), ", "))
	}

	floats.Scale(1/floats.Sum(w), w)
	return w, nil
}

// Smooth convolves data with a normalized window after mirroring windowLen-1
// samples onto each end, so the edges are not dragged toward zero. The result
// has len(data)+windowLen-1 samples. Windows shorter than 3 return a copy of
// data unchanged.
func Smooth(data []float64, windowLen int, name string) ([]float64, error) {
	if len(data) < windowLen {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrWindowTooLarge, len(data), windowLen)
	}
	if windowLen < 3 {
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	}

	w, err := weights(name, windowLen)
	if err != nil {
		return nil, err
	}

	padded := reflect(data, windowLen)
	out := make([]float64, len(padded)-windowLen+1)
	for i := range out {
		out[i] = floats.Dot(w, padded[i:i+windowLen])
	}
	return out, nil
}

// SmoothAligned smooths data and trims the result to len(data) samples
// centred on the input, for plotting against the raw series.
func SmoothAligned(data []float64, windowLen int, name string) ([]float64, error) {
	y, err := Smooth(data, windowLen, name)
	if err != nil {
		return nil, err
	}
	if len(y) == len(data) {
		return y, nil
	}
	half := (windowLen - 1) / 2
	return y[half : half+len(data)], nil
}

// reflect mirrors n-1 samples about each end, excluding the end samples themselves
func reflect(data []float64, n int) []float64 {
	last := len(data) - 1
	out := make([]float64, 0, len(data)+2*(n-1))
	for i := n - 1; i > 0; i-- {
		out = append(out, data[i])
	}
	out = append(out, data...)
	for i := last - 1; i >= last-n+1; i-- {
		out = append(out, data[i])
	}
	return out
}
