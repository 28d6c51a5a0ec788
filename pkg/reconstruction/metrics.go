package reconstruction

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/imagebuf"
	"diffinpaint/pkg/solver"
)

// Metrics describes the quality of a reconstruction. The image comparisons
// are taken over the masked pixels only, on exported 8-bit RGB values
// scaled to [0, 1], so they are comparable across colorspaces.
type Metrics struct {
	// Masked is the number of reconstructed pixels.
	Masked int

	// RMSE is the root mean square error against the source.
	RMSE float64

	// PSNR is the peak signal to noise ratio in dB. +Inf for a perfect match.
	PSNR float64

	// SSIM is the global structural similarity index, in [-1, 1].
	SSIM float64

	// EntropyDiff is the absolute difference of the Shannon entropies of the
	// source and result histograms, in nats.
	EntropyDiff float64

	// Residual is the final stencil residual of the chosen algorithm.
	Residual solver.ResidualStats

	Ticks   int
	Passes  int
	Elapsed time.Duration
}

// calculateMetrics compares result against source over result's mask.
func calculateMetrics(source, result *imagebuf.Buffer, alg models.Algorithm) Metrics {
	original, reconstructed := maskedSamples(source, result)
	m := Metrics{
		Masked:   result.MaskedCount(),
		Residual: solver.Residual(result, alg),
	}
	if len(original) == 0 {
		return m
	}

	m.RMSE = calculateRMSE(original, reconstructed)
	m.PSNR = calculatePSNR(m.RMSE)
	m.SSIM = calculateSSIM(original, reconstructed)
	m.EntropyDiff = math.Abs(calculateEntropy(original) - calculateEntropy(reconstructed))
	return m
}

// maskedSamples returns the exported channel values of every masked pixel
// of result and of the same pixel in source.
func maskedSamples(source, result *imagebuf.Buffer) (original, reconstructed []float64) {
	src := source.ToRGBA()
	dst := result.ToRGBA()
	for y := 0; y < result.Height; y++ {
		for x := 0; x < result.Width; x++ {
			if !result.Mask[y*result.Width+x] {
				continue
			}
			so := y*src.Stride + x*4
			do := y*dst.Stride + x*4
			for c := 0; c < 3; c++ {
				original = append(original, float64(src.Pix[so+c])/255)
				reconstructed = append(reconstructed, float64(dst.Pix[do+c])/255)
			}
		}
	}
	return original, reconstructed
}

// calculateRMSE computes the root mean square error
func calculateRMSE(original, reconstructed []float64) float64 {
	n := len(original)
	if n != len(reconstructed) || n == 0 {
		return 0
	}
	return floats.Distance(original, reconstructed, 2) / math.Sqrt(float64(n))
}

// calculatePSNR converts an RMSE on a unit dynamic range into decibels.
func calculatePSNR(rmse float64) float64 {
	if rmse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(1/rmse)
}

// calculateSSIM computes the Structural Similarity Index
func calculateSSIM(original, reconstructed []float64) float64 {
	const L = 1.0 // Dynamic range
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	n := len(original)
	if n != len(reconstructed) || n < 2 {
		return 0
	}

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)

	sigmaX := stat.Variance(original, nil)
	sigmaY := stat.Variance(reconstructed, nil)
	sigmaXY := stat.Covariance(original, reconstructed, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den
	}
	return 0
}

// calculateEntropy computes the Shannon entropy of a 256-bin histogram of
// values in [0, 1].
func calculateEntropy(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	for _, v := range data {
		bin := int(v * (numBins - 1))
		bin = max(0, min(numBins-1, bin))
		hist[bin]++
	}
	floats.Scale(1/float64(len(data)), hist)

	return stat.Entropy(hist)
}
