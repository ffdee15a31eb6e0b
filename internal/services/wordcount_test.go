package services

import "testing"

func TestFallbackEstimate(t *testing.T) {
	cases := []struct {
		sizeBytes int
		want      int
	}{
		{0, 0},
		{5, 0},
		{6, 1},
		{600000, 100000},
	}
	for _, tc := range cases {
		got := FallbackEstimate(tc.sizeBytes)
		if got.WordCount != tc.want {
			t.Fatalf("%d bytes: want=%d got=%d", tc.sizeBytes, tc.want, got.WordCount)
		}
		if got.ExtractionQuality != ExtractionQualityEstimated {
			t.Fatalf("quality: want=%q got=%q", ExtractionQualityEstimated, got.ExtractionQuality)
		}
	}
}
