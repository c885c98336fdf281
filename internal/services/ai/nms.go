package ai

import (
	"image"
	"sort"
)

// candidate is a scored box before suppression.
type candidate struct {
	rect  image.Rectangle
	score float32
}

// iou returns the intersection over union of two rectangles.
func iou(a, b image.Rectangle) float32 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if union <= 0 {
		return 0
	}
	return float32(interArea) / float32(union)
}

// greedyNMS keeps the highest scoring boxes, dropping any box overlapping a
// kept one by more than threshold. At most topK boxes are kept when topK > 0.
func greedyNMS(candidates []candidate, threshold float32, topK int) []candidate {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	kept := make([]candidate, 0, len(candidates))
	suppressed := make([]bool, len(candidates))

	for i := range candidates {
		if suppressed[i] {
			continue
		}
		kept = append(kept, candidates[i])
		if topK > 0 && len(kept) == topK {
			break
		}
		for j := i + 1; j < len(candidates); j++ {
			if !suppressed[j] && iou(candidates[i].rect, candidates[j].rect) > threshold {
				suppressed[j] = true
			}
		}
	}

	return kept
}
