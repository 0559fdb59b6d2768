package study

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// Variant selects between the two scheduling behaviours a collection may
// use. The zero value is not useful; start from VariantStd or VariantV2.
type Variant struct {
	Name string
	// PreviewQueue answers cards of non-rescheduling filtered decks through
	// the preview queue instead of parking them in review.
	PreviewQueue bool
	// SeparateBuryQueues keeps manual and sibling burial apart. Without it
	// every bury uses the sibling queue.
	SeparateBuryQueues bool
	// LearnCountBySteps counts sub-day learning cards by the steps they can
	// still do today rather than as one card each.
	LearnCountBySteps bool
	// RollUpReview adds subdeck review counts into their parents in the
	// deck tree.
	RollUpReview bool
	// ThreeButtonLearning offers Again/Good/Easy for new and learning cards.
	ThreeButtonLearning bool
	// ExcludeLearningFromFiltered keeps learning cards out of filtered
	// decks.
	ExcludeLearningFromFiltered bool
}

const (
	VariantNameStd = "std"
	VariantNameV2  = "v2"
)

func VariantStd() Variant {
	return Variant{
		Name:                        VariantNameStd,
		LearnCountBySteps:           true,
		RollUpReview:                true,
		ThreeButtonLearning:         true,
		ExcludeLearningFromFiltered: true,
	}
}

func VariantV2() Variant {
	return Variant{
		Name:               VariantNameV2,
		PreviewQueue:       true,
		SeparateBuryQueues: true,
	}
}

// ParseVariant resolves a variant by name.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case VariantNameStd:
		return VariantStd(), nil
	case VariantNameV2, "":
		return VariantV2(), nil
	}
	return Variant{}, fmt.Errorf("unknown scheduler variant %q", name)
}

func (v Variant) manualBuryQueue() domain.QueueType {
	if v.SeparateBuryQueues {
		return domain.QueueManuallyBuried
	}
	return domain.QueueSiblingBuried
}

// filterableQueues lists the queues a filtered deck may pull cards from.
func (v Variant) filterableQueues() []domain.QueueType {
	if v.ExcludeLearningFromFiltered {
		return []domain.QueueType{domain.QueueNew, domain.QueueReview}
	}
	return []domain.QueueType{domain.QueueNew, domain.QueueLearning, domain.QueueReview, domain.QueueDayLearn}
}
