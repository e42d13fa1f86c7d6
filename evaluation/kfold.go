package evaluation

import (
	"math/rand/v2"
)

// DefaultFolds is the number of folds used when none is configured.
const DefaultFolds = 5

// Fold holds the row indices of one cross-validation round.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits row indices into NSplits consecutive test folds. With Shuffle the indices
// are permuted first using Seed. The first n%NSplits folds get one extra row.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a KFold splitter. nSplits below 2 falls back to DefaultFolds.
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	if nSplits < 2 {
		nSplits = DefaultFolds
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split returns the folds for nSamples rows. Every row appears in exactly one test fold.
func (kf *KFold) Split(nSamples int) []Fold {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	start := 0
	for i := range folds {
		size := foldSize
		if i < remainder {
			size++
		}
		end := start + size

		test := make([]int, size)
		copy(test, indices[start:end])

		train := make([]int, 0, nSamples-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)

		folds[i] = Fold{Train: train, Test: test}
		start = end
	}
	return folds
}
