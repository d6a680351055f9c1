package calibrate

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/sky-flux/adept"
)

var (
	// ErrEmptyLogs is returned when no review logs are provided.
	ErrEmptyLogs = errors.New("calibrate: no review logs provided")

	// ErrInsufficientData is returned when cross-day reviews are fewer
	// than MiniBatchSize.
	ErrInsufficientData = errors.New("calibrate: insufficient cross-day reviews")
)

// Config configures the training process.
// Zero values are replaced with sensible defaults.
type Config struct {
	Epochs        int     `json:"epochs" yaml:"epochs"`                   // default 5
	MiniBatchSize int     `json:"mini_batch_size" yaml:"mini_batch_size"` // default 512
	LearningRate  float64 `json:"learning_rate" yaml:"learning_rate"`     // default 0.04
	MaxSeqLen     int     `json:"max_seq_len" yaml:"max_seq_len"`         // default 64
}

// Calibrator trains retention weights from review logs using mini-batch
// gradient descent with Adam and a cosine annealing learning rate.
type Calibrator struct {
	epochs        int
	miniBatchSize int
	learningRate  float64
	maxSeqLen     int
}

// NewCalibrator creates a Calibrator with the given config.
// Zero-valued fields receive defaults: Epochs=5, MiniBatchSize=512,
// LearningRate=0.04, MaxSeqLen=64.
func NewCalibrator(cfg Config) *Calibrator {
	c := &Calibrator{
		epochs:        cfg.Epochs,
		miniBatchSize: cfg.MiniBatchSize,
		learningRate:  cfg.LearningRate,
		maxSeqLen:     cfg.MaxSeqLen,
	}
	if c.epochs == 0 {
		c.epochs = 5
	}
	if c.miniBatchSize == 0 {
		c.miniBatchSize = 512
	}
	if c.learningRate == 0 {
		c.learningRate = 0.04
	}
	if c.maxSeqLen == 0 {
		c.maxSeqLen = 64
	}
	return c
}

// FitWeights trains the retention weights on the given logs, starting from
// adept.DefaultWeights.
//
// Returns ErrEmptyLogs if logs is empty, or ErrInsufficientData (along
// with the defaults) if cross-day reviews are fewer than MiniBatchSize.
// The context can cancel a long-running fit; the best weights so far are
// returned with the context error.
func (c *Calibrator) FitWeights(ctx context.Context, logs []adept.ReviewLog) (adept.Weights, error) {
	if len(logs) == 0 {
		return adept.Weights{}, ErrEmptyLogs
	}

	data := groupLogs(logs)

	// Truncate each card's reviews to maxSeqLen.
	for cardID, reviews := range data {
		if len(reviews) > c.maxSeqLen {
			data[cardID] = reviews[:c.maxSeqLen]
		}
	}

	numReviews := countCrossDayReviews(data)
	if numReviews < c.miniBatchSize {
		return adept.DefaultWeights, ErrInsufficientData
	}

	weights := adept.DefaultWeights
	tMax := int(math.Ceil(float64(numReviews)/float64(c.miniBatchSize))) * c.epochs
	adam := NewAdam(c.learningRate)
	ca := NewCosineAnnealing(c.learningRate, tMax)
	rng := rand.New(rand.NewSource(42))

	// Sorted card IDs for a deterministic shuffle.
	cardIDs := make([]int64, 0, len(data))
	for id := range data {
		cardIDs = append(cardIDs, id)
	}
	sort.Slice(cardIDs, func(i, j int) bool { return cardIDs[i] < cardIDs[j] })

	bestWeights := weights
	bestLoss := math.Inf(1)

	for epoch := 0; epoch < c.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return bestWeights, err
		}

		rng.Shuffle(len(cardIDs), func(i, j int) {
			cardIDs[i], cardIDs[j] = cardIDs[j], cardIDs[i]
		})

		batch := make(map[int64][]review)
		crossDay := 0

		step := func() {
			grad := numericalGradient(weights, batch)
			adam.SetLR(ca.LR())
			weights = adept.ClampWeights(adam.Update(weights, grad))
			ca.Step()
		}

		for _, cardID := range cardIDs {
			reviews := data[cardID]
			batch[cardID] = reviews

			for _, r := range reviews {
				if r.elapsedDays >= 1.0 {
					crossDay++
				}
			}

			if crossDay >= c.miniBatchSize {
				step()
				batch = make(map[int64][]review)
				crossDay = 0
			}
		}

		// Remaining reviews at end of epoch.
		if crossDay > 0 {
			step()
		}

		if epochLoss := batchLoss(weights, data); epochLoss < bestLoss {
			bestLoss = epochLoss
			bestWeights = weights
		}
	}

	return bestWeights, nil
}

// Loss computes the average log loss of the weights over all cross-day
// reviews in the logs. Convenience wrapper used to compare weight sets.
func (c *Calibrator) Loss(weights adept.Weights, logs []adept.ReviewLog) float64 {
	return batchLoss(weights, groupLogs(logs))
}
