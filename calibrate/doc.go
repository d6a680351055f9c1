// Package calibrate fits the adept retention model's weights from
// historical review logs. It is offline tooling: the scheduling core never
// invokes it, it only consumes the append-only ReviewLog stream the core
// emits.
//
// It provides two capabilities:
//
//   - [Calibrator.FitWeights] trains the weight vector by mini-batch
//     gradient descent with the [Adam] optimizer and [CosineAnnealing]
//     learning rate schedule. Gradients are numerical central differences
//     on the log loss of predicted retrievability against the binary
//     recall outcome.
//
//   - [Calibrator.OptimalRetention] finds the target retention fraction
//     that minimizes simulated review cost per retained card, using the
//     review durations recorded in the logs.
//
// # Usage
//
//	cal := calibrate.NewCalibrator(calibrate.Config{})
//	weights, err := cal.FitWeights(ctx, logs)
//	retention, err := cal.OptimalRetention(ctx, weights, logs)
//
// # Data requirements
//
// Weight fitting needs at least MiniBatchSize cross-day reviews (default
// 512). Optimal retention additionally requires DurationMs on every log.
package calibrate
