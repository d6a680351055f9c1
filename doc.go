// Package adept implements the core of an adaptive mastery-learning
// scheduler: a psychometric ability model, a mastery stop rule, a
// multi-factor next-item scorer, and a spaced-repetition retention
// scheduler.
//
// The package is a pure computation core. Every operation is a synchronous
// function of an input state snapshot plus injected configuration: no
// network, no persistence, no background goroutines. Callers own
// concurrency control (one writer per learner at a time) and durable
// storage of the ObjectiveState and Card records the core hands back.
//
// The four components and their data flow:
//
//	attempt event  → Estimator.Update  (ability θ̂ and its SE per objective)
//	               → Evaluate          (Probing vs Mastered stop rule)
//	               → Scorer.Next       (which item to serve next)
//	review rating  → Scheduler.Review  (memory decay, next due date)
//	session start  → BuildQueue        (time-boxed, overdue-first review queue)
//
// Basic usage:
//
//	est, err := adept.NewEstimator(adept.EstimatorConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state := adept.NewObjectiveState("algebra.linear")
//	state, err = est.Update(state, true, 0.2)
//
// Item metadata, blueprint weights and exposure snapshots are materialized
// by the caller before invocation. The numeric signals in ScoreResult and
// Signals are sufficient for an explanation layer to render a "why this
// next" justification without re-deriving any math.
//
// The adept/calibrate subpackage trains the retention model's weights from
// historical review logs; the core never invokes it.
package adept
