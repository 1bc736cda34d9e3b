// Package progress provides a vendor-neutral representation of in-progress
// operation state and composable consumers that aggregate, throttle, and
// relay streams of that state safely across goroutines.
//
// Libraries emit [Snapshot] values to a [Tracker] without depending on how
// the progress is displayed. Multiple independent sources (parallel workers,
// nested sub-operations) can be merged into one coherent, ordered stream via
// [TrackAggregator] or [StreamCombiner], rate-limited with [Pacer], and
// observed downstream by any number of trackers in fan-out.
//
// # Quick start
//
// Report the progress of a simple loop:
//
//	report, err := progress.New("Unpacking files", int64(len(files)))
//	if err != nil {
//	    return err
//	}
//	for range files {
//	    report = report.WithIncremented(1)
//	    tracker.Report(report)
//	}
//
// Compose three parallel workers into one hierarchical stream, throttled to
// 20 deliveries per second:
//
//	pacer := progress.NewPacer(downstream, progress.PaceAtHz(20))
//	defer pacer.Close()
//
//	base := progress.Must(progress.New("Synchronizing", 3))
//	agg := progress.NewTrackAggregator(pacer, base, 3)
//	for i := range 3 {
//	    track := agg.StartTrack(i, fmt.Sprintf("worker %d", i))
//	    go run(track)
//	}
//
// # Snapshots
//
// A snapshot carries a message, completed vs expected-total work counts, the
// unit those counts are measured in, and an ordered list of child snapshots
// for hierarchical progress. The immutable form ([Report]) is safe to retain
// indefinitely; the mutable form ([MutableReport]) avoids allocation in hot
// loops but is only stable for the span of one Tracker.Report call.
//
// # Fault isolation
//
// A panicking downstream tracker never takes the producer down: wrap it in
// [NewFaultBarrier], or let [Pacer] contain the fault on its own goroutine.
// Progress is ephemeral, so failed deliveries are logged and suppressed,
// never retried.
package progress
