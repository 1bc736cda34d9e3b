package progress_test

import (
	"testing"

	"github.com/meigma/progress"
)

func BenchmarkWithIncremented(b *testing.B) {
	r := progress.Must(progress.New("bench", 1<<30))
	b.ReportAllocs()
	for b.Loop() {
		r = r.WithIncremented(1)
	}
}

func BenchmarkWithChildWideTree(b *testing.B) {
	children := make([]*progress.Report, 64)
	for i := range children {
		children[i] = progress.NewIndeterminate("child")
	}
	root := progress.Must(progress.New("bench", 64)).WithChildren(children)
	leaf := progress.Must(progress.New("leaf", 100))

	b.ReportAllocs()
	for b.Loop() {
		root = root.WithChild(32, leaf)
	}
}

func BenchmarkMutableIncrement(b *testing.B) {
	m, err := progress.NewMutable("bench", 1<<30)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		m.Increment(1)
	}
}

func BenchmarkEquivalentShape(b *testing.B) {
	children := make([]*progress.Report, 16)
	for i := range children {
		children[i] = progress.Must(progress.New("child", 100)).WithCompleted(int64(i))
	}
	x := progress.Must(progress.New("bench", 16)).WithChildren(children)
	y := x.WithChild(7, children[7].WithIncremented(1))

	b.ReportAllocs()
	for b.Loop() {
		progress.EquivalentShape(x, y)
	}
}

func BenchmarkAggregatorReport(b *testing.B) {
	agg := progress.NewTrackAggregator(progress.Discard, progress.Must(progress.New("bench", 8)), 8)
	track := agg.StartTrack(0, "t0")
	sub := progress.Must(progress.New("sub", 1<<30))

	b.ReportAllocs()
	for b.Loop() {
		sub = sub.WithIncremented(1)
		track.Report(sub)
	}
}

func BenchmarkPacerReport(b *testing.B) {
	p := progress.NewPacer(progress.Discard, progress.PaceAtHz(30))
	defer p.Close() //nolint:errcheck // Close never fails
	r := progress.Must(progress.New("bench", 1<<30))

	b.ReportAllocs()
	for b.Loop() {
		r = r.WithIncremented(1)
		p.Report(r)
	}
}
