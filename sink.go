package mandel

// ResultSink receives results of the current generation. Implementations
// must be safe for concurrent use.
type ResultSink interface {
	Deliver(TileResult)
	Progress(Progress)
}

// SinkFuncs adapts plain functions to ResultSink. Nil fields are skipped.
type SinkFuncs struct {
	OnTile     func(TileResult)
	OnProgress func(Progress)
}

func (s SinkFuncs) Deliver(tr TileResult) {
	if s.OnTile != nil {
		s.OnTile(tr)
	}
}

func (s SinkFuncs) Progress(p Progress) {
	if s.OnProgress != nil {
		s.OnProgress(p)
	}
}
