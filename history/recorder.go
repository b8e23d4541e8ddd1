package history

import "github.com/zeu5/maze-rl/types"

const defaultBatch = 500

// Recorder is an observer that writes every episode of a run to
// the store, batching the inserts. Call Flush when the run ends.
type Recorder struct {
	store   *Store
	runID   string
	batch   int
	pending []types.EpisodeSummary
}

var _ types.Observer = &Recorder{}

func NewRecorder(store *Store, runID string) *Recorder {
	return &Recorder{
		store:   store,
		runID:   runID,
		batch:   defaultBatch,
		pending: make([]types.EpisodeSummary, 0, defaultBatch),
	}
}

func (r *Recorder) OnStep(_ types.StepInfo) error {
	return nil
}

func (r *Recorder) OnEpisodeEnd(e types.EpisodeSummary) error {
	e.Trace = nil
	r.pending = append(r.pending, e)
	if len(r.pending) >= r.batch {
		return r.Flush()
	}
	return nil
}

func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.RecordEpisodes(r.runID, r.pending); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
