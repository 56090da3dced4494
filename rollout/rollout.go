// rollout runs a policy against many independent environments in parallel and
// aggregates their outcomes.
//
// Each worker owns an Episode over its own seeded random source, so workers never share
// mutable state; finished trajectories are fanned in to a single estimator which folds them
// into running statistics and reports progress through a caller-supplied hook.
package rollout

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"iconclick/atomic_float"
	"iconclick/environment"
	"iconclick/raster"
	"iconclick/scenario"

	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/exp/rand"
)

// Transition is one step of a trajectory.
type Transition struct {
	Action environment.Action
	Reward float64
	// State is the planar (CHW) observation the action was taken in, when recording is on.
	State []uint8
}

// Trajectory is one finished episode.
type Trajectory struct {
	EpisodeID uuid.UUID
	Worker    int
	Task      scenario.TaskDescription
	Target    scenario.BoundingBox
	Steps     []Transition
	Return    float64
	Eval      environment.Evaluation
	// Final is the terminal observation, kept for display.
	Final *image.RGBA
}

// Progress is a snapshot of the rollout statistics.
type Progress struct {
	Episodes    int
	Successes   int
	SuccessRate float64
	MeanReturn  float64
	MeanSteps   float64
	Last        *Trajectory
}

// ProgressFunc is a callback by which Run lends progress details after every episode.
// It is synchronous and should complete quickly.
type ProgressFunc func(context.Context, Progress)

// Stats accumulates episode outcomes. It has a single writer (the estimator) and may be
// read concurrently.
type Stats struct {
	episodes    atomic_float.AtomicFloat64
	successes   atomic_float.AtomicFloat64
	totalReturn atomic_float.AtomicFloat64
	totalSteps  atomic_float.AtomicFloat64
}

func (st *Stats) add(traj *Trajectory) {
	st.episodes.AtomicAdd(1)
	st.successes.AtomicAdd(float64(traj.Eval.Success))
	st.totalReturn.AtomicAdd(traj.Return)
	st.totalSteps.AtomicAdd(float64(len(traj.Steps)))
}

// Snapshot returns the current statistics; Last is left nil.
func (st *Stats) Snapshot() (p Progress) {
	n := st.episodes.AtomicRead()
	p.Episodes = int(n)
	p.Successes = int(st.successes.AtomicRead())
	if n > 0 {
		p.SuccessRate = float64(p.Successes) / n
		p.MeanReturn = st.totalReturn.AtomicRead() / n
		p.MeanSteps = st.totalSteps.AtomicRead() / n
	}
	return
}

// Options control a rollout. Zero values take defaults.
type Options struct {
	Workers int
	// Episodes stops the rollout after this many episodes; zero runs until ctx is done.
	Episodes int
	Policy   Policy
	Progress ProgressFunc
}

// Play runs one full episode of policy on ep, which is reset first.
func Play(ep *environment.Episode, policy Policy, rng *rand.Rand, record bool) (*Trajectory, error) {
	obs, task, err := ep.Reset()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{
		EpisodeID: ep.ID(),
		Task:      task,
		Target:    ep.Target(),
	}
	for done := false; !done; {
		action := policy.Act(ep, rng)
		step := Transition{Action: action}
		if record {
			step.State = raster.CHW(obs)
		}

		var info *environment.Evaluation
		if obs, step.Reward, done, info, err = ep.Step(action); err != nil {
			return nil, fmt.Errorf("episode %v step %d: %w", traj.EpisodeID, len(traj.Steps), err)
		}
		traj.Steps = append(traj.Steps, step)
		traj.Return += step.Reward
		if done {
			traj.Eval = *info
		}
	}
	traj.Final = obs
	return traj, nil
}

// WorkerSeed derives the seed of worker i from the base seed, so that every worker
// draws a distinct, reproducible stream.
func WorkerSeed(base uint64, i int) uint64 {
	return base + uint64(i)*0x9e3779b97f4a7c15
}

/*
Run deploys a fixed number of workers which play episodes and send the trajectories
to the estimator. Coordination is simple:
  - workers generate episodes until cancellation
  - the estimator folds each trajectory into the stats and calls the progress hook
  - once the episode limit is reached the estimator cancels the workers

Run blocks until the limit is reached or ctx is done, and returns the final stats.
An environment that cannot produce a single episode is reported before any worker starts;
the first error of a running worker stops the rollout and is returned with the stats so far.
*/
func Run(
	ctx context.Context,
	cfg environment.Config,
	icons scenario.IconSource,
	opts Options,
) (*Stats, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Policy == nil {
		opts.Policy = RandomPolicy
	}

	base := cfg.Seed
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}

	// Preflight: config or placement errors are deterministic, so one reset tells all.
	probe, err := environment.New(cfg, icons, rand.New(rand.NewSource(base)))
	if err != nil {
		return nil, err
	}
	if _, _, err = probe.Reset(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Each worker sends at most one error before exiting.
	errs := make(chan error, opts.Workers)
	fail := func(id int, err error) {
		log.Printf("rollout worker %d: %v", id, err)
		errs <- fmt.Errorf("rollout worker %d: %w", id, err)
	}

	worker := func(done <-chan struct{}, id int) <-chan *Trajectory {
		trajectories := make(chan *Trajectory)
		go func() {
			defer close(trajectories)

			rng := rand.New(rand.NewSource(WorkerSeed(base, id)))
			ep, err := environment.New(cfg, icons, rng)
			if err != nil {
				fail(id, err)
				return
			}

			for {
				// done-guard
				select {
				case <-done:
					return
				default:
				}

				traj, err := Play(ep, opts.Policy, rng, cfg.RecordObservations)
				if err != nil {
					fail(id, err)
					return
				}
				traj.Worker = id

				select {
				case trajectories <- traj:
				case <-done:
					return
				}
			}
		}()
		return trajectories
	}

	workers := []<-chan *Trajectory{}
	for i := 0; i < opts.Workers; i++ {
		workers = append(workers, worker(runCtx.Done(), i))
	}
	trajectories := channerics.Merge(runCtx.Done(), workers...)

	stats := &Stats{}
	for {
		select {
		case err := <-errs:
			return stats, err
		case traj, ok := <-trajectories:
			if !ok {
				// A worker reports its error before its output closes.
				select {
				case err := <-errs:
					return stats, err
				default:
					return stats, nil
				}
			}

			stats.add(traj)
			progress := stats.Snapshot()
			progress.Last = traj
			if opts.Progress != nil {
				opts.Progress(runCtx, progress)
			}
			if opts.Episodes > 0 && progress.Episodes >= opts.Episodes {
				return stats, nil
			}
		}
	}
}
