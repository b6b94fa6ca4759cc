package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/TreasureIslandRL/internal/events"
	"github.com/mitchelldurbincs/TreasureIslandRL/internal/grid/core"
)

var (
	ErrInvalidPhase       = errors.New("trainer cannot start from its current phase")
	ErrInvalidEpisodes    = errors.New("episode budget must not be negative")
	ErrInvalidHyperparams = errors.New("invalid hyperparameters")
)

// GridWorld is the environment the trainer drives
type GridWorld interface {
	WorldView
	Size() int
	CurrentState() core.State
	LegalActions(s core.State) []core.Action
	Apply(a core.Action)
	IsTerminal(s core.State) bool
	Reset()
}

// Hyperparameters controls learning
type Hyperparameters struct {
	Alpha              float64 // learning rate
	Gamma              float64 // discount factor
	InitialEpsilon     float64
	DecayRate          float64
	MaxStepsPerEpisode int // 0 means episodes only end on a terminal cell
}

// DefaultHyperparameters returns the standard training setup
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Alpha:          0.2,
		Gamma:          0.9,
		InitialEpsilon: 1.0,
		DecayRate:      0.002,
	}
}

// Validate checks every value is in range
func (h Hyperparameters) Validate() error {
	switch {
	case h.Alpha <= 0 || h.Alpha > 1:
		return fmt.Errorf("%w: alpha must be in (0, 1], got %v", ErrInvalidHyperparams, h.Alpha)
	case h.Gamma < 0 || h.Gamma > 1:
		return fmt.Errorf("%w: gamma must be in [0, 1], got %v", ErrInvalidHyperparams, h.Gamma)
	case h.InitialEpsilon < 0 || h.InitialEpsilon > 1:
		return fmt.Errorf("%w: epsilon must be in [0, 1], got %v", ErrInvalidHyperparams, h.InitialEpsilon)
	case h.DecayRate < 0 || h.DecayRate >= 1:
		return fmt.Errorf("%w: decay rate must be in [0, 1), got %v", ErrInvalidHyperparams, h.DecayRate)
	case h.MaxStepsPerEpisode < 0:
		return fmt.Errorf("%w: max steps per episode must not be negative, got %d", ErrInvalidHyperparams, h.MaxStepsPerEpisode)
	}
	return nil
}

// Outcome is how a call to Train ended
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "COMPLETED"
	case OutcomeAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result summarizes a call to Train
type Result struct {
	Outcome      Outcome
	Table        *Table    // snapshot as of the last completed step
	Rewards      []float64 // one entry per completed episode over the trainer's lifetime
	Episodes     int       // episodes completed during this call
	Steps        int       // steps taken during this call
	Truncated    int       // episodes ended by the step ceiling during this call
	FinalEpsilon float64
	Duration     time.Duration
}

// Option configures a Trainer
type Option func(*Trainer)

// WithHyperparameters overrides the default hyperparameters
func WithHyperparameters(h Hyperparameters) Option {
	return func(t *Trainer) { t.params = h }
}

// WithRNG sets the random source shared by the default policy
func WithRNG(rng *rand.Rand) Option {
	return func(t *Trainer) { t.rng = rng }
}

// WithPolicy replaces the epsilon-greedy policy
func WithPolicy(p Policy) Option {
	return func(t *Trainer) { t.policy = p }
}

// WithRewardConfig overrides the default reward values
func WithRewardConfig(cfg RewardConfig) Option {
	return func(t *Trainer) { t.rewardConfig = cfg }
}

// WithLogger sets the base logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Trainer) { t.logger = logger.With().Str("component", "trainer").Logger() }
}

// WithStepHook registers a callback run after every step
func WithStepHook(hook StepHook) Option {
	return func(t *Trainer) { t.hook = hook }
}

// WithEventBus publishes training events to bus
func WithEventBus(bus events.Publisher) Option {
	return func(t *Trainer) { t.bus = bus }
}

// WithRunID tags events with id instead of a generated one
func WithRunID(id string) Option {
	return func(t *Trainer) { t.runID = id }
}

// Trainer runs tabular Q-learning episodes against a GridWorld.
// It is the only writer of its table and is not safe for concurrent use.
type Trainer struct {
	world        GridWorld
	table        *Table
	policy       Policy
	rewards      *RewardModel
	rewardConfig RewardConfig
	schedule     *Schedule
	params       Hyperparameters
	rng          *rand.Rand
	hook         StepHook
	bus          events.Publisher
	runID        string
	logger       zerolog.Logger

	phase   Phase
	history []float64
	episode int // episodes completed over the trainer's lifetime
}

// NewTrainer creates a trainer with a zeroed table sized to world
func NewTrainer(world GridWorld, opts ...Option) (*Trainer, error) {
	if world == nil {
		return nil, errors.New("trainer requires a world")
	}
	if world.Size() < 1 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidGridSize, world.Size())
	}

	t := &Trainer{
		world:        world,
		params:       DefaultHyperparameters(),
		rewardConfig: DefaultRewardConfig(),
		logger:       log.With().Str("component", "trainer").Logger(),
		phase:        PhaseIdle,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.params.Validate(); err != nil {
		return nil, err
	}
	if err := t.rewardConfig.Validate(); err != nil {
		return nil, err
	}

	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if t.policy == nil {
		t.policy = NewEpsilonGreedy(t.rng)
	}
	if t.runID == "" {
		t.runID = uuid.New().String()
	}

	t.table = NewTable(world.Size())
	t.rewards = NewRewardModel(t.rewardConfig)
	t.schedule = NewSchedule(t.params.InitialEpsilon, t.params.DecayRate)
	t.logger = t.logger.With().Str("run_id", t.runID).Logger()

	return t, nil
}

// RunID returns the identifier attached to published events
func (t *Trainer) RunID() string { return t.runID }

// Table returns a snapshot of the current estimates
func (t *Trainer) Table() *Table { return t.table.Snapshot() }

// Rewards returns a copy of the per-episode reward history
func (t *Trainer) Rewards() []float64 {
	out := make([]float64, len(t.history))
	copy(out, t.history)
	return out
}

// Epsilon returns the current exploration rate
func (t *Trainer) Epsilon() float64 { return t.schedule.Epsilon() }

// Phase returns the trainer's lifecycle stage
func (t *Trainer) Phase() Phase { return t.phase }

// Hyperparameters returns the values in use
func (t *Trainer) Hyperparameters() Hyperparameters { return t.params }

// BellmanUpdate blends q toward the bootstrapped target r + gamma·maxNext
func BellmanUpdate(q, r, maxNext, alpha, gamma float64) float64 {
	return (1-alpha)*q + alpha*(r+gamma*maxNext)
}

// TerminalUpdate blends q toward r with no next-state term
func TerminalUpdate(q, r, alpha float64) float64 {
	return (1-alpha)*q + alpha*r
}

// Train runs up to maxEpisodes further episodes. Cancelling ctx or a step hook
// returning Abort stops training with OutcomeAborted and a nil error; the
// episode in flight is discarded from the history but the updates it already
// made stay in the table. Any other error is fatal and leaves the trainer in
// PhaseFailed.
func (t *Trainer) Train(ctx context.Context, maxEpisodes int) (Result, error) {
	if maxEpisodes < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidEpisodes, maxEpisodes)
	}
	if err := t.transition(PhaseTraining); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res := Result{Outcome: OutcomeCompleted}

	t.logger.Info().
		Int("max_episodes", maxEpisodes).
		Int("grid_size", t.world.Size()).
		Float64("epsilon", t.schedule.Epsilon()).
		Float64("alpha", t.params.Alpha).
		Float64("gamma", t.params.Gamma).
		Msg("Training started")
	t.publish(events.NewTrainingStartedEvent(t.runID, t.levelName(), t.world.Size(), maxEpisodes, t.schedule.Epsilon()))

	var runErr error
	for res.Episodes < maxEpisodes {
		completed, aborted, err := t.runEpisode(ctx, &res)
		if err != nil {
			runErr = err
			break
		}
		if completed {
			res.Episodes++
		}
		if aborted {
			res.Outcome = OutcomeAborted
			break
		}
	}

	res.Table = t.table.Snapshot()
	res.Rewards = t.Rewards()
	res.FinalEpsilon = t.schedule.Epsilon()
	res.Duration = time.Since(start)

	outcome := res.Outcome.String()
	final := PhaseCompleted
	switch {
	case runErr != nil:
		final = PhaseFailed
		outcome = "FAILED"
	case res.Outcome == OutcomeAborted:
		final = PhaseAborted
	}
	// Training → Completed, Aborted or Failed is always allowed
	_ = t.transition(final)

	var logEvent *zerolog.Event
	if runErr != nil {
		logEvent = t.logger.Error().Err(runErr)
	} else {
		logEvent = t.logger.Info()
	}
	logEvent.
		Str("outcome", outcome).
		Int("episodes", res.Episodes).
		Int("steps", res.Steps).
		Int("truncated", res.Truncated).
		Float64("epsilon", res.FinalEpsilon).
		Dur("duration", res.Duration).
		Msg("Training finished")
	t.publish(events.NewTrainingFinishedEvent(t.runID, outcome, res.Episodes, res.Steps, res.FinalEpsilon, res.Duration, runErr))

	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

// runEpisode plays one episode from a fresh reset. An abort before the
// episode finishes leaves completed false so nothing is added to the history.
func (t *Trainer) runEpisode(ctx context.Context, res *Result) (completed, aborted bool, err error) {
	t.world.Reset()
	episode := t.episode + 1
	total := 0.0

	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			t.logger.Info().
				Err(ctx.Err()).
				Int("episode", episode).
				Int("step", step).
				Msg("Training aborted by context")
			return false, true, nil
		default:
		}

		info, err := t.step(episode, step, total)
		if err != nil {
			return false, false, err
		}
		res.Steps++

		done := info.Terminal
		if !info.Terminal {
			total += info.Reward
			if t.params.MaxStepsPerEpisode > 0 && step >= t.params.MaxStepsPerEpisode {
				info.Truncated = true
				done = true
				res.Truncated++
			}
		}

		if done {
			// A terminal episode ended in the cell the agent stepped out of
			final := info.Next
			if info.Terminal {
				final = info.State
			}
			t.finishEpisode(episode, step, total, final, info.Truncated)
		}
		info.Epsilon = t.schedule.Epsilon()
		info.EpisodeReward = total

		if t.hook != nil && t.hook(info) == Abort {
			t.logger.Info().
				Int("episode", episode).
				Int("step", step).
				Bool("episode_complete", done).
				Msg("Training aborted by step hook")
			return done, true, nil
		}
		if done {
			return true, false, nil
		}
	}
}

// step performs one select-move-reward-update cycle. The terminal check is made
// on the state the agent was in before moving: the move into a terminal cell is
// scored with a bootstrapped update and the episode ends on the following step.
func (t *Trainer) step(episode, step int, total float64) (StepInfo, error) {
	s := t.world.CurrentState()
	epsilon := t.schedule.Epsilon()

	a, err := t.policy.SelectAction(s, t.table, epsilon, t.world.LegalActions(s))
	if err != nil {
		return StepInfo{}, core.WrapStepError(episode, step, s, err)
	}

	t.world.Apply(a)
	next := t.world.CurrentState()
	r := t.rewards.Reward(next, t.world)

	q, err := t.table.Get(s, a)
	if err != nil {
		return StepInfo{}, core.WrapStepError(episode, step, s, err)
	}

	terminal := t.world.IsTerminal(s)
	var updated float64
	if terminal {
		updated = TerminalUpdate(q, r, t.params.Alpha)
	} else {
		maxNext, err := t.table.MaxValue(next)
		if err != nil {
			return StepInfo{}, core.WrapStepError(episode, step, s, err)
		}
		updated = BellmanUpdate(q, r, maxNext, t.params.Alpha, t.params.Gamma)
	}
	if err := t.table.Set(s, a, updated); err != nil {
		return StepInfo{}, core.WrapStepError(episode, step, s, err)
	}

	return StepInfo{
		Episode:       episode,
		Step:          step,
		State:         s,
		Action:        a,
		Next:          next,
		Reward:        r,
		Terminal:      terminal,
		Epsilon:       epsilon,
		EpisodeReward: total,
		Table:         t.table,
	}, nil
}

// finishEpisode decays exploration and records the episode's reward
func (t *Trainer) finishEpisode(episode, steps int, total float64, final core.State, truncated bool) {
	epsilon := t.schedule.Decay()
	t.history = append(t.history, total)
	t.episode = episode

	success := final == t.world.GoalState()
	if truncated {
		t.logger.Warn().
			Int("episode", episode).
			Int("steps", steps).
			Msg("Episode truncated at step ceiling")
	}
	t.logger.Debug().
		Int("episode", episode).
		Int("steps", steps).
		Float64("reward", total).
		Float64("epsilon", epsilon).
		Str("final_state", final.String()).
		Msg("Episode complete")
	t.publish(events.NewEpisodeCompletedEvent(t.runID, episode, steps, total, epsilon, final.String(), success, truncated))
}

func (t *Trainer) transition(target Phase) error {
	if !t.phase.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, t.phase, target)
	}
	from := t.phase
	t.phase = target
	t.logger.Debug().
		Str("from", from.String()).
		Str("to", target.String()).
		Msg("Trainer phase transition")
	t.publish(events.NewPhaseTransitionEvent(t.runID, from.String(), target.String()))
	return nil
}

func (t *Trainer) publish(e events.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}

func (t *Trainer) levelName() string {
	if named, ok := t.world.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}
