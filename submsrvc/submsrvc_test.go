package submsrvc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlab/backend/attemptsrvc"
	"github.com/questlab/backend/audit"
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/fsquest"
	"github.com/questlab/backend/progsrvc"
	"github.com/questlab/backend/questsrvc"
	"github.com/questlab/backend/ratelimit"
	"github.com/questlab/backend/sandbox"
	"github.com/questlab/backend/srvcerror"
)

// stubExecutor grades everything by echoing the submitted code as stdout,
// so quests in these tests declare output kinds matching the code itself.
type stubExecutor struct {
	lang    string
	outcome sandbox.RawOutcome
	err     error
}

func (s *stubExecutor) Language() string { return s.lang }

func (s *stubExecutor) Execute(ctx context.Context, req sandbox.ExecRequest) (sandbox.RawOutcome, error) {
	if s.err != nil {
		return sandbox.RawOutcome{}, s.err
	}
	out := s.outcome
	if out.Stdout == "" {
		out.Stdout = req.Code
	}
	return out, nil
}

type recordingSink struct {
	events []audit.Event
}

func (r *recordingSink) Record(ctx context.Context, ev audit.Event) {
	r.events = append(r.events, ev)
}

func testQuest() *fsquest.Quest {
	return &fsquest.Quest{
		QuestID:            "hello",
		WorldID:            "basics",
		Title:              "Hello",
		Language:           "stub",
		XpReward:           50,
		HintUnlockAttempts: 2,
		Hints:              []string{"hint one", "hint two"},
		Tests: []evalsrvc.TestSpec{
			{ID: "t1", Kind: evalsrvc.KindOutput, Expected: []byte(`"correct"`)},
		},
	}
}

type testEnv struct {
	srvc *SubmSrvc
	sink *recordingSink
	prog *progsrvc.ProgSrvc
}

func newTestEnv(t *testing.T, exec sandbox.Executor, limiter *ratelimit.Limiter) testEnv {
	t.Helper()
	questSrvc, err := questsrvc.NewQuestSrvcFromQuests([]*fsquest.Quest{testQuest()})
	require.NoError(t, err)

	sink := &recordingSink{}
	prog := progsrvc.NewProgSrvc(progsrvc.NewInMemProgressRepo())
	srvc := NewSubmSrvc(SubmSrvcParams{
		QuestSrvc:   questSrvc,
		Registry:    sandbox.NewRegistry(exec),
		AttemptSrvc: attemptsrvc.NewAttemptSrvc(slog.Default(), attemptsrvc.NewInMemAttemptRepo(), nil),
		ProgSrvc:    prog,
		Limiter:     limiter,
		AuditSink:   sink,
	})
	return testEnv{srvc: srvc, sink: sink, prog: prog}
}

func submit(code string) SubmitParams {
	return SubmitParams{
		UserID:     "u1",
		QuestID:    "hello",
		Code:       code,
		RemoteAddr: "10.0.0.1",
		RequestID:  "req-1",
	}
}

func TestSubmitPassingSubmission(t *testing.T) {
	env := newTestEnv(t, &stubExecutor{lang: "stub"}, nil)

	res, err := env.srvc.Submit(context.Background(), submit("correct"))
	require.NoError(t, err)

	assert.True(t, res.Evaluation.AllPassed)
	assert.True(t, res.HasNewPass)
	assert.True(t, res.Passed)
	assert.Equal(t, 1, res.AttemptsCount)
	assert.Equal(t, 50, res.XpEarned)
	require.NotNil(t, res.Reward)
	assert.Equal(t, 50, res.Reward.XpAwarded)
	require.NotNil(t, res.World)
	assert.Equal(t, 1, res.World.QuestsCompleted)
	assert.Equal(t, 1, res.World.TotalQuests)
	assert.NotEmpty(t, res.SubmissionID)
}

func TestSubmitRepeatPassAwardsNothing(t *testing.T) {
	env := newTestEnv(t, &stubExecutor{lang: "stub"}, nil)
	ctx := context.Background()

	_, err := env.srvc.Submit(ctx, submit("correct"))
	require.NoError(t, err)

	res, err := env.srvc.Submit(ctx, submit("correct"))
	require.NoError(t, err)

	assert.True(t, res.Evaluation.AllPassed)
	assert.False(t, res.HasNewPass)
	assert.Nil(t, res.Reward)
	assert.Equal(t, 50, res.XpEarned)

	state, err := env.prog.GetState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, state.Xp)
}

func TestSubmitFailingSubmissionUnlocksHints(t *testing.T) {
	env := newTestEnv(t, &stubExecutor{lang: "stub"}, nil)
	ctx := context.Background()

	res, err := env.srvc.Submit(ctx, submit("wrong"))
	require.NoError(t, err)
	assert.False(t, res.Evaluation.AllPassed)
	assert.Equal(t, 0, res.HintTierUnlocked)
	assert.Empty(t, res.UnlockedHints)
	require.NotNil(t, res.NextHintUnlockAtAttempt)
	assert.Equal(t, 2, *res.NextHintUnlockAtAttempt)

	res, err = env.srvc.Submit(ctx, submit("still wrong"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.HintTierUnlocked)
	assert.Equal(t, []string{"hint one"}, res.UnlockedHints)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t, &stubExecutor{lang: "stub"}, nil)
	ctx := context.Background()

	_, err := env.srvc.Submit(ctx, submit("   "))
	requireErrCode(t, err, ErrCodeValidation)

	_, err = env.srvc.Submit(ctx, submit(strings.Repeat("x", DefaultMaxCodeChars+1)))
	requireErrCode(t, err, ErrCodeValidation)

	p := submit("print(1)")
	p.QuestID = "../../etc"
	_, err = env.srvc.Submit(ctx, p)
	requireErrCode(t, err, questsrvc.ErrCodeInvalidQuestID)

	p = submit("print(1)")
	p.QuestID = "no-such-quest"
	_, err = env.srvc.Submit(ctx, p)
	requireErrCode(t, err, questsrvc.ErrCodeQuestNotFound)
}

func TestSubmitRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Close()
	env := newTestEnv(t, &stubExecutor{lang: "stub"}, limiter)
	ctx := context.Background()

	_, err := env.srvc.Submit(ctx, submit("correct"))
	require.NoError(t, err)

	_, err = env.srvc.Submit(ctx, submit("correct"))
	requireErrCode(t, err, ErrCodeAdmissionDenied)

	srvcErr := &srvcerror.Error{}
	require.True(t, errors.As(err, &srvcErr))
	assert.NotEmpty(t, srvcErr.HttpHeaders()["Retry-After"])

	require.Len(t, env.sink.events, 1)
	assert.Equal(t, "submission_rate_limited", env.sink.events[0].Event)
	assert.Equal(t, ErrCodeAdmissionDenied, env.sink.events[0].ErrorCode)
}

func TestSubmitTimedOutRunGradesAsFailure(t *testing.T) {
	msg := sandbox.TimeoutErrMsg
	exec := &stubExecutor{
		lang:    "stub",
		outcome: sandbox.RawOutcome{Stdout: "partial", TimedOut: true, RuntimeError: &msg},
	}
	env := newTestEnv(t, exec, nil)

	res, err := env.srvc.Submit(context.Background(), submit("while True: pass"))
	require.NoError(t, err)

	assert.False(t, res.Evaluation.AllPassed)
	assert.True(t, res.Evaluation.Raw.TimedOut)
	assert.Equal(t, 1, res.AttemptsCount)
}

// cancelingExecutor simulates the client disconnecting while the sandbox
// is running: it cancels the request context and reports the kill.
type cancelingExecutor struct {
	cancel context.CancelFunc
}

func (cancelingExecutor) Language() string { return "stub" }

func (e cancelingExecutor) Execute(ctx context.Context, req sandbox.ExecRequest) (sandbox.RawOutcome, error) {
	e.cancel()
	return sandbox.RawOutcome{}, context.Canceled
}

func TestSubmitCanceledRunIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t, cancelingExecutor{cancel: cancel}, nil)

	_, err := env.srvc.Submit(ctx, submit("print(1)"))

	require.ErrorIs(t, err, context.Canceled)
	srvcErr := &srvcerror.Error{}
	assert.False(t, errors.As(err, &srvcErr))
}

// deadlineExecutor blocks until the request deadline expires, so the
// pipeline sees an exhausted orchestration context after Execute returns.
type deadlineExecutor struct{}

func (deadlineExecutor) Language() string { return "stub" }

func (deadlineExecutor) Execute(ctx context.Context, req sandbox.ExecRequest) (sandbox.RawOutcome, error) {
	<-ctx.Done()
	msg := sandbox.TimeoutErrMsg
	return sandbox.RawOutcome{TimedOut: true, RuntimeError: &msg}, nil
}

func TestSubmitOrchestrationDeadlineMapsToTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	env := newTestEnv(t, deadlineExecutor{}, nil)

	_, err := env.srvc.Submit(ctx, submit("print(1)"))

	requireErrCode(t, err, ErrCodeSandboxTimeout)
}

func TestSubmitExecutorInfraFaultSurfaces(t *testing.T) {
	exec := &stubExecutor{lang: "stub", err: sandbox.ErrTransportFault().SetDebug(errors.New("binary missing"))}
	env := newTestEnv(t, exec, nil)

	_, err := env.srvc.Submit(context.Background(), submit("correct"))
	requireErrCode(t, err, sandbox.ErrCodeTransportFault)
}

func TestProbesForDerivation(t *testing.T) {
	specs := []evalsrvc.TestSpec{
		{ID: "a", Kind: evalsrvc.KindOutput, Expected: []byte(`"x"`)},
		{ID: "b", Kind: evalsrvc.KindVariableExists, VariableName: "x"},
		{ID: "c", Kind: evalsrvc.KindVariableValue, VariableName: "x", Expected: []byte(`1`)},
		{ID: "d", Kind: evalsrvc.KindListLength, VariableName: "nums", Expected: []byte(`3`)},
		{ID: "e", Kind: evalsrvc.KindFunctionCall, FunctionName: "greet", Args: nil, Expected: []byte(`"hi"`)},
	}

	probe := probesFor(specs)

	assert.Equal(t, []string{"x", "nums"}, probe.Vars)
	require.Len(t, probe.Calls, 1)
	assert.Equal(t, "greet", probe.Calls[0].Name)
}

func TestProbesForOutputOnlyIsEmpty(t *testing.T) {
	probe := probesFor([]evalsrvc.TestSpec{
		{ID: "a", Kind: evalsrvc.KindOutput, Expected: []byte(`"x"`)},
	})
	assert.True(t, probe.IsEmpty())
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	srvcErr := &srvcerror.Error{}
	require.True(t, errors.As(err, &srvcErr))
	assert.Equal(t, code, srvcErr.ErrorCode())
}
