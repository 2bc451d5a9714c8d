package scheduler_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/cas"
	"go.trai.ch/sift/internal/adapters/telemetry"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.trai.ch/sift/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

// memStamper is an in-memory resource table. The stamp value doubles as the
// resource content so tasks can read what they depend on.
type memStamper struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStamper() *memStamper {
	return &memStamper{values: make(map[string]string)}
}

func (m *memStamper) Kind() domain.StampKind {
	return domain.StampFileContent
}

func (m *memStamper) Stamp(resource string) (domain.Stamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[resource]
	if !ok {
		v = domain.AbsentStampValue
	}
	return domain.Stamp{Kind: domain.StampFileContent, Value: v}, nil
}

func (m *memStamper) set(resource, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[resource] = value
}

type harness struct {
	dir     string
	store   ports.Store
	stamper *memStamper
	logger  *mocks.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	return &harness{dir: dir, store: store, stamper: newMemStamper(), logger: logger}
}

func (h *harness) scheduler(t *testing.T, defs ...scheduler.Definition) *scheduler.Scheduler {
	t.Helper()
	return h.schedulerWithStore(t, h.store, defs...)
}

func (h *harness) schedulerWithStore(t *testing.T, store ports.Store, defs ...scheduler.Definition) *scheduler.Scheduler {
	t.Helper()
	registry, err := scheduler.NewRegistry(defs...)
	require.NoError(t, err)
	return scheduler.New(registry, store, []ports.Stamper{h.stamper}, telemetry.NewNoOpTracer(), h.logger)
}

// counter counts task executions per kind.
type counter struct {
	mu   sync.Mutex
	runs map[string]int
}

func newCounter() *counter {
	return &counter{runs: make(map[string]int)}
}

func (c *counter) hit(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[kind]++
}

func (c *counter) get(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs[kind]
}

// chain is a three-level pipeline: read(path) -> length(path) -> double(path).
type chain struct {
	read   *scheduler.TaskDef[string, string]
	length *scheduler.TaskDef[string, int]
	double *scheduler.TaskDef[string, int]
	runs   *counter
}

func newChain() *chain {
	c := &chain{runs: newCounter()}
	c.read = scheduler.Define("read", func(ec *scheduler.ExecContext, path string) (string, error) {
		c.runs.hit("read")
		st, err := ec.RequireStamped(path, domain.StampFileContent)
		if err != nil {
			return "", err
		}
		if st.Value == domain.AbsentStampValue {
			return "", domain.ErrFileReadFailed
		}
		return st.Value, nil
	})
	c.length = scheduler.Define("length", func(ec *scheduler.ExecContext, path string) (int, error) {
		c.runs.hit("length")
		s, err := scheduler.Require(ec, c.read, path)
		return len(s), err
	})
	c.double = scheduler.Define("double", func(ec *scheduler.ExecContext, path string) (int, error) {
		c.runs.hit("double")
		n, err := scheduler.Require(ec, c.length, path)
		return 2 * n, err
	})
	return c
}

func (c *chain) defs() []scheduler.Definition {
	return []scheduler.Definition{c.read, c.length, c.double}
}
