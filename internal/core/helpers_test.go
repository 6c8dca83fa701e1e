package core

import (
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
)

// testEnv wires a security controller, sandbox, executor and router over a
// fresh temporary working root.
type testEnv struct {
	root     string
	security *security.SecurityController
	sandbox  *Sandbox
	executor *Executor
	router   *Router
}

func newTestEnv(t *testing.T, policy *security.SecurityPolicy, confirmer security.Confirmer, timeout time.Duration) *testEnv {
	t.Helper()

	sc, err := security.NewSecurityController(t.TempDir(), policy, confirmer, nil)
	if err != nil {
		t.Fatalf("NewSecurityController failed: %v", err)
	}
	root := sc.Paths().Root()
	sandbox := NewSandbox(sc.Paths())
	executor := NewExecutor(root, sc.Commands(), timeout, 0, nil)

	return &testEnv{
		root:     root,
		security: sc,
		sandbox:  sandbox,
		executor: executor,
		router:   NewRouter(sc, sandbox, executor, nil),
	}
}

// sleepPolicy allows sleep so timeouts can be exercised.
func sleepPolicy() *security.SecurityPolicy {
	p := security.DefaultPolicy()
	p.AllowedCommands = append(p.AllowedCommands, "sleep")
	return p
}
