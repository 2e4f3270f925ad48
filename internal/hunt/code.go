package hunt

import (
	"context"
	"errors"
	"runtime/metrics"
	"strings"
	"time"

	"github.com/dop251/goja"
)

const (
	defaultEvalTimeout = 2 * time.Second
	defaultHeapGrowth  = 256 << 20
	heapPollInterval   = 5 * time.Millisecond
	heapMetric         = "/memory/classes/heap/objects:bytes"
	maxCallStackSize   = 1024
	maxCodeLen         = 64 << 10
)

var errNotFunction = errors.New("submitted code must evaluate to a function")

// Run evaluates code against every test case, each in a fresh interpreter
// with no host bindings. Code that cannot be compiled into a function is
// reported as an evaluation fault; faults while running a single case are
// recorded in that case's result.
func (c CodeFix) Run(ctx context.Context, code string) ([]TestResult, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false, ErrEmptyAnswer
	}
	if len(code) > maxCodeLen {
		return nil, false, Evaluation("submitted code is too large")
	}

	prog, err := goja.Compile("submission.js", "("+code+"\n)", true)
	if err != nil {
		return nil, false, Evaluation("submitted code does not compile: " + firstLine(err.Error()))
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultEvalTimeout
	}
	heapLimit := c.MaxHeapGrowth
	if heapLimit == 0 {
		heapLimit = defaultHeapGrowth
	}

	results := make([]TestResult, 0, len(c.TestCases))
	passed := true
	for _, tc := range c.TestCases {
		actual, err := runCase(ctx, prog, tc.Input, timeout, heapLimit)
		if errors.Is(err, errNotFunction) {
			return nil, false, Evaluation(err.Error())
		}
		if err != nil {
			actual = "Error: " + firstLine(err.Error())
		}
		ok := err == nil && actual == tc.Expected
		results = append(results, TestResult{
			Input:    tc.Input,
			Expected: tc.Expected,
			Actual:   actual,
			Passed:   ok,
		})
		passed = passed && ok
	}
	return results, passed, nil
}

func runCase(ctx context.Context, prog *goja.Program, input string, timeout time.Duration, heapLimit uint64) (string, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt("execution timed out")
	})
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go watchHeap(vm, heapInUse(), heapLimit, done)

	v, err := vm.RunProgram(prog)
	if err != nil {
		return "", err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return "", errNotFunction
	}

	parse, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	if !ok {
		return "", errors.New("JSON.parse unavailable")
	}
	arg, err := parse(goja.Undefined(), vm.ToValue(input))
	if err != nil {
		return "", err
	}

	out, err := fn(goja.Undefined(), arg)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// watchHeap interrupts vm once the heap has grown more than limit bytes past
// base. goja has no allocation limit of its own, so a single huge allocation
// still gets through; growth by repeated allocation is stopped.
func watchHeap(vm *goja.Runtime, base, limit uint64, done <-chan struct{}) {
	tick := time.NewTicker(heapPollInterval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			if cur := heapInUse(); cur > base && cur-base > limit {
				vm.Interrupt("memory limit exceeded")
				return
			}
		}
	}
}

func heapInUse() uint64 {
	s := []metrics.Sample{{Name: heapMetric}}
	metrics.Read(s)
	if s[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s[0].Value.Uint64()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
