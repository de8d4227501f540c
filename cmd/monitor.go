package cmd

import (
	"expvar"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// expvar names are process global, so the progress map is created once and
// each monitor swaps fresh values into it
var (
	progressOnce sync.Once
	progressMap  *expvar.Map
)

func progressVars() *expvar.Map {
	progressOnce.Do(func() {
		progressMap = expvar.NewMap("chainmar-converge")
	})
	return progressMap
}

// monitor publishes convergence progress over HTTP at /debug/vars
type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server
	addr    net.Addr
	log     *zap.Logger

	MaxSteps  *expvar.Int
	Stride    *expvar.Int
	Points    *expvar.Int
	Completed *expvar.Int
	LastSteps *expvar.Int
	LastMSE   *expvar.Float
	RunTime   *expvar.Float
}

func newMonitor(log *zap.Logger) *monitor {
	return &monitor{
		log:       log,
		MaxSteps:  new(expvar.Int),
		Stride:    new(expvar.Int),
		Points:    new(expvar.Int),
		Completed: new(expvar.Int),
		LastSteps: new(expvar.Int),
		LastMSE:   new(expvar.Float),
		RunTime:   new(expvar.Float),
	}
}

// Start begins serving on addr (":0" picks a free port, see Addr)
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Could not listen on %s for monitor", addr)
	}
	m.addr = ln.Addr()

	m.info = progressVars()
	m.info.Set("Max-Steps", m.MaxSteps)
	m.info.Set("Stride", m.Stride)
	m.info.Set("Point-Count", m.Points)
	m.info.Set("Points-Completed", m.Completed)
	m.info.Set("Last-Steps", m.LastSteps)
	m.info.Set("Last-MSE", m.LastMSE)
	m.info.Set("Run-Time", m.RunTime)

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.stopped = make(chan struct{})
	m.server = &http.Server{Handler: mux}

	go func() {
		defer close(m.stopped)
		m.server.Serve(ln)
	}()

	m.log.Info("HTTP monitor available", zap.String("url", "http://"+m.addr.String()+"/debug/vars"))
	return nil
}

// Addr is the address actually being served, nil before Start
func (m *monitor) Addr() net.Addr {
	return m.addr
}

// Record notes one finished convergence point
func (m *monitor) Record(steps int, mse float64, start time.Time) {
	m.Completed.Add(1)
	m.LastSteps.Set(int64(steps))
	m.LastMSE.Set(mse)
	m.RunTime.Set(time.Since(start).Seconds())
}

// Stop shuts the server down. Safe to call on a monitor never started.
func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		m.log.Debug("HTTP monitor stopped")
	case <-time.After(2 * time.Second):
		m.log.Warn("HTTP monitor would NOT stop: just continuing on")
	}
}
